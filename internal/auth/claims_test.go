package auth

import (
	"time"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	"github.com/nexthealth/careplatform/internal"
)

var _ = ginkgo.Describe("Session claims", func() {
	ginkgo.Describe("DeriveMenus", func() {
		ginkgo.It("collects distinct resource prefixes for read, view and create", func() {
			menus := DeriveMenus([]string{
				"citizens.read", "citizens.view", "citizens.create",
				"schedules.create",
				"citizens.update", "citizens.delete",
			})
			gomega.Expect(menus).To(gomega.Equal([]string{"citizens", "schedules"}))
		})

		ginkgo.It("ignores update-only and delete-only grants", func() {
			gomega.Expect(DeriveMenus([]string{"citizens.update", "citizens.delete"})).To(gomega.BeEmpty())
		})

		ginkgo.It("yields no menus for the wildcard grant", func() {
			gomega.Expect(DeriveMenus([]string{"*"})).To(gomega.BeEmpty())
		})

		ginkgo.It("returns sorted output regardless of input order", func() {
			menus := DeriveMenus([]string{"schedules.read", "citizens.read", "employees.view"})
			gomega.Expect(menus).To(gomega.Equal([]string{"citizens", "employees", "schedules"}))
		})
	})

	ginkgo.Describe("BuildSessionClaims", func() {
		ginkgo.It("projects an employed principal's role into the claims", func() {
			claims := BuildSessionClaims(testPrincipal("u1", "doctor@example.com"))

			gomega.Expect(claims.Subject).To(gomega.Equal("u1"))
			gomega.Expect(claims.TenantID).To(gomega.Equal(int64(10)))
			gomega.Expect(*claims.Role).To(gomega.Equal("doctor"))
			gomega.Expect(*claims.HomePage).To(gomega.Equal("/citizens"))
			gomega.Expect(claims.Menus).To(gomega.Equal([]string{"citizens", "schedules"}))
		})

		ginkgo.It("grants the wildcard and dashboard to a system manager", func() {
			p := testPrincipal("sm1", "manager@example.com")
			p.Employment = nil
			p.IsSystemManager = true

			claims := BuildSessionClaims(p)

			gomega.Expect(claims.Permissions).To(gomega.Equal([]string{"*"}))
			gomega.Expect(claims.Menus).To(gomega.BeEmpty())
			gomega.Expect(*claims.RoleDisplayName).To(gomega.Equal("System Manager"))
			gomega.Expect(*claims.HomePage).To(gomega.Equal("/admin/dashboard"))
			gomega.Expect(claims.HasPermission("anything.at.all")).To(gomega.BeTrue())
		})

		ginkgo.It("falls back to the default home page for a role without one", func() {
			p := testPrincipal("u1", "typist@example.com")
			p.Employment.Role.HomePage = ""

			claims := BuildSessionClaims(p)
			gomega.Expect(*claims.HomePage).To(gomega.Equal("/regulations"))
		})
	})

	ginkgo.Describe("TokenIssuer", func() {
		var (
			issuer *TokenIssuer
			at     time.Time
		)

		ginkgo.BeforeEach(func() {
			issuer = NewTokenIssuer("test-secret", time.Hour)
			at = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
			issuer.now = func() time.Time { return at }
		})

		ginkgo.It("round-trips claims through sign and verify", func() {
			claims := BuildSessionClaims(testPrincipal("u1", "doctor@example.com"))

			token, err := issuer.Issue(claims)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			parsed, err := issuer.Verify(token)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(parsed.Subject).To(gomega.Equal("u1"))
			gomega.Expect(parsed.TenantID).To(gomega.Equal(int64(10)))
			gomega.Expect(parsed.Permissions).To(gomega.Equal([]string{"citizens.read", "citizens.view", "schedules.create"}))
		})

		ginkgo.It("rejects an expired token", func() {
			token, err := issuer.Issue(BuildSessionClaims(testPrincipal("u1", "doctor@example.com")))
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			issuer.now = func() time.Time { return at.Add(2 * time.Hour) }

			_, err = issuer.Verify(token)
			gomega.Expect(err).To(gomega.MatchError(internal.ErrTokenExpired))
		})

		ginkgo.It("rejects a token signed with a different secret", func() {
			other := NewTokenIssuer("other-secret", time.Hour)
			token, err := other.Issue(BuildSessionClaims(testPrincipal("u1", "doctor@example.com")))
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			_, err = issuer.Verify(token)
			gomega.Expect(err).To(gomega.MatchError(internal.ErrInvalidToken))
		})

		ginkgo.It("rejects garbage input", func() {
			_, err := issuer.Verify("not.a.token")
			gomega.Expect(err).To(gomega.MatchError(internal.ErrInvalidToken))
		})
	})
})
