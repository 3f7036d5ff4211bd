package auth

import (
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	"github.com/nexthealth/careplatform/pkg/logger"
)

var _ = ginkgo.Describe("Guard", func() {
	var (
		issuer *TokenIssuer
		guard  *Guard
		next   http.Handler
		hits   int
	)

	issueFor := func(p *Principal) string {
		token, err := issuer.Issue(BuildSessionClaims(p))
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		return token
	}

	request := func(handler http.Handler, token string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	ginkgo.BeforeEach(func() {
		issuer = NewTokenIssuer("test-secret", time.Hour)
		guard = NewGuard(issuer, logger.L())

		hits = 0
		next = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits++
			w.WriteHeader(http.StatusOK)
		})
	})

	ginkgo.Describe("Authenticate", func() {
		ginkgo.It("passes a valid bearer token and stores the session", func() {
			var seen *SessionClaims
			inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen, _ = SessionFromContext(r.Context())
				w.WriteHeader(http.StatusOK)
			})

			rec := request(guard.Authenticate(inner), issueFor(testPrincipal("u1", "doctor@example.com")))

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
			gomega.Expect(seen).ToNot(gomega.BeNil())
			gomega.Expect(seen.Subject).To(gomega.Equal("u1"))
		})

		ginkgo.It("rejects a missing header", func() {
			rec := request(guard.Authenticate(next), "")
			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusUnauthorized))
			gomega.Expect(hits).To(gomega.Equal(0))
		})

		ginkgo.It("rejects an expired token", func() {
			at := time.Now().Add(-3 * time.Hour)
			issuer.now = func() time.Time { return at }
			token := issueFor(testPrincipal("u1", "doctor@example.com"))
			issuer.now = time.Now

			rec := request(guard.Authenticate(next), token)
			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusUnauthorized))
			gomega.Expect(rec.Body.String()).To(gomega.ContainSubstring("TOKEN_EXPIRED"))
		})
	})

	ginkgo.Describe("RequireTenant", func() {
		chain := func() http.Handler { return guard.Authenticate(guard.RequireTenant(next)) }

		ginkgo.It("passes a tenant-bound session", func() {
			rec := request(chain(), issueFor(testPrincipal("u1", "doctor@example.com")))
			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
		})

		ginkgo.It("lets a system manager through without a tenant", func() {
			p := testPrincipal("sm1", "manager@example.com")
			p.Employment = nil
			p.IsSystemManager = true

			rec := request(chain(), issueFor(p))
			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
		})

		ginkgo.It("blocks a session without a tenant", func() {
			p := testPrincipal("u1", "doctor@example.com")
			p.Employment = nil

			rec := request(chain(), issueFor(p))
			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusForbidden))
			gomega.Expect(rec.Body.String()).To(gomega.ContainSubstring("TENANT_CONTEXT_REQUIRED"))
		})
	})

	ginkgo.Describe("RequirePermissions", func() {
		chain := func(perms ...string) http.Handler {
			return guard.Authenticate(guard.RequirePermissions(perms...)(next))
		}

		ginkgo.It("passes when any named permission is held", func() {
			rec := request(chain("citizens.read", "citizens.update"), issueFor(testPrincipal("u1", "doctor@example.com")))
			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
		})

		ginkgo.It("blocks when none are held", func() {
			rec := request(chain("payroll.read"), issueFor(testPrincipal("u1", "doctor@example.com")))
			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusForbidden))
			gomega.Expect(rec.Body.String()).To(gomega.ContainSubstring("INSUFFICIENT_PERMISSIONS"))
		})

		ginkgo.It("honors the system-manager wildcard", func() {
			p := testPrincipal("sm1", "manager@example.com")
			p.Employment = nil
			p.IsSystemManager = true

			rec := request(chain("payroll.read"), issueFor(p))
			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
		})
	})
})
