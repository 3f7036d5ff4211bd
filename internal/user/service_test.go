package user

import (
	"context"
	"testing"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	"github.com/nexthealth/careplatform/internal"
	"github.com/nexthealth/careplatform/internal/auth"
	"github.com/nexthealth/careplatform/pkg/logger"
)

func TestUser(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "User Module Suite")
}

type mockRepository struct {
	users          map[string]*User
	resetHashes    map[string]string
	clearedFor     map[string]bool
	resetsRequired map[string]bool
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		users:          make(map[string]*User),
		resetHashes:    make(map[string]string),
		clearedFor:     make(map[string]bool),
		resetsRequired: make(map[string]bool),
	}
}

func (m *mockRepository) GetByID(_ context.Context, id string) (*User, error) {
	return m.users[id], nil
}

func (m *mockRepository) ResetPassword(_ context.Context, id, passwordHash string) error {
	m.resetHashes[id] = passwordHash
	u := m.users[id]
	u.IsBlocked = false
	return nil
}

func (m *mockRepository) ClearTwoFactor(_ context.Context, id string, resetRequired bool) error {
	m.clearedFor[id] = true
	m.resetsRequired[id] = resetRequired
	m.users[id].TwoFactorEnabled = false
	return nil
}

var _ = ginkgo.Describe("UserService", func() {
	var (
		service *Service
		repo    *mockRepository
		ctx     context.Context
	)

	admin := Actor{UserID: "admin", TenantID: 10}
	systemManager := Actor{UserID: "sm", IsSystemManager: true}

	ginkgo.BeforeEach(func() {
		ctx = context.Background()
		repo = newMockRepository()
		service = NewService(repo, logger.L())

		repo.users["target"] = &User{
			ID: "target", Email: "target@example.com", Name: "Target User",
			IsBlocked: true, TenantIDs: []int64{10},
		}
	})

	ginkgo.Describe("ResetPassword", func() {
		ginkgo.It("issues a ten-character temporary password and unblocks", func() {
			result, err := service.ResetPassword(ctx, admin, "target", false)

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(result.TempPassword).To(gomega.HaveLen(10))
			gomega.Expect(result.UserEmail).To(gomega.Equal("target@example.com"))
			gomega.Expect(repo.users["target"].IsBlocked).To(gomega.BeFalse())
			gomega.Expect(auth.VerifyPassword(repo.resetHashes["target"], result.TempPassword)).To(gomega.Succeed())
			gomega.Expect(repo.clearedFor["target"]).To(gomega.BeFalse())
		})

		ginkgo.It("also wipes two-factor when requested", func() {
			repo.users["target"].TwoFactorEnabled = true

			_, err := service.ResetPassword(ctx, admin, "target", true)

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(repo.clearedFor["target"]).To(gomega.BeTrue())
			gomega.Expect(repo.resetsRequired["target"]).To(gomega.BeTrue())
		})

		ginkgo.It("hides users of other tenants from a tenant admin", func() {
			repo.users["target"].TenantIDs = []int64{99}

			_, err := service.ResetPassword(ctx, admin, "target", false)
			gomega.Expect(err).To(gomega.MatchError(internal.ErrUserNotFound))
		})

		ginkgo.It("refuses to touch a system manager account", func() {
			repo.users["target"].IsSystemManager = true

			_, err := service.ResetPassword(ctx, admin, "target", false)

			appErr, ok := internal.IsAppError(err)
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(appErr.Code).To(gomega.Equal(internal.ErrCodeSystemManagerOnly))
		})

		ginkgo.It("lets a system manager reset anyone", func() {
			repo.users["target"].IsSystemManager = true

			_, err := service.ResetPassword(ctx, systemManager, "target", false)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
		})
	})

	ginkgo.Describe("ResetTwoFactor", func() {
		ginkgo.It("clears the enrollment and flags re-enrollment", func() {
			repo.users["target"].TwoFactorEnabled = true

			err := service.ResetTwoFactor(ctx, admin, "target")

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(repo.clearedFor["target"]).To(gomega.BeTrue())
			gomega.Expect(repo.resetsRequired["target"]).To(gomega.BeTrue())
		})

		ginkgo.It("refuses when two-factor is not enabled", func() {
			err := service.ResetTwoFactor(ctx, admin, "target")

			appErr, ok := internal.IsAppError(err)
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(appErr.Code).To(gomega.Equal(internal.ErrCodeTwoFactorNotEnabled))
		})
	})
})
