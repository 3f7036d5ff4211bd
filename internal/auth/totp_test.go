package auth

import (
	"context"
	"time"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"github.com/pquerna/otp/totp"

	"github.com/nexthealth/careplatform/internal"
	"github.com/nexthealth/careplatform/internal/core/events"
	"github.com/nexthealth/careplatform/pkg/logger"
)

var _ = ginkgo.Describe("Two-factor lifecycle", func() {
	var (
		service *Service
		store   *mockPrincipalStore
		ctx     context.Context
		at      time.Time
	)

	codeAt := func(secret string, t time.Time) string {
		code, err := totp.GenerateCodeCustom(secret, t, totpOpts)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		return code
	}

	ginkgo.BeforeEach(func() {
		ctx = context.Background()
		store = newMockPrincipalStore()
		cfg := internal.AuthConfig{
			JWTSecret:     "test-secret",
			TokenDuration: time.Hour,
			BCryptCost:    4,
			TOTPIssuer:    "CarePlatform",
		}
		tokens := NewTokenIssuer(cfg.JWTSecret, cfg.TokenDuration)
		service = NewService(store, newMockRegistrationStore(), &mockTenantDirectory{}, tokens, events.NewEventBus(logger.L()), cfg, logger.L())

		at = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
		service.now = func() time.Time { return at }

		store.add(testPrincipal("u1", "doctor@example.com"))
	})

	ginkgo.Describe("SetupTwoFactor", func() {
		ginkgo.It("issues a secret and provisioning URL for a fresh account", func() {
			setup, err := service.SetupTwoFactor(ctx, "u1")

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(setup.Secret).ToNot(gomega.BeEmpty())
			gomega.Expect(setup.OTPAuthURL).To(gomega.ContainSubstring("otpauth://totp/"))
			gomega.Expect(setup.OTPAuthURL).To(gomega.ContainSubstring("CarePlatform"))
			gomega.Expect(store.storedSecrets["u1"]).To(gomega.Equal(setup.Secret))
		})

		ginkgo.It("refuses while an enrollment is already enabled", func() {
			secret := "EXISTINGSECRET234567"
			store.byID["u1"].TwoFactor = TwoFactorState{Enabled: true, Secret: &secret}

			_, err := service.SetupTwoFactor(ctx, "u1")

			appErr, ok := internal.IsAppError(err)
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(appErr.Code).To(gomega.Equal(internal.ErrCodeTwoFactorAlreadyEnabled))
		})

		ginkgo.It("allows re-enrollment after an administrative reset", func() {
			store.byID["u1"].TwoFactor = TwoFactorState{Enabled: true, ResetRequired: true}

			setup, err := service.SetupTwoFactor(ctx, "u1")
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(setup.Secret).ToNot(gomega.BeEmpty())
		})
	})

	ginkgo.Describe("VerifyTwoFactor", func() {
		var secret string

		ginkgo.BeforeEach(func() {
			setup, err := service.SetupTwoFactor(ctx, "u1")
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			secret = setup.Secret
		})

		ginkgo.It("enables the enrollment on a valid code", func() {
			err := service.VerifyTwoFactor(ctx, "u1", TwoFactorCodeDTO{Code: codeAt(secret, at)})

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(store.byID["u1"].TwoFactor.Enabled).To(gomega.BeTrue())
			gomega.Expect(store.enabledAt["u1"]).To(gomega.Equal(at))
		})

		ginkgo.It("accepts codes one period either side of now", func() {
			gomega.Expect(service.validateCode(secret, codeAt(secret, at.Add(-30*time.Second)))).To(gomega.BeTrue())
			gomega.Expect(service.validateCode(secret, codeAt(secret, at.Add(30*time.Second)))).To(gomega.BeTrue())
		})

		ginkgo.It("rejects codes two periods away", func() {
			gomega.Expect(service.validateCode(secret, codeAt(secret, at.Add(-90*time.Second)))).To(gomega.BeFalse())
			gomega.Expect(service.validateCode(secret, codeAt(secret, at.Add(90*time.Second)))).To(gomega.BeFalse())
		})

		ginkgo.It("keeps the enrollment pending on a wrong code", func() {
			err := service.VerifyTwoFactor(ctx, "u1", TwoFactorCodeDTO{Code: "000000"})

			gomega.Expect(err).To(gomega.MatchError(internal.ErrTwoFactorInvalid))
			gomega.Expect(store.byID["u1"].TwoFactor.Enabled).To(gomega.BeFalse())
			gomega.Expect(store.byID["u1"].TwoFactor.Pending()).To(gomega.BeTrue())
		})

		ginkgo.It("refuses when no enrollment is pending", func() {
			store.byID["u1"].TwoFactor = TwoFactorState{}

			err := service.VerifyTwoFactor(ctx, "u1", TwoFactorCodeDTO{Code: "123456"})

			appErr, ok := internal.IsAppError(err)
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(appErr.Code).To(gomega.Equal(internal.ErrCodeTwoFactorNotPending))
		})
	})

	ginkgo.Describe("DisableTwoFactor", func() {
		ginkgo.BeforeEach(func() {
			setup, err := service.SetupTwoFactor(ctx, "u1")
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			err = service.VerifyTwoFactor(ctx, "u1", TwoFactorCodeDTO{Code: codeAt(setup.Secret, at)})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
		})

		ginkgo.It("disables with the correct password", func() {
			err := service.DisableTwoFactor(ctx, "u1", TwoFactorDisableDTO{Password: testPassword})

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(store.disabled["u1"]).To(gomega.BeTrue())
			gomega.Expect(store.byID["u1"].TwoFactor.Enabled).To(gomega.BeFalse())
		})

		ginkgo.It("refuses a wrong password", func() {
			err := service.DisableTwoFactor(ctx, "u1", TwoFactorDisableDTO{Password: "wrong_password"})

			gomega.Expect(err).To(gomega.MatchError(internal.ErrInvalidCredentials))
			gomega.Expect(store.byID["u1"].TwoFactor.Enabled).To(gomega.BeTrue())
		})

		ginkgo.It("refuses when two-factor is not enabled", func() {
			store.byID["u1"].TwoFactor = TwoFactorState{}

			err := service.DisableTwoFactor(ctx, "u1", TwoFactorDisableDTO{Password: testPassword})

			appErr, ok := internal.IsAppError(err)
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(appErr.Code).To(gomega.Equal(internal.ErrCodeTwoFactorNotEnabled))
		})
	})

	ginkgo.Describe("ValidateTwoFactor", func() {
		var secret string

		ginkgo.BeforeEach(func() {
			setup, err := service.SetupTwoFactor(ctx, "u1")
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			secret = setup.Secret
			err = service.VerifyTwoFactor(ctx, "u1", TwoFactorCodeDTO{Code: codeAt(secret, at)})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
		})

		ginkgo.It("accepts a current code without changing state", func() {
			err := service.ValidateTwoFactor(ctx, "u1", TwoFactorCodeDTO{Code: codeAt(secret, at)})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(store.byID["u1"].TwoFactor.Enabled).To(gomega.BeTrue())
		})

		ginkgo.It("rejects a stale code", func() {
			err := service.ValidateTwoFactor(ctx, "u1", TwoFactorCodeDTO{Code: codeAt(secret, at.Add(-5*time.Minute))})
			gomega.Expect(err).To(gomega.MatchError(internal.ErrTwoFactorInvalid))
		})
	})

	ginkgo.Describe("TwoFactorStatus", func() {
		ginkgo.It("walks through the enrollment states", func() {
			status, err := service.TwoFactorStatus(ctx, "u1")
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(status.Enabled).To(gomega.BeFalse())
			gomega.Expect(status.Pending).To(gomega.BeFalse())

			setup, err := service.SetupTwoFactor(ctx, "u1")
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			status, err = service.TwoFactorStatus(ctx, "u1")
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(status.Pending).To(gomega.BeTrue())

			err = service.VerifyTwoFactor(ctx, "u1", TwoFactorCodeDTO{Code: codeAt(setup.Secret, at)})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			status, err = service.TwoFactorStatus(ctx, "u1")
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(status.Enabled).To(gomega.BeTrue())
			gomega.Expect(status.Pending).To(gomega.BeFalse())
			gomega.Expect(status.VerifiedAt).ToNot(gomega.BeEmpty())
		})
	})
})
