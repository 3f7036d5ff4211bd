package auth

import (
	"context"
	"time"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	"github.com/nexthealth/careplatform/internal"
	"github.com/nexthealth/careplatform/internal/core/events"
	"github.com/nexthealth/careplatform/pkg/logger"
)

var _ = ginkgo.Describe("AuthService Register", func() {
	var (
		service       *Service
		registrations *mockRegistrationStore
		bus           *events.EventBus
		requested     []events.Event
		ctx           context.Context
	)

	validDTO := func() RegisterDTO {
		return RegisterDTO{
			FacilityCode: "1310400001",
			Name:         "New Nurse",
			Email:        "nurse@example.com",
			Password:     "long_enough_password",
		}
	}

	ginkgo.BeforeEach(func() {
		ctx = context.Background()
		registrations = newMockRegistrationStore()
		bus = events.NewEventBus(logger.L())

		requested = nil
		bus.Subscribe(events.EventTypeEmploymentRequested, func(_ context.Context, e events.Event) error {
			requested = append(requested, e)
			return nil
		})

		cfg := internal.AuthConfig{JWTSecret: "test-secret", TokenDuration: time.Hour, BCryptCost: 4}
		tokens := NewTokenIssuer(cfg.JWTSecret, cfg.TokenDuration)
		directory := &mockTenantDirectory{tenants: map[string]int64{"1310400001": 10}}
		service = NewService(newMockPrincipalStore(), registrations, directory, tokens, bus, cfg, logger.L())
	})

	ginkgo.Context("with a new email", func() {
		ginkgo.It("creates the user with a pending employment and notifies admins", func() {
			result, err := service.Register(ctx, validDTO())

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(result.Message).ToNot(gomega.BeEmpty())
			gomega.Expect(registrations.createdUsers).To(gomega.HaveLen(1))

			created := registrations.createdUsers[0]
			gomega.Expect(created.Email).To(gomega.Equal("nurse@example.com"))
			gomega.Expect(created.TenantID).To(gomega.Equal(int64(10)))
			gomega.Expect(VerifyPassword(created.PasswordHash, "long_enough_password")).To(gomega.Succeed())

			bus.Wait()
			gomega.Expect(requested).To(gomega.HaveLen(1))
		})

		ginkgo.It("normalizes the email before lookup and persistence", func() {
			dto := validDTO()
			dto.Email = "  Nurse@Example.COM "

			_, err := service.Register(ctx, dto)

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(registrations.createdUsers[0].Email).To(gomega.Equal("nurse@example.com"))
		})
	})

	ginkgo.Context("with an existing email", func() {
		ginkgo.BeforeEach(func() {
			registrations.userIDsByEmail["nurse@example.com"] = "existing-user"
		})

		ginkgo.It("attaches a pending employment instead of a new user", func() {
			_, err := service.Register(ctx, validDTO())

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(registrations.createdUsers).To(gomega.BeEmpty())
			gomega.Expect(registrations.createdPending).To(gomega.Equal([]string{"existing-user"}))
		})

		ginkgo.It("conflicts when an employment for the tenant already exists", func() {
			registrations.employments["existing-user"] = map[int64]bool{10: true}

			_, err := service.Register(ctx, validDTO())

			gomega.Expect(err).To(gomega.MatchError(internal.ErrEmploymentExists))
			gomega.Expect(registrations.createdPending).To(gomega.BeEmpty())
		})
	})

	ginkgo.It("rejects an unknown facility code", func() {
		dto := validDTO()
		dto.FacilityCode = "0000000000"

		_, err := service.Register(ctx, dto)

		gomega.Expect(err).To(gomega.MatchError(internal.ErrTenantNotFound))
		gomega.Expect(registrations.createdUsers).To(gomega.BeEmpty())
	})

	ginkgo.It("rejects a weak password before any store access", func() {
		dto := validDTO()
		dto.Password = "short"

		_, err := service.Register(ctx, dto)

		appErr, ok := internal.IsAppError(err)
		gomega.Expect(ok).To(gomega.BeTrue())
		gomega.Expect(appErr.Code).To(gomega.Equal(internal.ErrCodeValidationFailed))
	})
})
