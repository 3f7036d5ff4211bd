package auth

import (
	"context"
	"strings"

	"github.com/nexthealth/careplatform/internal"
	"github.com/nexthealth/careplatform/internal/core/events"
)

type RegisterResult struct {
	Message string `json:"message"`
}

// Register handles self-registration against a facility code. An existing
// email gets a new pending, non-primary employment attached; a new email
// creates principal and employment atomically so an orphaned principal is
// never observable. The admin notification at the end is best-effort: the
// event bus logs handler failures and never fails the registration.
func (s *Service) Register(ctx context.Context, dto RegisterDTO) (*RegisterResult, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	tenantID, _, err := s.tenants.ResolveFacilityCode(ctx, dto.FacilityCode)
	if err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(dto.Email))

	userID, exists, err := s.registrations.FindUserIDByEmail(ctx, email)
	if err != nil {
		return nil, internal.NewInternalError("looking up email", err)
	}

	var employmentID int64
	if exists {
		has, err := s.registrations.HasEmploymentForTenant(ctx, userID, tenantID)
		if err != nil {
			return nil, internal.NewInternalError("checking existing employment", err)
		}
		if has {
			return nil, internal.ErrEmploymentExists
		}
		employmentID, err = s.registrations.CreatePendingEmployment(ctx, userID, tenantID)
		if err != nil {
			return nil, internal.NewInternalError("creating employment request", err)
		}
	} else {
		hash, err := HashPassword(dto.Password, s.cfg.BCryptCost)
		if err != nil {
			return nil, internal.NewInternalError("hashing password", err)
		}
		userID, employmentID, err = s.registrations.CreateUserWithEmployment(ctx, NewRegistration{
			Name:         dto.Name,
			Email:        email,
			PasswordHash: hash,
			TenantID:     tenantID,
		})
		if err != nil {
			return nil, internal.NewInternalError("creating user", err)
		}
	}

	s.bus.Publish(ctx, events.NewEmploymentRequestedEvent(employmentID, tenantID, userID, dto.Name))

	s.logger.Info("registration submitted",
		"user_id", userID, "tenant_id", tenantID, "employment_id", employmentID)

	return &RegisterResult{Message: "Registration submitted and awaiting approval"}, nil
}
