package employment

import (
	"context"
	"log/slog"

	"github.com/nexthealth/careplatform/internal"
	"github.com/nexthealth/careplatform/internal/core/events"
)

type Service struct {
	repo   RepositoryAPI
	bus    *events.EventBus
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, bus *events.EventBus, logger *slog.Logger) *Service {
	return &Service{repo: repo, bus: bus, logger: logger}
}

func (s *Service) ListForUser(ctx context.Context, userID string) ([]Employment, error) {
	list, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, internal.NewInternalError("listing employments", err)
	}
	return list, nil
}

// Decide accepts or rejects a pending employment exactly once. Accepting
// assigns the role and activates the link; the first accepted employment
// of a user becomes primary.
func (s *Service) Decide(ctx context.Context, tenantID, employmentID int64, dto DecideDTO) (*Employment, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	emp, err := s.loadScoped(ctx, tenantID, employmentID)
	if err != nil {
		return nil, err
	}
	if emp.Decided() {
		return nil, internal.ErrEmploymentDecided
	}

	status := StatusRejected
	var roleID *string
	active, primary := false, false

	if dto.Accept {
		role, err := s.repo.GetRole(ctx, dto.RoleID, tenantID)
		if err != nil {
			return nil, internal.NewInternalError("loading role", err)
		}
		if role == nil {
			return nil, internal.ErrRoleNotFound
		}

		hasPrimary, err := s.repo.HasPrimary(ctx, emp.UserID)
		if err != nil {
			return nil, internal.NewInternalError("checking primary employment", err)
		}

		status = StatusAccepted
		roleID = &role.ID
		active = true
		primary = !hasPrimary
	}

	if err := s.repo.Decide(ctx, employmentID, status, roleID, active, primary); err != nil {
		return nil, internal.NewInternalError("deciding employment", err)
	}

	s.bus.Publish(ctx, events.NewEmploymentDecidedEvent(employmentID, tenantID, emp.UserID, status))
	s.logger.Info("employment decided",
		"employment_id", employmentID, "tenant_id", tenantID, "status", status)

	return s.repo.GetByID(ctx, employmentID)
}

// Invite attaches a pending employment for an existing user. The inviter
// cannot hand out a role with a priority above their own.
func (s *Service) Invite(ctx context.Context, tenantID int64, inviterID string, dto InviteDTO) (int64, error) {
	if err := dto.Validate(); err != nil {
		return 0, err
	}

	if err := s.checkAssignable(ctx, tenantID, inviterID, dto.UserID, dto.RoleID); err != nil {
		return 0, err
	}

	employmentID, err := s.repo.CreateInvite(ctx, dto.UserID, tenantID, dto.RoleID, inviterID)
	if err != nil {
		return 0, internal.NewInternalError("creating invite", err)
	}

	s.bus.Publish(ctx, events.NewEmploymentInvitedEvent(employmentID, tenantID, dto.UserID, inviterID))
	s.logger.Info("employment invite created",
		"employment_id", employmentID, "tenant_id", tenantID, "user_id", dto.UserID)

	return employmentID, nil
}

// Create attaches an existing user directly as an accepted member, the
// administrative shortcut that skips the invite round-trip. The same role
// priority ceiling applies as for invites.
func (s *Service) Create(ctx context.Context, tenantID int64, creatorID string, dto CreateDTO) (*Employment, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	if err := s.checkAssignable(ctx, tenantID, creatorID, dto.UserID, dto.RoleID); err != nil {
		return nil, err
	}

	hasPrimary, err := s.repo.HasPrimary(ctx, dto.UserID)
	if err != nil {
		return nil, internal.NewInternalError("checking primary employment", err)
	}

	employmentID, err := s.repo.CreateAccepted(ctx, dto.UserID, tenantID, dto.RoleID, creatorID, !hasPrimary)
	if err != nil {
		return nil, internal.NewInternalError("creating employment", err)
	}

	s.bus.Publish(ctx, events.NewEmploymentDecidedEvent(employmentID, tenantID, dto.UserID, StatusAccepted))
	s.logger.Info("employment created",
		"employment_id", employmentID, "tenant_id", tenantID, "user_id", dto.UserID)

	return s.repo.GetByID(ctx, employmentID)
}

// checkAssignable runs the shared gates for handing a role to a user:
// the user must exist, the role must belong to the tenant, the actor's
// own role priority caps what they can grant, and the user must not
// already hold or await an employment in the tenant.
func (s *Service) checkAssignable(ctx context.Context, tenantID int64, actorID, userID, roleID string) error {
	exists, err := s.repo.UserExists(ctx, userID)
	if err != nil {
		return internal.NewInternalError("looking up user", err)
	}
	if !exists {
		return internal.ErrUserNotFound
	}

	role, err := s.repo.GetRole(ctx, roleID, tenantID)
	if err != nil {
		return internal.NewInternalError("loading role", err)
	}
	if role == nil {
		return internal.ErrRoleNotFound
	}

	actorEmp, err := s.repo.FindActiveForUserTenant(ctx, actorID, tenantID)
	if err != nil {
		return internal.NewInternalError("loading actor employment", err)
	}
	if actorEmp != nil && actorEmp.RoleID != nil {
		actorPriority, err := s.repo.RolePriority(ctx, *actorEmp.RoleID)
		if err != nil {
			return internal.NewInternalError("loading actor role", err)
		}
		if role.Priority > actorPriority {
			return internal.NewForbiddenError(
				"Cannot grant a role with higher priority than your own",
				internal.ErrCodeRolePriority)
		}
	}

	dup, err := s.repo.ExistsForTenant(ctx, userID, tenantID)
	if err != nil {
		return internal.NewInternalError("checking existing employment", err)
	}
	if dup {
		return internal.ErrEmploymentExists
	}
	return nil
}

func (s *Service) Update(ctx context.Context, tenantID, employmentID int64, dto UpdateDTO) (*Employment, error) {
	emp, err := s.loadScoped(ctx, tenantID, employmentID)
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if dto.IsActive != nil {
		fields["is_active"] = *dto.IsActive
	}
	if dto.RoleID != nil {
		role, err := s.repo.GetRole(ctx, *dto.RoleID, tenantID)
		if err != nil {
			return nil, internal.NewInternalError("loading role", err)
		}
		if role == nil {
			return nil, internal.ErrRoleNotFound
		}
		fields["role_id"] = *dto.RoleID
	}
	if len(fields) == 0 {
		return emp, nil
	}

	if err := s.repo.UpdateFields(ctx, employmentID, fields); err != nil {
		return nil, internal.NewInternalError("updating employment", err)
	}
	return s.repo.GetByID(ctx, employmentID)
}

// Deactivate soft-removes the employment; rows are never hard-deleted.
func (s *Service) Deactivate(ctx context.Context, tenantID, employmentID int64) error {
	if _, err := s.loadScoped(ctx, tenantID, employmentID); err != nil {
		return err
	}
	if err := s.repo.SoftDelete(ctx, employmentID); err != nil {
		return internal.NewInternalError("deactivating employment", err)
	}
	s.logger.Info("employment deactivated", "employment_id", employmentID, "tenant_id", tenantID)
	return nil
}

func (s *Service) loadScoped(ctx context.Context, tenantID, employmentID int64) (*Employment, error) {
	emp, err := s.repo.GetByID(ctx, employmentID)
	if err != nil {
		return nil, internal.NewInternalError("loading employment", err)
	}
	if emp == nil || emp.TenantID != tenantID {
		return nil, internal.ErrEmploymentNotFound
	}
	return emp, nil
}
