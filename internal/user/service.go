package user

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log/slog"

	"github.com/nexthealth/careplatform/internal"
	"github.com/nexthealth/careplatform/internal/auth"
)

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// tempPassword returns a 10-character hex string. Recipients must change
// it at first login; the temporary flag is set alongside the hash.
func tempPassword() (string, error) {
	buf := make([]byte, 5)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func (s *Service) loadTarget(ctx context.Context, actor Actor, targetID string) (*User, error) {
	target, err := s.repo.GetByID(ctx, targetID)
	if err != nil {
		return nil, internal.NewInternalError("failed to load user", err)
	}
	if target == nil || target.DeletedAt != nil {
		return nil, internal.ErrUserNotFound
	}
	if target.IsSystemManager && !actor.IsSystemManager {
		return nil, internal.NewForbiddenError("Cannot manage a system manager account", internal.ErrCodeSystemManagerOnly)
	}
	if !actor.IsSystemManager && !target.BelongsToTenant(actor.TenantID) {
		return nil, internal.ErrUserNotFound
	}
	return target, nil
}

// ResetPassword issues a temporary password for the target and unblocks
// the account. When resetTwoFactor is set the enrollment is wiped too, so
// the user re-enrolls after logging in with the temporary password.
func (s *Service) ResetPassword(ctx context.Context, actor Actor, targetID string, resetTwoFactor bool) (*ResetPasswordResult, error) {
	target, err := s.loadTarget(ctx, actor, targetID)
	if err != nil {
		return nil, err
	}

	plain, err := tempPassword()
	if err != nil {
		return nil, internal.NewInternalError("failed to generate password", err)
	}
	hash, err := auth.HashPassword(plain, 0)
	if err != nil {
		return nil, internal.NewInternalError("failed to hash password", err)
	}
	if err := s.repo.ResetPassword(ctx, target.ID, hash); err != nil {
		return nil, internal.NewInternalError("failed to reset password", err)
	}
	if resetTwoFactor {
		if err := s.repo.ClearTwoFactor(ctx, target.ID, true); err != nil {
			return nil, internal.NewInternalError("failed to reset two-factor", err)
		}
	}

	s.logger.Info("password reset by administrator",
		slog.String("user_id", target.ID),
		slog.String("actor_id", actor.UserID),
		slog.Bool("two_factor_reset", resetTwoFactor))

	return &ResetPasswordResult{
		TempPassword: plain,
		UserName:     target.Name,
		UserEmail:    target.Email,
	}, nil
}

// ResetTwoFactor wipes the target's enrollment and marks it as an
// administrative reset, letting the user enroll again despite having had
// two-factor enabled.
func (s *Service) ResetTwoFactor(ctx context.Context, actor Actor, targetID string) error {
	target, err := s.loadTarget(ctx, actor, targetID)
	if err != nil {
		return err
	}
	if !target.TwoFactorEnabled {
		return internal.NewConflictError("Two-factor authentication is not enabled for this user", internal.ErrCodeTwoFactorNotEnabled)
	}
	if err := s.repo.ClearTwoFactor(ctx, target.ID, true); err != nil {
		return internal.NewInternalError("failed to reset two-factor", err)
	}

	s.logger.Info("two-factor reset by administrator",
		slog.String("user_id", target.ID),
		slog.String("actor_id", actor.UserID))
	return nil
}
