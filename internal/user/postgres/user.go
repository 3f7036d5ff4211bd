package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/nexthealth/careplatform/internal/core/datamodel"
	"github.com/nexthealth/careplatform/internal/user"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) GetByID(ctx context.Context, id string) (*user.User, error) {
	var record datamodel.User
	err := r.db.WithContext(ctx).
		Preload("Employments", "is_active = ? AND status = ? AND deleted_at IS NULL",
			true, datamodel.EmploymentAccepted).
		Where("id = ?", id).
		First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	u := &user.User{
		ID:               record.ID,
		Email:            record.Email,
		Name:             record.Name,
		IsSystemManager:  record.IsSystemManager,
		IsBlocked:        record.IsBlocked,
		TwoFactorEnabled: record.TwoFactorEnabled,
		CreatedAt:        record.CreatedAt,
		DeletedAt:        record.DeletedAt,
	}
	for _, emp := range record.Employments {
		u.TenantIDs = append(u.TenantIDs, emp.TenantID)
	}
	return u, nil
}

// ResetPassword installs a temporary hash and clears the lockout in one
// update, so a locked-out user can log in again immediately.
func (r *Repository) ResetPassword(ctx context.Context, id, passwordHash string) error {
	return r.db.WithContext(ctx).Model(&datamodel.User{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"password_hash":    passwordHash,
			"is_password_temp": true,
			"is_blocked":       false,
			"number_try":       0,
			"number_try_2fa":   0,
		}).Error
}

func (r *Repository) ClearTwoFactor(ctx context.Context, id string, resetRequired bool) error {
	return r.db.WithContext(ctx).Model(&datamodel.User{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"two_factor_enabled":        false,
			"two_factor_secret":         nil,
			"two_factor_verified_at":    nil,
			"two_factor_reset_required": resetRequired,
			"number_try_2fa":            0,
		}).Error
}
