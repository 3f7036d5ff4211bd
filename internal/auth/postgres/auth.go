package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nexthealth/careplatform/internal/auth"
	"github.com/nexthealth/careplatform/internal/core/datamodel"
)

// Repository implements auth.PrincipalStore and auth.RegistrationStore on
// top of GORM.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) FindForLogin(ctx context.Context, email string) (*auth.Principal, error) {
	var user datamodel.User
	err := r.db.WithContext(ctx).
		Preload("Employments", "is_active = ? AND is_primary = ? AND status = ? AND deleted_at IS NULL",
			true, true, datamodel.EmploymentAccepted).
		Preload("Employments.Tenant").
		Preload("Employments.Role").
		Preload("Employments.Role.Permissions").
		Where("email = ? AND deleted_at IS NULL", strings.ToLower(strings.TrimSpace(email))).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return toPrincipal(&user), nil
}

func (r *Repository) FindByID(ctx context.Context, id string) (*auth.Principal, error) {
	var user datamodel.User
	err := r.db.WithContext(ctx).
		Where("id = ? AND deleted_at IS NULL", id).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return toPrincipal(&user), nil
}

func toPrincipal(u *datamodel.User) *auth.Principal {
	p := &auth.Principal{
		ID:                   u.ID,
		Email:                u.Email,
		Name:                 u.Name,
		PasswordHash:         u.PasswordHash,
		IsPasswordTemp:       u.IsPasswordTemp,
		AcceptedTerms:        u.AcceptedTerms,
		IsSystemManager:      u.IsSystemManager,
		IsBlocked:            u.IsBlocked,
		FailedPasswordCount:  u.NumberTry,
		FailedTwoFactorCount: u.NumberTry2FA,
		TwoFactor: auth.TwoFactorState{
			Enabled:       u.TwoFactorEnabled,
			Secret:        u.TwoFactorSecret,
			VerifiedAt:    u.TwoFactorVerifiedAt,
			ResetRequired: u.TwoFactorResetRequired,
		},
	}

	if len(u.Employments) > 0 {
		emp := u.Employments[0]
		employment := &auth.Employment{
			ID:       emp.ID,
			TenantID: emp.TenantID,
		}
		if emp.Tenant != nil {
			employment.TenantName = emp.Tenant.Name
			employment.SubscriptionStatus = emp.Tenant.SubscriptionStatus
		}
		if emp.Role != nil {
			role := &auth.Role{
				ID:          emp.Role.ID,
				Name:        emp.Role.Name,
				DisplayName: emp.Role.DisplayName,
				Priority:    emp.Role.Priority,
				HomePage:    emp.Role.HomePage,
				Permissions: make([]string, 0, len(emp.Role.Permissions)),
			}
			for _, perm := range emp.Role.Permissions {
				role.Permissions = append(role.Permissions, perm.Name)
			}
			employment.Role = role
		}
		p.Employment = employment
	}

	return p
}

func (r *Repository) HasPendingEmployment(ctx context.Context, userID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&datamodel.Employment{}).
		Where("user_id = ? AND status = ? AND deleted_at IS NULL", userID, datamodel.EmploymentPending).
		Count(&count).Error
	return count > 0, err
}

// RecordPasswordFailure increments and blocks in a single UPDATE so two
// concurrent failures never read the same counter value. The block flag
// only ever turns on here; a lost duplicate read can fire lockout early
// but never late.
func (r *Repository) RecordPasswordFailure(ctx context.Context, userID string) (bool, error) {
	err := r.db.WithContext(ctx).Exec(
		`UPDATE users
		 SET number_try = number_try + 1,
		     is_blocked = (is_blocked OR number_try + 1 >= ?),
		     updated_at = ?
		 WHERE id = ?`,
		auth.MaxFailedAttempts, time.Now(), userID).Error
	if err != nil {
		return false, err
	}
	return r.isBlocked(ctx, userID)
}

func (r *Repository) RecordTwoFactorFailure(ctx context.Context, userID string) (bool, error) {
	err := r.db.WithContext(ctx).Exec(
		`UPDATE users
		 SET number_try_2fa = number_try_2fa + 1,
		     is_blocked = (is_blocked OR number_try_2fa + 1 >= ?),
		     updated_at = ?
		 WHERE id = ?`,
		auth.MaxFailedAttempts, time.Now(), userID).Error
	if err != nil {
		return false, err
	}
	return r.isBlocked(ctx, userID)
}

func (r *Repository) isBlocked(ctx context.Context, userID string) (bool, error) {
	var blocked bool
	err := r.db.WithContext(ctx).
		Raw(`SELECT is_blocked FROM users WHERE id = ?`, userID).
		Scan(&blocked).Error
	return blocked, err
}

func (r *Repository) ResetPasswordFailures(ctx context.Context, userID string) error {
	return r.db.WithContext(ctx).Model(&datamodel.User{}).
		Where("id = ?", userID).
		Update("number_try", 0).Error
}

func (r *Repository) ResetTwoFactorFailures(ctx context.Context, userID string) error {
	return r.db.WithContext(ctx).Model(&datamodel.User{}).
		Where("id = ?", userID).
		Update("number_try_2fa", 0).Error
}

func (r *Repository) UpdatePassword(ctx context.Context, userID, passwordHash string, temporary bool) error {
	return r.db.WithContext(ctx).Model(&datamodel.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"password_hash":    passwordHash,
			"is_password_temp": temporary,
			"updated_at":       time.Now(),
		}).Error
}

func (r *Repository) SetTwoFactorSecret(ctx context.Context, userID, secret string) error {
	return r.db.WithContext(ctx).Model(&datamodel.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"two_factor_secret":      secret,
			"two_factor_enabled":     false,
			"two_factor_verified_at": nil,
			"updated_at":             time.Now(),
		}).Error
}

func (r *Repository) EnableTwoFactor(ctx context.Context, userID string, verifiedAt time.Time) error {
	return r.db.WithContext(ctx).Model(&datamodel.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"two_factor_enabled":        true,
			"two_factor_verified_at":    verifiedAt,
			"two_factor_reset_required": false,
			"updated_at":                time.Now(),
		}).Error
}

func (r *Repository) DisableTwoFactor(ctx context.Context, userID string) error {
	return r.db.WithContext(ctx).Model(&datamodel.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"two_factor_enabled":     false,
			"two_factor_secret":      nil,
			"two_factor_verified_at": nil,
			"updated_at":             time.Now(),
		}).Error
}

// ---- RegistrationStore ----

func (r *Repository) FindUserIDByEmail(ctx context.Context, email string) (string, bool, error) {
	var user datamodel.User
	err := r.db.WithContext(ctx).
		Select("id").
		Where("email = ? AND deleted_at IS NULL", strings.ToLower(strings.TrimSpace(email))).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, err
	}
	return user.ID, true, nil
}

func (r *Repository) HasEmploymentForTenant(ctx context.Context, userID string, tenantID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&datamodel.Employment{}).
		Where("user_id = ? AND tenant_id = ? AND status IN ? AND deleted_at IS NULL",
			userID, tenantID, []string{datamodel.EmploymentPending, datamodel.EmploymentAccepted}).
		Count(&count).Error
	return count > 0, err
}

func (r *Repository) CreatePendingEmployment(ctx context.Context, userID string, tenantID int64) (int64, error) {
	employment := datamodel.Employment{
		UserID:    userID,
		TenantID:  tenantID,
		Status:    datamodel.EmploymentPending,
		IsActive:  false,
		IsPrimary: false,
	}
	if err := r.db.WithContext(ctx).Create(&employment).Error; err != nil {
		return 0, err
	}
	return employment.ID, nil
}

// CreateUserWithEmployment creates both rows in one transaction; a
// principal without an employment must never be observable.
func (r *Repository) CreateUserWithEmployment(ctx context.Context, reg auth.NewRegistration) (string, int64, error) {
	userID := uuid.NewString()
	var employmentID int64

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		hash := reg.PasswordHash
		user := datamodel.User{
			ID:           userID,
			Email:        strings.ToLower(strings.TrimSpace(reg.Email)),
			Name:         reg.Name,
			PasswordHash: &hash,
		}
		if err := tx.Create(&user).Error; err != nil {
			return err
		}

		employment := datamodel.Employment{
			UserID:    userID,
			TenantID:  reg.TenantID,
			Status:    datamodel.EmploymentPending,
			IsActive:  false,
			IsPrimary: true,
		}
		if err := tx.Create(&employment).Error; err != nil {
			return err
		}
		employmentID = employment.ID
		return nil
	})
	if err != nil {
		return "", 0, err
	}
	return userID, employmentID, nil
}
