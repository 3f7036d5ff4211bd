package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/nexthealth/careplatform/internal/core/datamodel"
	"github.com/nexthealth/careplatform/internal/employment"
)

type EmploymentRepository struct {
	db *gorm.DB
}

func NewEmploymentRepository(db *gorm.DB) employment.RepositoryAPI {
	return &EmploymentRepository{db: db}
}

func (r *EmploymentRepository) GetByID(ctx context.Context, id int64) (*employment.Employment, error) {
	var row datamodel.Employment
	err := r.db.WithContext(ctx).
		Preload("Tenant").
		Preload("Role").
		Where("id = ? AND deleted_at IS NULL", id).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return toEmployment(&row), nil
}

func (r *EmploymentRepository) ListByUser(ctx context.Context, userID string) ([]employment.Employment, error) {
	var rows []datamodel.Employment
	err := r.db.WithContext(ctx).
		Preload("Tenant").
		Preload("Role").
		Where("user_id = ? AND deleted_at IS NULL", userID).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	list := make([]employment.Employment, 0, len(rows))
	for i := range rows {
		list = append(list, *toEmployment(&rows[i]))
	}
	return list, nil
}

func (r *EmploymentRepository) FindActiveForUserTenant(ctx context.Context, userID string, tenantID int64) (*employment.Employment, error) {
	var row datamodel.Employment
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND tenant_id = ? AND is_active = ? AND status = ? AND deleted_at IS NULL",
			userID, tenantID, true, datamodel.EmploymentAccepted).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return toEmployment(&row), nil
}

func (r *EmploymentRepository) ExistsForTenant(ctx context.Context, userID string, tenantID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&datamodel.Employment{}).
		Where("user_id = ? AND tenant_id = ? AND status IN ? AND deleted_at IS NULL",
			userID, tenantID, []string{datamodel.EmploymentPending, datamodel.EmploymentAccepted}).
		Count(&count).Error
	return count > 0, err
}

func (r *EmploymentRepository) HasPrimary(ctx context.Context, userID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&datamodel.Employment{}).
		Where("user_id = ? AND is_primary = ? AND status = ? AND deleted_at IS NULL",
			userID, true, datamodel.EmploymentAccepted).
		Count(&count).Error
	return count > 0, err
}

func (r *EmploymentRepository) GetRole(ctx context.Context, roleID string, tenantID int64) (*employment.RoleInfo, error) {
	var row datamodel.Role
	err := r.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ? AND deleted_at IS NULL", roleID, tenantID).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &employment.RoleInfo{
		ID:          row.ID,
		TenantID:    row.TenantID,
		Name:        row.Name,
		DisplayName: row.DisplayName,
		Priority:    row.Priority,
	}, nil
}

func (r *EmploymentRepository) RolePriority(ctx context.Context, roleID string) (int, error) {
	var priority int
	err := r.db.WithContext(ctx).
		Model(&datamodel.Role{}).
		Select("priority").
		Where("id = ?", roleID).
		Scan(&priority).Error
	return priority, err
}

func (r *EmploymentRepository) UserExists(ctx context.Context, userID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&datamodel.User{}).
		Where("id = ? AND deleted_at IS NULL", userID).
		Count(&count).Error
	return count > 0, err
}

func (r *EmploymentRepository) CreateInvite(ctx context.Context, userID string, tenantID int64, roleID, invitedByID string) (int64, error) {
	now := time.Now()
	row := datamodel.Employment{
		UserID:      userID,
		TenantID:    tenantID,
		RoleID:      &roleID,
		Status:      datamodel.EmploymentPending,
		IsActive:    false,
		IsPrimary:   false,
		InvitedByID: &invitedByID,
		InvitedAt:   &now,
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return 0, err
	}
	return row.ID, nil
}

func (r *EmploymentRepository) CreateAccepted(ctx context.Context, userID string, tenantID int64, roleID, createdByID string, primary bool) (int64, error) {
	now := time.Now()
	row := datamodel.Employment{
		UserID:      userID,
		TenantID:    tenantID,
		RoleID:      &roleID,
		Status:      datamodel.EmploymentAccepted,
		IsActive:    true,
		IsPrimary:   primary,
		InvitedByID: &createdByID,
		DecidedAt:   &now,
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return 0, err
	}
	return row.ID, nil
}

func (r *EmploymentRepository) Decide(ctx context.Context, id int64, status string, roleID *string, active, primary bool) error {
	fields := map[string]interface{}{
		"status":     status,
		"is_active":  active,
		"is_primary": primary,
		"decided_at": time.Now(),
		"updated_at": time.Now(),
	}
	if roleID != nil {
		fields["role_id"] = *roleID
	}
	return r.db.WithContext(ctx).
		Model(&datamodel.Employment{}).
		Where("id = ?", id).
		Updates(fields).Error
}

func (r *EmploymentRepository) UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error {
	fields["updated_at"] = time.Now()
	return r.db.WithContext(ctx).
		Model(&datamodel.Employment{}).
		Where("id = ?", id).
		Updates(fields).Error
}

func (r *EmploymentRepository) SoftDelete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).
		Model(&datamodel.Employment{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"is_active":  false,
			"deleted_at": time.Now(),
		}).Error
}

func toEmployment(row *datamodel.Employment) *employment.Employment {
	e := &employment.Employment{
		ID:          row.ID,
		UserID:      row.UserID,
		TenantID:    row.TenantID,
		RoleID:      row.RoleID,
		Status:      row.Status,
		IsActive:    row.IsActive,
		IsPrimary:   row.IsPrimary,
		InvitedByID: row.InvitedByID,
		InvitedAt:   row.InvitedAt,
		DecidedAt:   row.DecidedAt,
		CreatedAt:   row.CreatedAt,
	}
	if row.Tenant != nil {
		e.TenantName = row.Tenant.Name
	}
	if row.Role != nil {
		e.RoleName = &row.Role.Name
		e.RoleDisplayName = &row.Role.DisplayName
	}
	return e
}
