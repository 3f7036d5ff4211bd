package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/nexthealth/careplatform/internal/core/datamodel"
	"github.com/nexthealth/careplatform/internal/tenant"
)

type TenantRepository struct {
	db *gorm.DB
}

func NewTenantRepository(db *gorm.DB) tenant.RepositoryAPI {
	return &TenantRepository{db: db}
}

func (r *TenantRepository) GetByID(ctx context.Context, id int64) (*tenant.Tenant, error) {
	var row datamodel.Tenant
	err := r.db.WithContext(ctx).
		Where("id = ? AND deleted_at IS NULL", id).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return toTenant(&row), nil
}

func (r *TenantRepository) GetByFacilityCode(ctx context.Context, code string) (*tenant.Tenant, error) {
	var row datamodel.Tenant
	err := r.db.WithContext(ctx).
		Where("facility_code = ? AND deleted_at IS NULL", code).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return toTenant(&row), nil
}

func toTenant(row *datamodel.Tenant) *tenant.Tenant {
	return &tenant.Tenant{
		ID:                 row.ID,
		Name:               row.Name,
		MunicipalityName:   row.MunicipalityName,
		FacilityCode:       row.FacilityCode,
		SubscriptionStatus: row.SubscriptionStatus,
		CreatedAt:          row.CreatedAt,
	}
}
