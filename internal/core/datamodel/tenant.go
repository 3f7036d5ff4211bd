package datamodel

import "time"

const (
	SubscriptionActive  = "ACTIVE"
	SubscriptionBlocked = "BLOCKED"
)

// Tenant is an isolated organizational scope (one municipality). The
// facility code identifies the unit new users register against.
type Tenant struct {
	ID                 int64      `gorm:"primaryKey"`
	Name               string     `gorm:"column:name;not null"`
	MunicipalityName   string     `gorm:"column:municipality_name"`
	FacilityCode       string     `gorm:"column:facility_code;uniqueIndex;not null"`
	SubscriptionStatus string     `gorm:"column:subscription_status;default:'ACTIVE'"`
	CreatedAt          time.Time  `gorm:"column:created_at"`
	UpdatedAt          time.Time  `gorm:"column:updated_at"`
	DeletedAt          *time.Time `gorm:"column:deleted_at;index"`
}

func (Tenant) TableName() string { return "tenants" }
