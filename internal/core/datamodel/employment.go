package datamodel

import "time"

const (
	EmploymentPending  = "PENDING"
	EmploymentAccepted = "ACCEPTED"
	EmploymentRejected = "REJECTED"
)

// Employment binds a user to one tenant under one role. Only
// isActive && status=ACCEPTED rows participate in authorization; isPrimary
// picks the session employment for multi-tenant users.
type Employment struct {
	ID          int64      `gorm:"primaryKey"`
	UserID      string     `gorm:"column:user_id;not null;index"`
	TenantID    int64      `gorm:"column:tenant_id;not null;index"`
	RoleID      *string    `gorm:"column:role_id"`
	Status      string     `gorm:"column:status;default:'PENDING'"`
	IsActive    bool       `gorm:"column:is_active;default:false"`
	IsPrimary   bool       `gorm:"column:is_primary;default:false"`
	InvitedByID *string    `gorm:"column:invited_by_id"`
	InvitedAt   *time.Time `gorm:"column:invited_at"`
	DecidedAt   *time.Time `gorm:"column:decided_at"`
	CreatedAt   time.Time  `gorm:"column:created_at"`
	UpdatedAt   time.Time  `gorm:"column:updated_at"`
	DeletedAt   *time.Time `gorm:"column:deleted_at;index"`

	Tenant *Tenant `gorm:"foreignKey:TenantID"`
	Role   *Role   `gorm:"foreignKey:RoleID"`
}

func (Employment) TableName() string { return "employments" }
