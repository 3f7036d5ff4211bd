package datamodel

import "time"

// Role is a tenant-scoped bundle of permission grants. Priority orders
// roles so an inviter can never hand out a role above their own.
type Role struct {
	ID          string     `gorm:"primaryKey"`
	TenantID    int64      `gorm:"column:tenant_id;not null;index"`
	Name        string     `gorm:"column:name;not null"`
	DisplayName string     `gorm:"column:display_name;not null"`
	Priority    int        `gorm:"column:priority;default:0"`
	HomePage    string     `gorm:"column:home_page"`
	CreatedAt   time.Time  `gorm:"column:created_at"`
	UpdatedAt   time.Time  `gorm:"column:updated_at"`
	DeletedAt   *time.Time `gorm:"column:deleted_at;index"`

	Permissions []Permission `gorm:"many2many:role_permissions;joinForeignKey:RoleID;joinReferences:PermissionID"`
}

func (Role) TableName() string { return "roles" }

// Permission is a global resource.action capability, e.g. "citizens.read".
type Permission struct {
	ID          int64     `gorm:"primaryKey"`
	Name        string    `gorm:"column:name;uniqueIndex;not null"`
	Description string    `gorm:"column:description"`
	CreatedAt   time.Time `gorm:"column:created_at"`
}

func (Permission) TableName() string { return "permissions" }

type RolePermission struct {
	RoleID       string `gorm:"column:role_id;primaryKey"`
	PermissionID int64  `gorm:"column:permission_id;primaryKey"`
}

func (RolePermission) TableName() string { return "role_permissions" }
