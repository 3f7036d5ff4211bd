package datamodel

import "time"

const (
	NotificationEmploymentRequested = "EMPLOYMENT_REQUESTED"
	NotificationEmploymentInvited   = "EMPLOYMENT_INVITED"
	NotificationEmploymentDecided   = "EMPLOYMENT_DECIDED"
)

type Notification struct {
	ID           int64      `gorm:"primaryKey"`
	TenantID     int64      `gorm:"column:tenant_id;not null;index"`
	UserID       string     `gorm:"column:user_id;not null;index"`
	Title        string     `gorm:"column:title;not null"`
	Message      string     `gorm:"column:message;not null"`
	Type         string     `gorm:"column:type;not null"`
	EmploymentID *int64     `gorm:"column:employment_id"`
	ReadAt       *time.Time `gorm:"column:read_at"`
	CreatedAt    time.Time  `gorm:"column:created_at"`
}

func (Notification) TableName() string { return "notifications" }
