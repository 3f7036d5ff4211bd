package datamodel

import "time"

// User is the persisted principal record. Password hash is nullable: users
// created through invites cannot log in until a password is set.
type User struct {
	ID                     string     `gorm:"primaryKey"`
	Email                  string     `gorm:"column:email;uniqueIndex;not null"`
	Name                   string     `gorm:"column:name;not null"`
	PasswordHash           *string    `gorm:"column:password_hash"`
	IsPasswordTemp         bool       `gorm:"column:is_password_temp;default:false"`
	AcceptedTerms          bool       `gorm:"column:accepted_terms;default:false"`
	IsSystemManager        bool       `gorm:"column:is_system_manager;default:false"`
	IsBlocked              bool       `gorm:"column:is_blocked;default:false"`
	NumberTry              int        `gorm:"column:number_try;default:0"`
	NumberTry2FA           int        `gorm:"column:number_try_2fa;default:0"`
	TwoFactorEnabled       bool       `gorm:"column:two_factor_enabled;default:false"`
	TwoFactorSecret        *string    `gorm:"column:two_factor_secret"`
	TwoFactorVerifiedAt    *time.Time `gorm:"column:two_factor_verified_at"`
	TwoFactorResetRequired bool       `gorm:"column:two_factor_reset_required;default:false"`
	CreatedAt              time.Time  `gorm:"column:created_at"`
	UpdatedAt              time.Time  `gorm:"column:updated_at"`
	DeletedAt              *time.Time `gorm:"column:deleted_at;index"`

	Employments []Employment `gorm:"foreignKey:UserID"`
}

func (User) TableName() string { return "users" }
