package user

import (
	"context"
	"time"
)

// User is the administrative view of a principal, with the tenants its
// active employments belong to (used for scope checks).
type User struct {
	ID               string     `json:"id"`
	Email            string     `json:"email"`
	Name             string     `json:"name"`
	IsSystemManager  bool       `json:"isSystemManager"`
	IsBlocked        bool       `json:"isBlocked"`
	TwoFactorEnabled bool       `json:"twoFactorEnabled"`
	CreatedAt        time.Time  `json:"createdAt"`
	TenantIDs        []int64    `json:"-"`
	DeletedAt        *time.Time `json:"-"`
}

func (u *User) BelongsToTenant(tenantID int64) bool {
	for _, id := range u.TenantIDs {
		if id == tenantID {
			return true
		}
	}
	return false
}

type RepositoryAPI interface {
	GetByID(ctx context.Context, id string) (*User, error)
	// ResetPassword replaces the hash with a temporary one and clears the
	// lockout state in the same update.
	ResetPassword(ctx context.Context, id, passwordHash string) error
	// ClearTwoFactor wipes the enrollment; resetRequired distinguishes an
	// administrative reset from a voluntary disable.
	ClearTwoFactor(ctx context.Context, id string, resetRequired bool) error
}

type ServiceAPI interface {
	ResetPassword(ctx context.Context, actor Actor, targetID string, resetTwoFactor bool) (*ResetPasswordResult, error)
	ResetTwoFactor(ctx context.Context, actor Actor, targetID string) error
}

// Actor is the requesting administrator, extracted from session claims.
type Actor struct {
	UserID          string
	TenantID        int64
	IsSystemManager bool
}

type ResetPasswordResult struct {
	TempPassword string `json:"tempPassword"`
	UserName     string `json:"userName"`
	UserEmail    string `json:"userEmail"`
}
