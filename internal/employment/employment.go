package employment

import (
	"context"
	"time"
)

const (
	StatusPending  = "PENDING"
	StatusAccepted = "ACCEPTED"
	StatusRejected = "REJECTED"
)

// Employment is the administrative view of a user-tenant link.
type Employment struct {
	ID          int64      `json:"id"`
	UserID      string     `json:"userId"`
	TenantID    int64      `json:"tenantId"`
	RoleID      *string    `json:"roleId"`
	Status      string     `json:"status"`
	IsActive    bool       `json:"isActive"`
	IsPrimary   bool       `json:"isPrimary"`
	InvitedByID *string    `json:"invitedById,omitempty"`
	InvitedAt   *time.Time `json:"invitedAt,omitempty"`
	DecidedAt   *time.Time `json:"decidedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`

	TenantName      string  `json:"tenantName,omitempty"`
	RoleName        *string `json:"roleName,omitempty"`
	RoleDisplayName *string `json:"roleDisplayName,omitempty"`
}

func (e *Employment) Decided() bool {
	return e.Status != StatusPending
}

// RoleInfo is the slice of a role needed for assignment checks.
type RoleInfo struct {
	ID          string
	TenantID    int64
	Name        string
	DisplayName string
	Priority    int
}

type RepositoryAPI interface {
	GetByID(ctx context.Context, id int64) (*Employment, error)
	ListByUser(ctx context.Context, userID string) ([]Employment, error)
	FindActiveForUserTenant(ctx context.Context, userID string, tenantID int64) (*Employment, error)
	ExistsForTenant(ctx context.Context, userID string, tenantID int64) (bool, error)
	HasPrimary(ctx context.Context, userID string) (bool, error)
	GetRole(ctx context.Context, roleID string, tenantID int64) (*RoleInfo, error)
	RolePriority(ctx context.Context, roleID string) (int, error)
	UserExists(ctx context.Context, userID string) (bool, error)

	CreateInvite(ctx context.Context, userID string, tenantID int64, roleID, invitedByID string) (int64, error)
	CreateAccepted(ctx context.Context, userID string, tenantID int64, roleID, createdByID string, primary bool) (int64, error)
	Decide(ctx context.Context, id int64, status string, roleID *string, active, primary bool) error
	UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error
	SoftDelete(ctx context.Context, id int64) error
}

type ServiceAPI interface {
	ListForUser(ctx context.Context, userID string) ([]Employment, error)
	Decide(ctx context.Context, tenantID, employmentID int64, dto DecideDTO) (*Employment, error)
	Invite(ctx context.Context, tenantID int64, inviterID string, dto InviteDTO) (int64, error)
	Create(ctx context.Context, tenantID int64, creatorID string, dto CreateDTO) (*Employment, error)
	Update(ctx context.Context, tenantID, employmentID int64, dto UpdateDTO) (*Employment, error)
	Deactivate(ctx context.Context, tenantID, employmentID int64) error
}
