package notification

import (
	"context"
	"time"
)

type Notification struct {
	ID           int64      `json:"id"`
	TenantID     int64      `json:"tenantId"`
	UserID       string     `json:"userId"`
	Title        string     `json:"title"`
	Message      string     `json:"message"`
	Type         string     `json:"type"`
	EmploymentID *int64     `json:"employmentId,omitempty"`
	ReadAt       *time.Time `json:"readAt,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
}

type RepositoryAPI interface {
	Create(ctx context.Context, n *Notification) error
	// CreateForTenantAdmins fans one notification out to every user holding
	// the given permission in the tenant.
	CreateForTenantAdmins(ctx context.Context, tenantID int64, permission string, n *Notification) error
	ListForUser(ctx context.Context, userID string, tenantID int64, unreadOnly bool) ([]Notification, error)
	MarkRead(ctx context.Context, userID string, id int64) error
}
