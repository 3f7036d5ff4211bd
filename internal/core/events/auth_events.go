package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeEmploymentRequested = "employment.requested"
	EventTypeEmploymentInvited   = "employment.invited"
	EventTypeEmploymentDecided   = "employment.decided"
)

type EmploymentRequestedEvent struct {
	BaseEvent
	EmploymentID int64  `json:"employment_id"`
	TenantID     int64  `json:"tenant_id"`
	UserID       string `json:"user_id"`
	UserName     string `json:"user_name"`
}

func NewEmploymentRequestedEvent(employmentID, tenantID int64, userID, userName string) *EmploymentRequestedEvent {
	return &EmploymentRequestedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeEmploymentRequested,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"employment_id": employmentID,
				"tenant_id":     tenantID,
				"user_id":       userID,
				"user_name":     userName,
			},
		},
		EmploymentID: employmentID,
		TenantID:     tenantID,
		UserID:       userID,
		UserName:     userName,
	}
}

type EmploymentInvitedEvent struct {
	BaseEvent
	EmploymentID int64  `json:"employment_id"`
	TenantID     int64  `json:"tenant_id"`
	UserID       string `json:"user_id"`
	InvitedByID  string `json:"invited_by_id"`
}

func NewEmploymentInvitedEvent(employmentID, tenantID int64, userID, invitedByID string) *EmploymentInvitedEvent {
	return &EmploymentInvitedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeEmploymentInvited,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"employment_id": employmentID,
				"tenant_id":     tenantID,
				"user_id":       userID,
				"invited_by_id": invitedByID,
			},
		},
		EmploymentID: employmentID,
		TenantID:     tenantID,
		UserID:       userID,
		InvitedByID:  invitedByID,
	}
}

type EmploymentDecidedEvent struct {
	BaseEvent
	EmploymentID int64  `json:"employment_id"`
	TenantID     int64  `json:"tenant_id"`
	UserID       string `json:"user_id"`
	Status       string `json:"status"`
}

func NewEmploymentDecidedEvent(employmentID, tenantID int64, userID, status string) *EmploymentDecidedEvent {
	return &EmploymentDecidedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeEmploymentDecided,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"employment_id": employmentID,
				"tenant_id":     tenantID,
				"user_id":       userID,
				"status":        status,
			},
		},
		EmploymentID: employmentID,
		TenantID:     tenantID,
		UserID:       userID,
		Status:       status,
	}
}
