package notification

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nexthealth/careplatform/internal"
	"github.com/nexthealth/careplatform/internal/core/datamodel"
	"github.com/nexthealth/careplatform/internal/core/events"
)

// adminPermission selects who receives employment notifications: any user
// in the tenant whose role can decide employment requests.
const adminPermission = "employments.update"

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// RegisterHandlers subscribes the notification side effects to the event
// bus. All handlers are best effort: the bus logs failures and moves on.
func (s *Service) RegisterHandlers(bus *events.EventBus) {
	bus.Subscribe(events.EventTypeEmploymentRequested, s.onEmploymentRequested)
	bus.Subscribe(events.EventTypeEmploymentInvited, s.onEmploymentInvited)
	bus.Subscribe(events.EventTypeEmploymentDecided, s.onEmploymentDecided)
}

func (s *Service) onEmploymentRequested(ctx context.Context, event events.Event) error {
	e, ok := event.(*events.EmploymentRequestedEvent)
	if !ok {
		return fmt.Errorf("unexpected event payload for %s", event.EventType())
	}
	return s.repo.CreateForTenantAdmins(ctx, e.TenantID, adminPermission, &Notification{
		TenantID:     e.TenantID,
		Title:        "New employment request",
		Message:      fmt.Sprintf("%s has requested to join your facility", e.UserName),
		Type:         datamodel.NotificationEmploymentRequested,
		EmploymentID: &e.EmploymentID,
	})
}

func (s *Service) onEmploymentInvited(ctx context.Context, event events.Event) error {
	e, ok := event.(*events.EmploymentInvitedEvent)
	if !ok {
		return fmt.Errorf("unexpected event payload for %s", event.EventType())
	}
	return s.repo.Create(ctx, &Notification{
		TenantID:     e.TenantID,
		UserID:       e.UserID,
		Title:        "Facility invitation",
		Message:      "You have been invited to join a facility",
		Type:         datamodel.NotificationEmploymentInvited,
		EmploymentID: &e.EmploymentID,
	})
}

func (s *Service) onEmploymentDecided(ctx context.Context, event events.Event) error {
	e, ok := event.(*events.EmploymentDecidedEvent)
	if !ok {
		return fmt.Errorf("unexpected event payload for %s", event.EventType())
	}
	message := "Your employment request was rejected"
	if e.Status == datamodel.EmploymentAccepted {
		message = "Your employment request was accepted"
	}
	return s.repo.Create(ctx, &Notification{
		TenantID:     e.TenantID,
		UserID:       e.UserID,
		Title:        "Employment request decided",
		Message:      message,
		Type:         datamodel.NotificationEmploymentDecided,
		EmploymentID: &e.EmploymentID,
	})
}

func (s *Service) ListForUser(ctx context.Context, userID string, tenantID int64, unreadOnly bool) ([]Notification, error) {
	list, err := s.repo.ListForUser(ctx, userID, tenantID, unreadOnly)
	if err != nil {
		return nil, internal.NewInternalError("failed to list notifications", err)
	}
	return list, nil
}

func (s *Service) MarkRead(ctx context.Context, userID string, id int64) error {
	if err := s.repo.MarkRead(ctx, userID, id); err != nil {
		return internal.NewInternalError("failed to mark notification read", err)
	}
	return nil
}
