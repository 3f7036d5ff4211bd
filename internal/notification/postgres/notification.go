package postgres

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/nexthealth/careplatform/internal/core/datamodel"
	"github.com/nexthealth/careplatform/internal/notification"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func toRecord(n *notification.Notification) *datamodel.Notification {
	return &datamodel.Notification{
		TenantID:     n.TenantID,
		UserID:       n.UserID,
		Title:        n.Title,
		Message:      n.Message,
		Type:         n.Type,
		EmploymentID: n.EmploymentID,
	}
}

func toDomain(rec datamodel.Notification) notification.Notification {
	return notification.Notification{
		ID:           rec.ID,
		TenantID:     rec.TenantID,
		UserID:       rec.UserID,
		Title:        rec.Title,
		Message:      rec.Message,
		Type:         rec.Type,
		EmploymentID: rec.EmploymentID,
		ReadAt:       rec.ReadAt,
		CreatedAt:    rec.CreatedAt,
	}
}

func (r *Repository) Create(ctx context.Context, n *notification.Notification) error {
	return r.db.WithContext(ctx).Create(toRecord(n)).Error
}

// CreateForTenantAdmins inserts one row per tenant user whose active role
// carries the given permission.
func (r *Repository) CreateForTenantAdmins(ctx context.Context, tenantID int64, permission string, n *notification.Notification) error {
	var userIDs []string
	err := r.db.WithContext(ctx).
		Table("employments").
		Select("DISTINCT employments.user_id").
		Joins("JOIN role_permissions ON role_permissions.role_id = employments.role_id").
		Joins("JOIN permissions ON permissions.id = role_permissions.permission_id").
		Where("employments.tenant_id = ? AND employments.status = ? AND employments.is_active = ? AND employments.deleted_at IS NULL",
			tenantID, datamodel.EmploymentAccepted, true).
		Where("permissions.name IN ?", []string{permission, "*"}).
		Pluck("employments.user_id", &userIDs).Error
	if err != nil {
		return err
	}
	if len(userIDs) == 0 {
		return nil
	}

	records := make([]datamodel.Notification, 0, len(userIDs))
	for _, userID := range userIDs {
		rec := toRecord(n)
		rec.UserID = userID
		records = append(records, *rec)
	}
	return r.db.WithContext(ctx).Create(&records).Error
}

func (r *Repository) ListForUser(ctx context.Context, userID string, tenantID int64, unreadOnly bool) ([]notification.Notification, error) {
	query := r.db.WithContext(ctx).
		Where("user_id = ? AND tenant_id = ?", userID, tenantID).
		Order("created_at DESC").
		Limit(100)
	if unreadOnly {
		query = query.Where("read_at IS NULL")
	}

	var records []datamodel.Notification
	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}

	list := make([]notification.Notification, 0, len(records))
	for _, rec := range records {
		list = append(list, toDomain(rec))
	}
	return list, nil
}

func (r *Repository) MarkRead(ctx context.Context, userID string, id int64) error {
	now := time.Now()
	return r.db.WithContext(ctx).Model(&datamodel.Notification{}).
		Where("id = ? AND user_id = ? AND read_at IS NULL", id, userID).
		Update("read_at", now).Error
}
