package repositories

import (
	"context"
	"sort"
	"time"

	"github.com/hbapte/portfolio-api/internal/storage"
	"github.com/hbapte/portfolio-api/models"
)

// NotificationRepository stores dashboard notifications. The read flag is a
// "true"/"false" string at the storage layer like every other boolean.
type NotificationRepository struct {
	schema *storage.Schema
}

func NewNotificationRepository(store storage.Store) *NotificationRepository {
	return &NotificationRepository{
		schema: storage.NewSchema(store, "notification"),
	}
}

func (r *NotificationRepository) Create(ctx context.Context, title, message, notifType string) (*models.Notification, error) {
	rec, err := r.schema.Create(ctx, map[string]any{
		"title":     title,
		"message":   message,
		"type":      notifType,
		"read":      "false",
		"createdAt": time.Now().UTC(),
	})
	if err != nil {
		return nil, err
	}
	return models.NotificationFromRecord(rec), nil
}

func (r *NotificationRepository) List(ctx context.Context) ([]*models.Notification, error) {
	records, err := r.schema.List(ctx)
	if err != nil {
		return nil, err
	}
	notifs := make([]*models.Notification, 0, len(records))
	for _, rec := range records {
		notifs = append(notifs, models.NotificationFromRecord(rec))
	}
	sort.Slice(notifs, func(i, j int) bool {
		return notifs[i].CreatedAt.After(notifs[j].CreatedAt)
	})
	return notifs, nil
}

func (r *NotificationRepository) ListUnread(ctx context.Context) ([]*models.Notification, error) {
	all, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	var unread []*models.Notification
	for _, n := range all {
		if !n.Read {
			unread = append(unread, n)
		}
	}
	return unread, nil
}

// MarkRead flips the read flag. Returns nil when the notification is absent.
func (r *NotificationRepository) MarkRead(ctx context.Context, id string) (*models.Notification, error) {
	rec, err := r.schema.UpdateByID(ctx, id, map[string]any{
		"read":   "true",
		"readAt": time.Now().UTC(),
	})
	if err != nil {
		return nil, err
	}
	return models.NotificationFromRecord(rec), nil
}
