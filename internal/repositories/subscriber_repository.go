package repositories

import (
	"context"
	"sort"
	"time"

	"github.com/hbapte/portfolio-api/internal/storage"
	"github.com/hbapte/portfolio-api/models"
)

// SubscriberRepository stores newsletter subscribers, with a unique secondary
// index on email.
type SubscriberRepository struct {
	schema *storage.Schema
	index  *storage.Index
}

func NewSubscriberRepository(store storage.Store) *SubscriberRepository {
	return &SubscriberRepository{
		schema: storage.NewSchema(store, "subscriber"),
		index:  storage.NewIndex(store, "subscriber"),
	}
}

type CreateSubscriberInput struct {
	Email string
	Name  string
}

func (r *SubscriberRepository) Create(ctx context.Context, input CreateSubscriberInput) (*models.Subscriber, error) {
	existing, err := r.index.Get(ctx, "email", input.Email)
	if err != nil {
		return nil, err
	}
	if existing != "" {
		return nil, ErrEmailExists
	}

	rec, err := r.schema.Create(ctx, map[string]any{
		"email":     input.Email,
		"name":      input.Name,
		"status":    models.SubscriberStatusActive,
		"createdAt": time.Now().UTC(),
	})
	if err != nil {
		return nil, err
	}

	if err := r.index.Set(ctx, "email", input.Email, rec["id"]); err != nil {
		return nil, err
	}

	return models.SubscriberFromRecord(rec), nil
}

func (r *SubscriberRepository) FindByID(ctx context.Context, id string) (*models.Subscriber, error) {
	rec, err := r.schema.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return models.SubscriberFromRecord(rec), nil
}

func (r *SubscriberRepository) FindByEmail(ctx context.Context, email string) (*models.Subscriber, error) {
	id, err := r.index.Get(ctx, "email", email)
	if err != nil {
		return nil, err
	}
	if id == "" {
		return nil, nil
	}
	return r.FindByID(ctx, id)
}

// FindByStatus scans the whole collection. O(n); fine at portfolio scale.
func (r *SubscriberRepository) FindByStatus(ctx context.Context, status string) ([]*models.Subscriber, error) {
	records, err := r.schema.List(ctx)
	if err != nil {
		return nil, err
	}
	var subs []*models.Subscriber
	for _, rec := range records {
		if rec["status"] == status {
			subs = append(subs, models.SubscriberFromRecord(rec))
		}
	}
	return subs, nil
}

// Unsubscribe flips the status and stamps unsubscribedAt. Reports whether a
// subscriber with that email existed.
func (r *SubscriberRepository) Unsubscribe(ctx context.Context, email string) (bool, error) {
	sub, err := r.FindByEmail(ctx, email)
	if err != nil {
		return false, err
	}
	if sub == nil {
		return false, nil
	}

	_, err = r.schema.UpdateByID(ctx, sub.ID, map[string]any{
		"status":         models.SubscriberStatusUnsubscribed,
		"unsubscribedAt": time.Now().UTC(),
	})
	return true, err
}

// ListSorted returns one page of subscribers, newest first. Pagination is
// in-memory after a full listing; there is no store-level cursor.
func (r *SubscriberRepository) ListSorted(ctx context.Context, page, limit int) ([]*models.Subscriber, int, error) {
	records, err := r.schema.List(ctx)
	if err != nil {
		return nil, 0, err
	}

	subs := make([]*models.Subscriber, 0, len(records))
	for _, rec := range records {
		subs = append(subs, models.SubscriberFromRecord(rec))
	}
	sort.Slice(subs, func(i, j int) bool {
		return subs[i].CreatedAt.After(subs[j].CreatedAt)
	})

	total := len(subs)
	start := (page - 1) * limit
	if start >= total {
		return []*models.Subscriber{}, total, nil
	}
	end := min(start+limit, total)
	return subs[start:end], total, nil
}

// DeleteByID removes the record and its email index entry.
func (r *SubscriberRepository) DeleteByID(ctx context.Context, id string) error {
	rec, err := r.schema.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if rec == nil {
		return nil
	}
	if err := r.index.Remove(ctx, "email", rec["email"]); err != nil {
		return err
	}
	return r.schema.DeleteByID(ctx, id)
}
