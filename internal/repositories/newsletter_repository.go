package repositories

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/hbapte/portfolio-api/internal/storage"
	"github.com/hbapte/portfolio-api/models"
)

// NewsletterRepository stores newsletters. Tags are a comma-separated string
// field, each tag indexed individually; a tag maps to the single newsletter
// most recently indexed under it.
type NewsletterRepository struct {
	schema *storage.Schema
	index  *storage.Index
}

func NewNewsletterRepository(store storage.Store) *NewsletterRepository {
	return &NewsletterRepository{
		schema: storage.NewSchema(store, "newsletter"),
		index:  storage.NewIndex(store, "newsletter"),
	}
}

type CreateNewsletterInput struct {
	Title        string
	Subject      string
	Content      string
	Tags         string
	ScheduledFor time.Time
}

func (r *NewsletterRepository) Create(ctx context.Context, input CreateNewsletterInput) (*models.Newsletter, error) {
	now := time.Now().UTC()
	fields := map[string]any{
		"title":      input.Title,
		"subject":    input.Subject,
		"content":    input.Content,
		"status":     models.NewsletterStatusDraft,
		"tags":       input.Tags,
		"openCount":  "0",
		"clickCount": "0",
		"createdAt":  now,
		"updatedAt":  now,
	}
	if !input.ScheduledFor.IsZero() {
		fields["scheduledFor"] = input.ScheduledFor
		fields["status"] = models.NewsletterStatusScheduled
	}

	rec, err := r.schema.Create(ctx, fields)
	if err != nil {
		return nil, err
	}

	if err := r.indexTags(ctx, input.Tags, rec["id"]); err != nil {
		return nil, err
	}

	return models.NewsletterFromRecord(rec), nil
}

func (r *NewsletterRepository) FindByID(ctx context.Context, id string) (*models.Newsletter, error) {
	rec, err := r.schema.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return models.NewsletterFromRecord(rec), nil
}

// FindByTag resolves the tag index to the single newsletter indexed under it.
func (r *NewsletterRepository) FindByTag(ctx context.Context, tag string) (*models.Newsletter, error) {
	id, err := r.index.Get(ctx, "tag", tag)
	if err != nil {
		return nil, err
	}
	if id == "" {
		return nil, nil
	}
	return r.FindByID(ctx, id)
}

func (r *NewsletterRepository) FindByStatus(ctx context.Context, status string) ([]*models.Newsletter, error) {
	records, err := r.schema.List(ctx)
	if err != nil {
		return nil, err
	}
	var out []*models.Newsletter
	for _, rec := range records {
		if rec["status"] == status {
			out = append(out, models.NewsletterFromRecord(rec))
		}
	}
	return out, nil
}

// UpdateByID merges changes into an existing newsletter. A transition into
// "sent" stamps sentAt; once in "sent", repeating the same status does not
// restamp it. A changed tags string re-indexes every tag.
func (r *NewsletterRepository) UpdateByID(ctx context.Context, id string, changes map[string]any) (*models.Newsletter, error) {
	existing, err := r.schema.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, nil
	}

	if status, ok := changes["status"].(string); ok {
		if status == models.NewsletterStatusSent && existing["status"] != models.NewsletterStatusSent {
			changes["sentAt"] = time.Now().UTC()
		}
	}

	var oldTags string
	if tags, ok := changes["tags"].(string); ok && tags != existing["tags"] {
		oldTags = existing["tags"]
	}

	changes["updatedAt"] = time.Now().UTC()

	rec, err := r.schema.UpdateByID(ctx, id, changes)
	if err != nil {
		return nil, err
	}

	if tags, ok := changes["tags"].(string); ok && oldTags != tags {
		for _, tag := range splitTags(oldTags) {
			if err := r.index.Remove(ctx, "tag", tag); err != nil {
				return nil, err
			}
		}
		if err := r.indexTags(ctx, tags, id); err != nil {
			return nil, err
		}
	}

	return models.NewsletterFromRecord(rec), nil
}

// IncrementCounter bumps a stringified integer field by one. Read-modify-
// write, not atomic: concurrent increments can lose updates. The rate limiter
// is the place for atomic counting, not entity fields.
func (r *NewsletterRepository) IncrementCounter(ctx context.Context, id, field string) (int, error) {
	rec, err := r.schema.FindByID(ctx, id)
	if err != nil {
		return 0, err
	}
	if rec == nil {
		return 0, nil
	}

	count, _ := strconv.Atoi(rec[field])
	count++

	_, err = r.schema.UpdateByID(ctx, id, map[string]any{field: strconv.Itoa(count)})
	if err != nil {
		return 0, err
	}
	return count, nil
}

// DeleteByID refuses to delete a sent newsletter and removes tag index
// entries along with the record.
func (r *NewsletterRepository) DeleteByID(ctx context.Context, id string) error {
	rec, err := r.schema.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if rec == nil {
		return nil
	}
	if rec["status"] == models.NewsletterStatusSent {
		return ErrNewsletterSent
	}

	for _, tag := range splitTags(rec["tags"]) {
		if err := r.index.Remove(ctx, "tag", tag); err != nil {
			return err
		}
	}
	return r.schema.DeleteByID(ctx, id)
}

// ListSorted returns one page of newsletters, newest first.
func (r *NewsletterRepository) ListSorted(ctx context.Context, page, limit int) ([]*models.Newsletter, int, error) {
	records, err := r.schema.List(ctx)
	if err != nil {
		return nil, 0, err
	}

	letters := make([]*models.Newsletter, 0, len(records))
	for _, rec := range records {
		letters = append(letters, models.NewsletterFromRecord(rec))
	}
	sort.Slice(letters, func(i, j int) bool {
		return letters[i].CreatedAt.After(letters[j].CreatedAt)
	})

	total := len(letters)
	start := (page - 1) * limit
	if start >= total {
		return []*models.Newsletter{}, total, nil
	}
	end := min(start+limit, total)
	return letters[start:end], total, nil
}

func (r *NewsletterRepository) indexTags(ctx context.Context, tags, id string) error {
	for _, tag := range splitTags(tags) {
		if err := r.index.Set(ctx, "tag", tag, id); err != nil {
			return err
		}
	}
	return nil
}

func splitTags(tags string) []string {
	if tags == "" {
		return nil
	}
	parts := strings.Split(tags, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
