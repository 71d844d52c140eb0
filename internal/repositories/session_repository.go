package repositories

import (
	"context"
	"time"

	"github.com/hbapte/portfolio-api/internal/storage"
	"github.com/hbapte/portfolio-api/models"
)

// SessionRepository stores login sessions. Tokens are stored hashed, with a
// secondary index from the hash to the session id.
type SessionRepository struct {
	schema *storage.Schema
	index  *storage.Index
}

func NewSessionRepository(store storage.Store) *SessionRepository {
	return &SessionRepository{
		schema: storage.NewSchema(store, "session"),
		index:  storage.NewIndex(store, "session"),
	}
}

type CreateSessionInput struct {
	StaffID     string
	Email       string
	HashedToken string
	TTL         time.Duration
	IPAddress   string
	UserAgent   string
}

func (r *SessionRepository) Create(ctx context.Context, input CreateSessionInput) (*models.Session, error) {
	now := time.Now().UTC()
	rec, err := r.schema.Create(ctx, map[string]any{
		"staffId":   input.StaffID,
		"email":     input.Email,
		"token":     input.HashedToken,
		"expiresAt": now.Add(input.TTL),
		"ipAddress": input.IPAddress,
		"userAgent": input.UserAgent,
		"createdAt": now,
	})
	if err != nil {
		return nil, err
	}

	if err := r.index.Set(ctx, "token", input.HashedToken, rec["id"]); err != nil {
		return nil, err
	}

	return models.SessionFromRecord(rec), nil
}

// FindByToken resolves a hashed token to its session. An expired session is
// deleted on read and treated as absent.
func (r *SessionRepository) FindByToken(ctx context.Context, hashedToken string) (*models.Session, error) {
	id, err := r.index.Get(ctx, "token", hashedToken)
	if err != nil {
		return nil, err
	}
	if id == "" {
		return nil, nil
	}

	rec, err := r.schema.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	session := models.SessionFromRecord(rec)
	if session == nil {
		return nil, nil
	}

	if session.Expired(time.Now()) {
		if err := r.deleteSession(ctx, session); err != nil {
			return nil, err
		}
		return nil, nil
	}

	return session, nil
}

func (r *SessionRepository) DeleteByToken(ctx context.Context, hashedToken string) error {
	session, err := r.FindByToken(ctx, hashedToken)
	if err != nil {
		return err
	}
	if session == nil {
		return nil
	}
	return r.deleteSession(ctx, session)
}

// DeleteAllForStaff removes every session belonging to a staff member.
func (r *SessionRepository) DeleteAllForStaff(ctx context.Context, staffID string) error {
	records, err := r.schema.List(ctx)
	if err != nil {
		return err
	}
	for _, rec := range records {
		if rec["staffId"] != staffID {
			continue
		}
		if err := r.deleteSession(ctx, models.SessionFromRecord(rec)); err != nil {
			return err
		}
	}
	return nil
}

func (r *SessionRepository) deleteSession(ctx context.Context, session *models.Session) error {
	if err := r.index.Remove(ctx, "token", session.Token); err != nil {
		return err
	}
	return r.schema.DeleteByID(ctx, session.ID)
}
