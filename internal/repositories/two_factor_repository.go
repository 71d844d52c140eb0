package repositories

import (
	"context"
	"strconv"
	"time"

	"github.com/hbapte/portfolio-api/internal/security"
	"github.com/hbapte/portfolio-api/internal/storage"
	"github.com/hbapte/portfolio-api/models"
)

const twoFactorCodeLength = 6

// TwoFactorTokenRepository stores one-time login codes. Expiry is a stored
// unix-seconds field checked on consume, not a key-level TTL: an expired code
// lingers until the next consume attempt removes it.
type TwoFactorTokenRepository struct {
	schema *storage.Schema
}

func NewTwoFactorTokenRepository(store storage.Store) *TwoFactorTokenRepository {
	return &TwoFactorTokenRepository{
		schema: storage.NewSchema(store, "twofactor"),
	}
}

// Create generates a fresh code for the email, replacing any outstanding one.
func (r *TwoFactorTokenRepository) Create(ctx context.Context, email string, ttl time.Duration) (*models.TwoFactorToken, error) {
	if _, err := r.schema.DeleteOne(ctx, map[string]string{"email": email}); err != nil {
		return nil, err
	}

	code, err := security.GenerateNumericCode(twoFactorCodeLength)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	rec, err := r.schema.Create(ctx, map[string]any{
		"email":     email,
		"token":     code,
		"expires":   strconv.FormatInt(now.Add(ttl).Unix(), 10),
		"createdAt": now,
	})
	if err != nil {
		return nil, err
	}

	return models.TwoFactorTokenFromRecord(rec), nil
}

// Consume validates a code for an email and deletes it on success. An expired
// code is deleted and reported as expired.
func (r *TwoFactorTokenRepository) Consume(ctx context.Context, email, code string) error {
	rec, err := r.schema.FindOne(ctx, map[string]string{"email": email, "token": code})
	if err != nil {
		return err
	}
	if rec == nil {
		return ErrInvalidTwoFactorCode
	}

	token := models.TwoFactorTokenFromRecord(rec)
	if token.Expired(time.Now()) {
		if err := r.schema.DeleteByID(ctx, token.ID); err != nil {
			return err
		}
		return ErrTwoFactorCodeExpired
	}

	return r.schema.DeleteByID(ctx, token.ID)
}
