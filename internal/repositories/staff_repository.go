package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/hbapte/portfolio-api/internal/storage"
	"github.com/hbapte/portfolio-api/models"
)

// PasswordHasher hashes and verifies staff passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, encoded string) bool
}

// StaffRepository stores admin staff accounts, with a unique secondary index
// on email.
type StaffRepository struct {
	schema *storage.Schema
	index  *storage.Index
	hasher PasswordHasher
}

func NewStaffRepository(store storage.Store, hasher PasswordHasher) *StaffRepository {
	return &StaffRepository{
		schema: storage.NewSchema(store, "staff"),
		index:  storage.NewIndex(store, "staff"),
		hasher: hasher,
	}
}

type CreateStaffInput struct {
	Name               string
	Email              string
	Password           string
	IsTwoFactorEnabled bool
}

// Create stores a new staff member after checking the email index. The
// pre-check and the index write are separate store calls: two concurrent
// creates with the same email can both pass the check (check then set, no
// transaction).
func (r *StaffRepository) Create(ctx context.Context, input CreateStaffInput) (*models.Staff, error) {
	existing, err := r.index.Get(ctx, "email", input.Email)
	if err != nil {
		return nil, err
	}
	if existing != "" {
		return nil, ErrEmailExists
	}

	hashed, err := r.hasher.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	rec, err := r.schema.Create(ctx, map[string]any{
		"name":                input.Name,
		"email":               input.Email,
		"password":            hashed,
		"isTwoFactorEnabled":  input.IsTwoFactorEnabled,
		"passwordLastChanged": now,
		"createdAt":           now,
		"updatedAt":           now,
	})
	if err != nil {
		return nil, err
	}

	if err := r.index.Set(ctx, "email", input.Email, rec["id"]); err != nil {
		return nil, err
	}

	return models.StaffFromRecord(rec), nil
}

// EnsureExists creates the staff member unless the email is already taken.
// Reports whether a record was created. Used to seed the initial admin
// account on an empty store.
func (r *StaffRepository) EnsureExists(ctx context.Context, input CreateStaffInput) (bool, error) {
	_, err := r.Create(ctx, input)
	if errors.Is(err, ErrEmailExists) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *StaffRepository) FindByID(ctx context.Context, id string) (*models.Staff, error) {
	rec, err := r.schema.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return models.StaffFromRecord(rec), nil
}

// FindByEmail resolves via the email index. A stale index entry pointing at a
// deleted record yields nil, same as an absent one.
func (r *StaffRepository) FindByEmail(ctx context.Context, email string) (*models.Staff, error) {
	id, err := r.index.Get(ctx, "email", email)
	if err != nil {
		return nil, err
	}
	if id == "" {
		return nil, nil
	}
	return r.FindByID(ctx, id)
}

// UpdateByID merges changes into an existing staff record. A changed password
// is re-hashed and stamps passwordLastChanged; a changed email re-indexes
// (old entry removed, new one written).
func (r *StaffRepository) UpdateByID(ctx context.Context, id string, changes map[string]any) (*models.Staff, error) {
	existing, err := r.schema.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, nil
	}

	now := time.Now().UTC()

	if pw, ok := changes["password"].(string); ok && pw != "" {
		hashed, err := r.hasher.Hash(pw)
		if err != nil {
			return nil, err
		}
		changes["password"] = hashed
		changes["passwordLastChanged"] = now
	}

	var oldEmail string
	if newEmail, ok := changes["email"].(string); ok && newEmail != "" && newEmail != existing["email"] {
		oldEmail = existing["email"]
	}

	changes["updatedAt"] = now

	rec, err := r.schema.UpdateByID(ctx, id, changes)
	if err != nil {
		return nil, err
	}

	if oldEmail != "" {
		if err := r.index.Remove(ctx, "email", oldEmail); err != nil {
			return nil, err
		}
		if err := r.index.Set(ctx, "email", rec["email"], id); err != nil {
			return nil, err
		}
	}

	return models.StaffFromRecord(rec), nil
}

// DeleteByID removes the record and its email index entry. Deleting through
// the generic schema directly would leave the index entry behind.
func (r *StaffRepository) DeleteByID(ctx context.Context, id string) error {
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

func (r *StaffRepository) List(ctx context.Context) ([]*models.Staff, error) {
	records, err := r.schema.List(ctx)
	if err != nil {
		return nil, err
	}
	staff := make([]*models.Staff, 0, len(records))
	for _, rec := range records {
		staff = append(staff, models.StaffFromRecord(rec))
	}
	return staff, nil
}
