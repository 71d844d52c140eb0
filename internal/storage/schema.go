package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Record is an entity as stored: a flat map of string fields.
type Record = map[string]string

// Schema is a namespace-scoped generic repository over hash-shaped records.
// It performs no field validation; correctness of stored data is entirely the
// caller's responsibility.
type Schema struct {
	store  Store
	prefix string
}

func NewSchema(store Store, prefix string) *Schema {
	return &Schema{store: store, prefix: prefix}
}

func (s *Schema) Prefix() string {
	return s.prefix
}

func (s *Schema) Key(id string) string {
	return s.prefix + ":" + id
}

// Create stores fields as a hash under a namespaced key, assigning a fresh
// uuid id unless one is supplied. All values are coerced to strings.
func (s *Schema) Create(ctx context.Context, fields map[string]any) (Record, error) {
	rec := coerceFields(fields)
	if rec["id"] == "" {
		rec["id"] = uuid.NewString()
	}

	if err := s.store.HSet(ctx, s.Key(rec["id"]), rec); err != nil {
		return nil, fmt.Errorf("schema create %s: %w", s.prefix, err)
	}
	return rec, nil
}

// FindByID returns the record, or nil if no fields exist under the key.
func (s *Schema) FindByID(ctx context.Context, id string) (Record, error) {
	rec, err := s.store.HGetAll(ctx, s.Key(id))
	if err != nil {
		return nil, fmt.Errorf("schema find %s: %w", s.prefix, err)
	}
	if len(rec) == 0 {
		return nil, nil
	}
	return rec, nil
}

// FindOne loads the whole collection and returns the first record matching
// every filter field exactly. A full scan; indexed lookups live in the domain
// repositories.
func (s *Schema) FindOne(ctx context.Context, filter map[string]string) (Record, error) {
	records, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, rec := range records {
		if recordMatches(rec, filter) {
			return rec, nil
		}
	}
	return nil, nil
}

// UpdateByID merges the coerced fields into an existing record.
// Returns nil without writing when the record does not exist.
func (s *Schema) UpdateByID(ctx context.Context, id string, fields map[string]any) (Record, error) {
	existing, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, nil
	}

	changes := coerceFields(fields)
	if err := s.store.HSet(ctx, s.Key(id), changes); err != nil {
		return nil, fmt.Errorf("schema update %s: %w", s.prefix, err)
	}

	for k, v := range changes {
		existing[k] = v
	}
	return existing, nil
}

func (s *Schema) DeleteByID(ctx context.Context, id string) error {
	if err := s.store.Del(ctx, s.Key(id)); err != nil {
		return fmt.Errorf("schema delete %s: %w", s.prefix, err)
	}
	return nil
}

// DeleteOne resolves the record via FindOne and deletes it.
// Reports whether a record was found.
func (s *Schema) DeleteOne(ctx context.Context, filter map[string]string) (bool, error) {
	rec, err := s.FindOne(ctx, filter)
	if err != nil {
		return false, err
	}
	if rec == nil {
		return false, nil
	}
	return true, s.DeleteByID(ctx, rec["id"])
}

// List returns every record in the namespace. No ordering guarantee.
// Cost is a key-space scan plus one fetch per key.
func (s *Schema) List(ctx context.Context) ([]Record, error) {
	keys, err := s.store.Keys(ctx, s.prefix+":*")
	if err != nil {
		return nil, fmt.Errorf("schema list %s: %w", s.prefix, err)
	}

	records := make([]Record, 0, len(keys))
	for _, key := range keys {
		// The pattern also matches secondary-index entries under the same
		// prefix. Those are plain string keys, not hashes; fetching one with
		// HGETALL is a WRONGTYPE error on redis.
		if strings.Contains(key, ":"+indexSegment+":") {
			continue
		}
		rec, err := s.store.HGetAll(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("schema list %s: %w", s.prefix, err)
		}
		if len(rec) > 0 {
			records = append(records, rec)
		}
	}
	return records, nil
}

func recordMatches(rec Record, filter map[string]string) bool {
	for field, want := range filter {
		if rec[field] != want {
			return false
		}
	}
	return true
}

// coerceFields flattens every value to its storage string form: scalars via
// strconv/fmt, times as RFC3339, everything structured as JSON.
func coerceFields(fields map[string]any) Record {
	rec := make(Record, len(fields))
	for k, v := range fields {
		rec[k] = coerceValue(v)
	}
	return rec
}

func coerceValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case time.Time:
		return t.UTC().Format(time.RFC3339Nano)
	case fmt.Stringer:
		return t.String()
	default:
		data, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(data)
	}
}
