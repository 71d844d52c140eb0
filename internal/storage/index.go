package storage

import (
	"context"
	"fmt"
)

// indexSegment marks index entries in the key space. Schema.List relies on it
// to tell entity hashes apart from index string keys under the same prefix.
const indexSegment = "index"

// Index maintains a reverse mapping (field, value) -> entity id under keys of
// the form "<prefix>:index:<field>:<value>". At most one id per pair; Set is
// an unconditional overwrite, so uniqueness is only as strong as the call
// discipline of the owning repository. Index entries are not kept consistent
// with the underlying entity automatically: callers must re-index whenever an
// indexed field changes and remove entries on delete.
type Index struct {
	store  Store
	prefix string
}

func NewIndex(store Store, prefix string) *Index {
	return &Index{store: store, prefix: prefix}
}

func (i *Index) Key(field, value string) string {
	return fmt.Sprintf("%s:%s:%s:%s", i.prefix, indexSegment, field, value)
}

func (i *Index) Set(ctx context.Context, field, value, id string) error {
	if err := i.store.Set(ctx, i.Key(field, value), id, 0); err != nil {
		return fmt.Errorf("index set %s.%s: %w", i.prefix, field, err)
	}
	return nil
}

// Get returns the indexed id, or "" when no entry exists.
func (i *Index) Get(ctx context.Context, field, value string) (string, error) {
	id, err := i.store.Get(ctx, i.Key(field, value))
	if err != nil {
		return "", fmt.Errorf("index get %s.%s: %w", i.prefix, field, err)
	}
	return id, nil
}

func (i *Index) Remove(ctx context.Context, field, value string) error {
	if err := i.store.Del(ctx, i.Key(field, value)); err != nil {
		return fmt.Errorf("index remove %s.%s: %w", i.prefix, field, err)
	}
	return nil
}
