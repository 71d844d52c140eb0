package storage

import (
	"context"
	"testing"
	"time"
)

func TestSchemaCreateAndFindByID(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()

	schema := NewSchema(store, "widget")
	ctx := context.Background()

	rec, err := schema.Create(ctx, map[string]any{
		"name":    "first",
		"count":   3,
		"enabled": true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec["id"] == "" {
		t.Fatal("create should assign an id")
	}
	if rec["count"] != "3" || rec["enabled"] != "true" {
		t.Errorf("values should be coerced to strings, got count=%q enabled=%q", rec["count"], rec["enabled"])
	}

	found, err := schema.FindByID(ctx, rec["id"])
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found == nil {
		t.Fatal("created record should be findable by id")
	}
	if found["name"] != "first" {
		t.Errorf("expected name=first, got %q", found["name"])
	}
}

func TestSchemaCreateWithExplicitID(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()

	schema := NewSchema(store, "widget")
	ctx := context.Background()

	rec, err := schema.Create(ctx, map[string]any{"id": "fixed-id", "name": "x"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec["id"] != "fixed-id" {
		t.Errorf("supplied id should be kept, got %q", rec["id"])
	}
}

func TestSchemaFindByIDAbsent(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()

	schema := NewSchema(store, "widget")

	rec, err := schema.FindByID(context.Background(), "nope")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec != nil {
		t.Errorf("absent record should be nil, got %v", rec)
	}
}

func TestSchemaFindOne(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()

	schema := NewSchema(store, "widget")
	ctx := context.Background()

	if _, err := schema.Create(ctx, map[string]any{"name": "a", "color": "red"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := schema.Create(ctx, map[string]any{"name": "b", "color": "blue"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rec, err := schema.FindOne(ctx, map[string]string{"color": "blue"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec == nil || rec["name"] != "b" {
		t.Errorf("expected the blue record, got %v", rec)
	}

	missing, err := schema.FindOne(ctx, map[string]string{"color": "green"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if missing != nil {
		t.Errorf("no record should match, got %v", missing)
	}
}

func TestSchemaUpdateByID(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()

	schema := NewSchema(store, "widget")
	ctx := context.Background()

	rec, err := schema.Create(ctx, map[string]any{"name": "before", "color": "red"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	updated, err := schema.UpdateByID(ctx, rec["id"], map[string]any{"name": "after"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated["name"] != "after" {
		t.Errorf("expected name=after, got %q", updated["name"])
	}
	if updated["color"] != "red" {
		t.Errorf("untouched fields should survive, got color=%q", updated["color"])
	}

	// updating an absent record is a no-op returning nil
	missing, err := schema.UpdateByID(ctx, "nope", map[string]any{"name": "x"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if missing != nil {
		t.Errorf("update of absent record should return nil, got %v", missing)
	}
}

func TestSchemaDelete(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()

	schema := NewSchema(store, "widget")
	ctx := context.Background()

	rec, err := schema.Create(ctx, map[string]any{"name": "gone"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := schema.DeleteByID(ctx, rec["id"]); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	found, err := schema.FindByID(ctx, rec["id"])
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found != nil {
		t.Errorf("deleted record should be absent, got %v", found)
	}
}

func TestSchemaDeleteOne(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()

	schema := NewSchema(store, "widget")
	ctx := context.Background()

	if _, err := schema.Create(ctx, map[string]any{"name": "keep"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := schema.Create(ctx, map[string]any{"name": "drop"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	found, err := schema.DeleteOne(ctx, map[string]string{"name": "drop"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !found {
		t.Error("deleteOne should report the record was found")
	}

	records, err := schema.List(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 1 || records[0]["name"] != "keep" {
		t.Errorf("only the kept record should remain, got %v", records)
	}

	found, err = schema.DeleteOne(ctx, map[string]string{"name": "drop"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found {
		t.Error("second deleteOne should report not found")
	}
}

func TestSchemaListIsNamespaced(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()

	widgets := NewSchema(store, "widget")
	gadgets := NewSchema(store, "gadget")
	ctx := context.Background()

	if _, err := widgets.Create(ctx, map[string]any{"name": "w"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := gadgets.Create(ctx, map[string]any{"name": "g"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	records, err := widgets.List(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 1 || records[0]["name"] != "w" {
		t.Errorf("list should only see its own namespace, got %v", records)
	}
}

func TestSchemaListSkipsIndexEntries(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()

	schema := NewSchema(store, "widget")
	index := NewIndex(store, "widget")
	ctx := context.Background()

	rec, err := schema.Create(ctx, map[string]any{"name": "w", "email": "w@example.com"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := index.Set(ctx, "email", "w@example.com", rec["id"]); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Index entries share the prefix but are string keys, not hashes. List
	// must never HGETALL them; on redis that is a WRONGTYPE error.
	records, err := schema.List(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 1 || records[0]["name"] != "w" {
		t.Errorf("list should return only the entity record, got %v", records)
	}

	found, err := schema.FindOne(ctx, map[string]string{"email": "w@example.com"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found == nil || found["id"] != rec["id"] {
		t.Errorf("findOne should still see the entity, got %v", found)
	}
}

func TestCoerceValue(t *testing.T) {
	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{"plain", "plain"},
		{true, "true"},
		{false, "false"},
		{42, "42"},
		{int64(7), "7"},
		{1.5, "1.5"},
		{ts, "2025-06-01T12:00:00Z"},
		{[]string{"a", "b"}, `["a","b"]`},
		{map[string]int{"n": 1}, `{"n":1}`},
	}

	for _, tc := range cases {
		if got := coerceValue(tc.in); got != tc.want {
			t.Errorf("coerceValue(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
