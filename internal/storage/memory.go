package storage

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

// memoryEntry is a single key in the in-memory store. A key holds either a
// plain string value or a hash, mirroring the redis types the service uses.
type memoryEntry struct {
	value     string
	hash      map[string]string
	expiresAt *time.Time
}

func (e *memoryEntry) expired(now time.Time) bool {
	return e.expiresAt != nil && now.After(*e.expiresAt)
}

// MemoryStore is an in-memory Store used by the test suite and as a dev
// fallback when no redis is reachable.
type MemoryStore struct {
	mu    sync.RWMutex
	store map[string]*memoryEntry

	cleanupInterval time.Duration
	stopCleanup     chan struct{}
	done            chan struct{}
}

func NewMemoryStore() *MemoryStore {
	ms := &MemoryStore{
		store:           make(map[string]*memoryEntry),
		cleanupInterval: 1 * time.Minute,
		stopCleanup:     make(chan struct{}),
		done:            make(chan struct{}),
	}

	go ms.cleanupExpiredEntries()

	return ms
}

func (ms *MemoryStore) HSet(ctx context.Context, key string, fields map[string]string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context cancelled: %w", err)
	}

	ms.mu.Lock()
	defer ms.mu.Unlock()

	entry, exists := ms.store[key]
	if !exists || entry.expired(time.Now()) {
		entry = &memoryEntry{hash: make(map[string]string)}
		ms.store[key] = entry
	}
	if entry.hash == nil {
		// Matches redis WRONGTYPE: the key holds a string, not a hash.
		return fmt.Errorf("wrong type at %s: key holds a string, not a hash", key)
	}
	for k, v := range fields {
		entry.hash[k] = v
	}
	return nil
}

func (ms *MemoryStore) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context cancelled: %w", err)
	}

	ms.mu.RLock()
	defer ms.mu.RUnlock()

	entry, exists := ms.store[key]
	if !exists || entry.expired(time.Now()) {
		return map[string]string{}, nil
	}
	if entry.hash == nil {
		// Matches redis WRONGTYPE: the key holds a string, not a hash.
		return nil, fmt.Errorf("wrong type at %s: key holds a string, not a hash", key)
	}

	out := make(map[string]string, len(entry.hash))
	for k, v := range entry.hash {
		out[k] = v
	}
	return out, nil
}

// Keys supports the "prefix:*" patterns the schema layer issues.
func (ms *MemoryStore) Keys(ctx context.Context, pattern string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context cancelled: %w", err)
	}

	ms.mu.RLock()
	defer ms.mu.RUnlock()

	prefix := strings.TrimSuffix(pattern, "*")
	now := time.Now()

	var keys []string
	for key, entry := range ms.store {
		if entry.expired(now) {
			continue
		}
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (ms *MemoryStore) Get(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("context cancelled: %w", err)
	}

	ms.mu.RLock()
	defer ms.mu.RUnlock()

	entry, exists := ms.store[key]
	if !exists || entry.expired(time.Now()) {
		return "", nil
	}
	return entry.value, nil
}

func (ms *MemoryStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context cancelled: %w", err)
	}

	ms.mu.Lock()
	defer ms.mu.Unlock()

	entry := &memoryEntry{value: value}
	if ttl > 0 {
		expiresAt := time.Now().Add(ttl)
		entry.expiresAt = &expiresAt
	}
	ms.store[key] = entry
	return nil
}

func (ms *MemoryStore) Del(ctx context.Context, keys ...string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context cancelled: %w", err)
	}

	ms.mu.Lock()
	defer ms.mu.Unlock()

	for _, key := range keys {
		delete(ms.store, key)
	}
	return nil
}

func (ms *MemoryStore) IncrWithExpire(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("context cancelled: %w", err)
	}

	ms.mu.Lock()
	defer ms.mu.Unlock()

	now := time.Now()
	entry, exists := ms.store[key]
	if !exists || entry.expired(now) {
		entry = &memoryEntry{value: "0"}
		ms.store[key] = entry
	}

	count, err := strconv.ParseInt(entry.value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("value at %s is not an integer: %w", key, err)
	}
	count++
	entry.value = strconv.FormatInt(count, 10)

	// Expiry is refreshed on every call, matching the redis pipeline.
	expiresAt := now.Add(ttl)
	entry.expiresAt = &expiresAt

	return count, nil
}

func (ms *MemoryStore) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (ms *MemoryStore) Close() error {
	close(ms.stopCleanup)
	<-ms.done
	return nil
}

func (ms *MemoryStore) cleanupExpiredEntries() {
	defer close(ms.done)

	ticker := time.NewTicker(ms.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			now := time.Now()
			ms.mu.Lock()
			for key, entry := range ms.store {
				if entry.expired(now) {
					delete(ms.store, key)
				}
			}
			ms.mu.Unlock()
		case <-ms.stopCleanup:
			return
		}
	}
}
