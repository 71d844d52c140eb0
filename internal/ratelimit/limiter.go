package ratelimit

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/hbapte/portfolio-api/internal/storage"
)

// Config controls a rate-limit bucket.
type Config struct {
	// Window is the length of the counting window.
	Window time.Duration `toml:"window"`

	// Max is the number of requests allowed within the window.
	Max int `toml:"max"`

	// Prefix namespaces the counter keys in the store.
	Prefix string `toml:"prefix"`
}

func (c *Config) ApplyDefaults() {
	if c.Window == 0 {
		c.Window = 1 * time.Minute
	}
	if c.Max == 0 {
		c.Max = 100
	}
	if c.Prefix == "" {
		c.Prefix = "ratelimit"
	}
}

// Result reports the outcome of a rate-limit check.
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	// Reset is advertised as now+window. The expiry is refreshed on every
	// call, so it may not match the key's actual remaining TTL under
	// frequent traffic.
	Reset time.Time
}

// Limiter is a fixed-window counter keyed by a hash of the caller identity.
// The window slides with traffic: each call reapplies the expiry.
type Limiter struct {
	store  storage.Store
	config Config
}

func NewLimiter(store storage.Store, config Config) *Limiter {
	config.ApplyDefaults()
	return &Limiter{store: store, config: config}
}

// Allow counts one request for (bucket, clientIP) and reports whether it is
// within the limit. The raw IP is never stored; only its SHA-256 digest
// appears in the key. A pipeline failure is a hard error, not a pass.
func (l *Limiter) Allow(ctx context.Context, bucket, clientIP string) (Result, error) {
	sum := sha256.Sum256([]byte(clientIP))
	key := fmt.Sprintf("%s:%s:%s", l.config.Prefix, bucket, hex.EncodeToString(sum[:]))

	count, err := l.store.IncrWithExpire(ctx, key, l.config.Window)
	if err != nil {
		return Result{}, fmt.Errorf("rate limit increment failed: %w", err)
	}

	remaining := l.config.Max - int(count)
	if remaining < 0 {
		remaining = 0
	}

	return Result{
		Allowed:   int(count) <= l.config.Max,
		Limit:     l.config.Max,
		Remaining: remaining,
		Reset:     time.Now().Add(l.config.Window),
	}, nil
}
