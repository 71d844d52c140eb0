package events

import (
	"context"
	"time"
)

// Event types published by the service. Side-effect subscribers (audit trail,
// notification emails) hang off these; their failures never reach the
// publisher.
const (
	TypeLogin              = "auth.login"
	TypeLoginFailed        = "auth.login_failed"
	TypeLogout             = "auth.logout"
	TypeTwoFactorRequested = "auth.two_factor_requested"
	TypeNewsletterSent     = "newsletter.sent"
	TypeSubscriberCreated  = "subscriber.created"
)

type Event struct {
	ID        string            `json:"id"`
	Type      string            `json:"type"`
	Timestamp time.Time         `json:"timestamp"`
	Payload   map[string]string `json:"payload"`
}

// Handler consumes one event. Handlers run in background goroutines; errors
// are logged by the bus, not returned to publishers.
type Handler func(ctx context.Context, evt Event)

type Bus interface {
	Publish(ctx context.Context, evt Event) error
	Subscribe(eventType string, handler Handler) error
	Close() error
}
