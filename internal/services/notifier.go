package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hbapte/portfolio-api/config"
	"github.com/hbapte/portfolio-api/internal/events"
	"github.com/hbapte/portfolio-api/internal/mailer"
	"github.com/hbapte/portfolio-api/internal/repositories"
	"github.com/hbapte/portfolio-api/models"
)

// Notifier consumes service events and produces the best-effort side effects:
// audit trail entries, dashboard notifications, and notification emails.
// Every failure here is logged and swallowed; nothing propagates back to the
// operation that published the event.
type Notifier struct {
	auditLogs     *repositories.AuditLogRepository
	notifications *repositories.NotificationRepository
	mailer        mailer.Mailer
	email         config.EmailConfig
	logger        *slog.Logger
}

func NewNotifier(
	auditLogs *repositories.AuditLogRepository,
	notifications *repositories.NotificationRepository,
	m mailer.Mailer,
	email config.EmailConfig,
	logger *slog.Logger,
) *Notifier {
	return &Notifier{
		auditLogs:     auditLogs,
		notifications: notifications,
		mailer:        m,
		email:         email,
		logger:        logger,
	}
}

// Register wires the notifier onto the bus.
func (n *Notifier) Register(bus events.Bus) error {
	subscriptions := map[string]events.Handler{
		events.TypeLogin:              n.handleLogin,
		events.TypeLoginFailed:        n.handleLoginFailed,
		events.TypeLogout:             n.handleLogout,
		events.TypeTwoFactorRequested: n.handleTwoFactorRequested,
		events.TypeNewsletterSent:     n.handleNewsletterSent,
		events.TypeSubscriberCreated:  n.handleSubscriberCreated,
	}
	for eventType, handler := range subscriptions {
		if err := bus.Subscribe(eventType, handler); err != nil {
			return err
		}
	}
	return nil
}

func (n *Notifier) handleLogin(ctx context.Context, evt events.Event) {
	email := evt.Payload["email"]

	n.record(ctx, models.ActionLogin, email, "Signed in to the admin dashboard", evt.Payload["ip"])

	if _, err := n.notifications.Create(ctx,
		"New login",
		fmt.Sprintf("%s signed in to the admin dashboard", email),
		"auth",
	); err != nil {
		n.logger.Error("failed to create login notification", "error", err)
	}

	// Allowlisted developer emails do not notify the admin about their own
	// logins.
	if n.email.IsDevEmail(email) {
		return
	}
	n.send(ctx, n.email.AdminEmail,
		"New login to portfolio admin",
		fmt.Sprintf("A new login by %s was recorded from %s.", email, evt.Payload["ip"]),
	)
}

func (n *Notifier) handleLoginFailed(ctx context.Context, evt events.Event) {
	details := "Failed login attempt"
	if reason := evt.Payload["reason"]; reason != "" {
		details = fmt.Sprintf("Failed login attempt: %s", reason)
	}
	n.record(ctx, models.ActionLoginAttempt, evt.Payload["email"], details, evt.Payload["ip"])
}

func (n *Notifier) handleLogout(ctx context.Context, evt events.Event) {
	n.record(ctx, models.ActionLogout, evt.Payload["email"], "Signed out", "")
}

func (n *Notifier) handleTwoFactorRequested(ctx context.Context, evt events.Event) {
	n.send(ctx, evt.Payload["email"],
		"Your login code",
		fmt.Sprintf("Your one-time login code is %s. It expires shortly.", evt.Payload["code"]),
	)
}

func (n *Notifier) handleNewsletterSent(ctx context.Context, evt events.Event) {
	title := evt.Payload["title"]

	n.record(ctx, "NEWSLETTER_SENT", evt.Payload["actor"], fmt.Sprintf("Sent newsletter %q", title), "")

	if _, err := n.notifications.Create(ctx,
		"Newsletter sent",
		fmt.Sprintf("Newsletter %q was sent", title),
		"newsletter",
	); err != nil {
		n.logger.Error("failed to create newsletter notification", "error", err)
	}
}

func (n *Notifier) handleSubscriberCreated(ctx context.Context, evt events.Event) {
	if _, err := n.notifications.Create(ctx,
		"New subscriber",
		fmt.Sprintf("%s subscribed to the newsletter", evt.Payload["email"]),
		"subscriber",
	); err != nil {
		n.logger.Error("failed to create subscriber notification", "error", err)
	}
}

func (n *Notifier) record(ctx context.Context, action, actor, details, ip string) {
	if _, err := n.auditLogs.Record(ctx, action, actor, details, ip); err != nil {
		n.logger.Error("failed to write audit log", "action", action, "error", err)
	}
}

func (n *Notifier) send(ctx context.Context, to, subject, text string) {
	if n.mailer == nil || to == "" {
		return
	}
	if err := n.mailer.SendEmail(ctx, to, subject, text, ""); err != nil {
		n.logger.Error("failed to send notification email", "to", to, "error", err)
	}
}
