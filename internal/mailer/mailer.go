package mailer

import (
	"context"
	"fmt"
	"log/slog"
)

// Mailer sends a single transactional email.
type Mailer interface {
	SendEmail(ctx context.Context, to string, subject string, text string, html string) error
}

// Service composes a primary provider with an optional fallback. The
// fallback is only attempted after the primary fails.
type Service struct {
	logger           *slog.Logger
	primaryProvider  Mailer
	fallbackProvider Mailer
}

func NewService(logger *slog.Logger, primary Mailer, fallback Mailer) *Service {
	return &Service{
		logger:           logger,
		primaryProvider:  primary,
		fallbackProvider: fallback,
	}
}

func (s *Service) SendEmail(ctx context.Context, to, subject, text, html string) error {
	if s.primaryProvider == nil {
		return fmt.Errorf("no email provider configured")
	}

	err := s.primaryProvider.SendEmail(ctx, to, subject, text, html)
	if err == nil {
		return nil
	}

	s.logger.Warn("primary email provider failed",
		"to", to,
		"subject", subject,
		"error", err,
	)

	if s.fallbackProvider != nil {
		fallbackErr := s.fallbackProvider.SendEmail(ctx, to, subject, text, html)
		if fallbackErr == nil {
			s.logger.Info("fallback email provider succeeded", "to", to)
			return nil
		}

		s.logger.Error("fallback email provider also failed",
			"to", to,
			"subject", subject,
			"error", fallbackErr,
		)
	}

	return err
}
