package mailer

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/resend/resend-go/v3"

	"github.com/hbapte/portfolio-api/env"
)

type ResendProvider struct {
	logger      *slog.Logger
	client      *resend.Client
	fromAddress string
}

func NewResendProvider(logger *slog.Logger, fromAddress string) (*ResendProvider, error) {
	apiKey := strings.TrimSpace(os.Getenv(env.EnvResendApiKey))
	if apiKey == "" {
		return nil, fmt.Errorf("%s environment variable is not set", env.EnvResendApiKey)
	}

	return &ResendProvider{
		logger:      logger,
		client:      resend.NewClient(apiKey),
		fromAddress: fromAddress,
	}, nil
}

func (r *ResendProvider) SendEmail(ctx context.Context, to, subject, text, html string) error {
	if text == "" && html == "" {
		return fmt.Errorf("email must have at least a text or html body")
	}

	params := &resend.SendEmailRequest{
		To:      []string{to},
		From:    r.fromAddress,
		Subject: subject,
		Text:    text,
		Html:    html,
	}

	sent, err := r.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		r.logger.Error("failed to send email via Resend",
			"to", to,
			"subject", subject,
			"error", err,
		)
		return fmt.Errorf("resend send failed: %w", err)
	}

	if sent == nil || sent.Id == "" {
		return fmt.Errorf("resend send failed: empty response")
	}

	return nil
}
