// Package mail delivers outbound email for the password reset flow.
package mail

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// Message is a plain text email.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Transport delivers a single message.
type Transport interface {
	Send(ctx context.Context, msg Message) error
}

// Service composes application emails and hands them to a Transport.
type Service struct {
	transport Transport
}

// NewService creates a Service backed by transport.
func NewService(transport Transport) *Service {
	return &Service{transport: transport}
}

// SendPasswordReset mails the reset link to the account owner.
func (s *Service) SendPasswordReset(ctx context.Context, to, resetURL string) error {
	body := strings.Join([]string{
		"You requested a password reset.",
		"",
		"Open the link below within the next hour to choose a new password:",
		resetURL,
		"",
		"If you did not request this, you can ignore this email.",
	}, "\n")

	if err := s.transport.Send(ctx, Message{
		To:      to,
		Subject: "Password reset",
		Body:    body,
	}); err != nil {
		return fmt.Errorf("failed to send password reset: %w", err)
	}
	return nil
}

// LogTransport writes messages to the log instead of sending them.
// It is used when no SMTP host is configured.
type LogTransport struct {
	logger *slog.Logger
}

// NewLogTransport returns a LogTransport writing to logger, or slog.Default when nil.
func NewLogTransport(logger *slog.Logger) *LogTransport {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogTransport{logger: logger}
}

// Send implements Transport.
func (t *LogTransport) Send(ctx context.Context, msg Message) error {
	t.logger.InfoContext(ctx, "mail not sent (no SMTP host configured)",
		"to", msg.To,
		"subject", msg.Subject,
		"body", msg.Body,
	)
	return nil
}
