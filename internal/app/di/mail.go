package di

import (
	"context"
	"log/slog"

	"passvault/internal/app/config"
	"passvault/internal/platform/mail"
)

// mailQueueSize bounds the async mail queue.
const mailQueueSize = 64

// NewMailService builds the reset mailer. Without an SMTP host mail is
// logged. The returned closer drains queued mail on shutdown.
func NewMailService(cfg config.MailConfig) (*mail.Service, func(ctx context.Context) error, error) {
	noop := func(context.Context) error { return nil }

	var transport mail.Transport
	if cfg.Host == "" {
		slog.Warn("SMTP_HOST not set; password reset links will be logged")
		transport = mail.NewLogTransport(nil)
	} else {
		smtp, err := mail.NewSMTPTransport(mail.SMTPConfig{
			Host:     cfg.Host,
			Port:     cfg.Port,
			Username: cfg.Username,
			Password: cfg.Password,
			TLS:      cfg.TLS,
			From:     cfg.From,
		})
		if err != nil {
			return nil, noop, err
		}
		transport = smtp
	}

	if !cfg.Async {
		return mail.NewService(transport), noop, nil
	}
	async := mail.NewAsyncTransport(transport, mailQueueSize)
	return mail.NewService(async), async.Close, nil
}
