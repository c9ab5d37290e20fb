package mailer

import (
	"context"
	"log/slog"
)

type logMailer struct {
	log *slog.Logger
}

// NewLogMailer returns a Mailer that only logs. Used in local development
// when no SendGrid key is configured.
func NewLogMailer(log *slog.Logger) Mailer {
	return &logMailer{log: log}
}

func (m *logMailer) Send(ctx context.Context, msg Message) error {
	m.log.InfoContext(ctx, "mail send skipped (no mail provider configured)",
		slog.String("to", msg.To),
		slog.String("subject", msg.Subject),
	)
	return nil
}
