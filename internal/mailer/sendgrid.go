package mailer

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	apperrors "github.com/ynl8015/LinguaLetter-sub000/pkg/errors"
)

type sendgridMailer struct {
	client    *sendgrid.Client
	fromName  string
	fromEmail string
}

// NewSendgridMailer creates a Mailer backed by the SendGrid API.
func NewSendgridMailer(apiKey, fromName, fromEmail string) Mailer {
	return &sendgridMailer{
		client:    sendgrid.NewSendClient(apiKey),
		fromName:  fromName,
		fromEmail: fromEmail,
	}
}

func (m *sendgridMailer) Send(ctx context.Context, msg Message) error {
	from := mail.NewEmail(m.fromName, m.fromEmail)
	to := mail.NewEmail(msg.ToName, msg.To)
	message := mail.NewSingleEmail(from, msg.Subject, to, msg.Text, msg.HTML)

	resp, err := m.client.SendWithContext(ctx, message)
	if err != nil {
		return apperrors.Upstream("sendgrid", err)
	}
	if resp.StatusCode >= 400 {
		return apperrors.Upstream("sendgrid", fmt.Errorf("send returned %d: %s", resp.StatusCode, resp.Body))
	}
	return nil
}
