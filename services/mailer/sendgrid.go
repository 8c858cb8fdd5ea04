package mailer

import (
	"context"
	"fmt"
	"net/http"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

// SendgridMailer sends through the SendGrid v3 API.
type SendgridMailer struct {
	client *sendgrid.Client
	from   *sgmail.Email
}

// NewSendgridMailer creates a mailer with the given API key and sender.
func NewSendgridMailer(apiKey, fromName, fromAddr string) *SendgridMailer {
	return &SendgridMailer{
		client: sendgrid.NewSendClient(apiKey),
		from:   sgmail.NewEmail(fromName, fromAddr),
	}
}

// Send delivers one message; the context bounds the API call.
func (m *SendgridMailer) Send(ctx context.Context, toName, toAddr, subjectLine, bodyHTML string) error {
	to := sgmail.NewEmail(toName, toAddr)
	message := sgmail.NewSingleEmail(m.from, subjectLine, to, "", bodyHTML)

	resp, err := m.client.SendWithContext(ctx, message)
	if err != nil {
		return err
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("sendgrid responded %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}
