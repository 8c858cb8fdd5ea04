package mailer

import (
	"context"

	"github.com/sirupsen/logrus"

	"classtrack_go/config"
)

// Mailer is the one email capability the engine needs. Transport concerns
// (credentials, retries beyond one attempt per cycle) stay behind it.
type Mailer interface {
	Send(ctx context.Context, toName, toAddr, subjectLine, bodyHTML string) error
}

// NewFromConfig returns the SendGrid mailer when an API key is configured
// and the console mailer otherwise, so development runs without credentials.
func NewFromConfig() Mailer {
	if config.AppConfig.SendgridAPIKey != "" {
		return NewSendgridMailer(
			config.AppConfig.SendgridAPIKey,
			config.AppConfig.EmailFromName,
			config.AppConfig.EmailFromAddr,
		)
	}
	return NewConsoleMailer()
}

// ConsoleMailer writes messages to the log instead of sending them.
type ConsoleMailer struct{}

// NewConsoleMailer creates a ConsoleMailer.
func NewConsoleMailer() *ConsoleMailer {
	return &ConsoleMailer{}
}

// Send logs the message and reports success.
func (m *ConsoleMailer) Send(ctx context.Context, toName, toAddr, subjectLine, bodyHTML string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	logrus.WithFields(logrus.Fields{
		"to":      toAddr,
		"name":    toName,
		"subject": subjectLine,
	}).Info("console mailer: message not sent")
	return nil
}
