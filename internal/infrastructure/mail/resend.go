package mail

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v2"
	"github.com/rs/zerolog"
)

// ResendSender sends mail through the Resend API.
type ResendSender struct {
	client *resend.Client
	from   string
	log    zerolog.Logger
}

func NewResendSender(apiKey, from string, log zerolog.Logger) *ResendSender {
	return &ResendSender{client: resend.NewClient(apiKey), from: from, log: log}
}

func (s *ResendSender) Send(ctx context.Context, msg Message) (string, error) {
	sent, err := s.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    s.from,
		To:      msg.To,
		Subject: msg.Subject,
		Html:    msg.HTML,
		Text:    msg.Text,
	})
	if err != nil {
		return "", fmt.Errorf("resend send: %w", err)
	}

	s.log.Info().Str("message_id", sent.Id).Strs("to", msg.To).Str("subject", msg.Subject).Msg("mail sent")
	return sent.Id, nil
}

// LogSender writes mail to the log instead of delivering it. The body is
// logged at debug level so a developer can follow links locally.
type LogSender struct {
	log zerolog.Logger
}

func NewLogSender(log zerolog.Logger) *LogSender {
	return &LogSender{log: log}
}

func (s *LogSender) Send(_ context.Context, msg Message) (string, error) {
	s.log.Info().Strs("to", msg.To).Str("subject", msg.Subject).Msg("mail not delivered, no provider configured")
	s.log.Debug().Str("body", msg.Text).Msg("undelivered mail body")
	return "", nil
}
