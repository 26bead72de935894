package mail

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"

	"github.com/circuitcraft/academy-admin/internal/core/domain"
)

// markdown renders mail bodies. Raw HTML in the source is escaped, so names
// typed into the admin form cannot inject markup.
var markdown = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

const confirmationSubject = "Confirm your academy admin account"

const confirmationBody = `Hi %s,

An admin account was set up for **%s** on the academy admin area. Confirm your address to sign in:

[Confirm my email](%s)

The link expires on %s. If you did not expect this mail you can ignore it.
`

// ConfirmationMailer sends email confirmation links.
type ConfirmationMailer struct {
	sender  Sender
	linkURL *url.URL
}

// NewConfirmationMailer returns a mailer whose links point at confirmURL
// with the token in the "token" query parameter.
func NewConfirmationMailer(sender Sender, confirmURL string) (*ConfirmationMailer, error) {
	u, err := url.Parse(confirmURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("confirmation url %q must be absolute", confirmURL)
	}
	return &ConfirmationMailer{sender: sender, linkURL: u}, nil
}

// SendConfirmation mails token to identity.
func (m *ConfirmationMailer) SendConfirmation(ctx context.Context, identity *domain.Identity, token string, expiresAt time.Time) error {
	msg, err := m.confirmationMessage(identity, token, expiresAt)
	if err != nil {
		return err
	}
	if _, err := m.sender.Send(ctx, msg); err != nil {
		return fmt.Errorf("send confirmation: %w", err)
	}
	return nil
}

func (m *ConfirmationMailer) confirmationMessage(identity *domain.Identity, token string, expiresAt time.Time) (Message, error) {
	name := strings.TrimSpace(identity.FullName)
	if name == "" {
		name = "there"
	}
	text := fmt.Sprintf(confirmationBody,
		name,
		identity.Email,
		m.link(token),
		expiresAt.UTC().Format("2 Jan 2006 15:04 MST"),
	)

	var html bytes.Buffer
	if err := markdown.Convert([]byte(text), &html); err != nil {
		return Message{}, fmt.Errorf("render confirmation: %w", err)
	}

	return Message{
		To:      []string{identity.Email},
		Subject: confirmationSubject,
		HTML:    html.String(),
		Text:    text,
	}, nil
}

func (m *ConfirmationMailer) link(token string) string {
	u := *m.linkURL
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String()
}
