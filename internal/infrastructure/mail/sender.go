// Package mail delivers the account mails the admin API sends. Bodies are
// written in markdown and rendered to HTML with goldmark; delivery goes
// through Resend, or only to the log when no API key is configured.
package mail

import "context"

// Message is one outgoing mail. Text is the plain-text alternative.
type Message struct {
	To      []string
	Subject string
	HTML    string
	Text    string
}

// Sender delivers a message and returns the provider's message id.
type Sender interface {
	Send(ctx context.Context, msg Message) (string, error)
}
