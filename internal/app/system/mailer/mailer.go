// internal/app/system/mailer/mailer.go

// Package mailer is the boundary to email delivery. The application depends
// only on the Mailer interface; transport details (SMTP, a sending API) are
// external collaborators.
package mailer

import "context"

// Message is one outbound email.
type Message struct {
	To      string
	Subject string
	HTML    string
}

// Mailer sends email.
type Mailer interface {
	Send(ctx context.Context, m Message) error
}

// Discard is a Mailer that drops messages, used when no mail transport is
// configured (local development).
type Discard struct{}

func (Discard) Send(ctx context.Context, m Message) error { return nil }
