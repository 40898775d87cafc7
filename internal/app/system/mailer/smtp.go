// internal/app/system/mailer/smtp.go
package mailer

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
)

// SMTP sends mail through a plain SMTP relay (Mailpit locally, SES or
// similar in production).
type SMTP struct {
	Addr     string // host:port
	Username string
	Password string
	From     string // e.g. "LeadScout <noreply@leadscout.app>"
}

// NewSMTP builds an SMTP mailer. Username may be empty for relays that
// accept unauthenticated mail (local Mailpit).
func NewSMTP(host string, port int, username, password, from, fromName string) *SMTP {
	addr := fmt.Sprintf("%s:%d", host, port)
	if fromName != "" {
		from = fmt.Sprintf("%s <%s>", fromName, from)
	}
	return &SMTP{Addr: addr, Username: username, Password: password, From: from}
}

func (s *SMTP) Send(ctx context.Context, m Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", s.From)
	fmt.Fprintf(&b, "To: %s\r\n", m.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", m.Subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=utf-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(m.HTML)

	var auth smtp.Auth
	if s.Username != "" {
		host := s.Addr
		if i := strings.LastIndex(host, ":"); i >= 0 {
			host = host[:i]
		}
		auth = smtp.PlainAuth("", s.Username, s.Password, host)
	}

	from := s.From
	if i := strings.Index(from, "<"); i >= 0 {
		from = strings.Trim(from[i:], "<>")
	}
	return smtp.SendMail(s.Addr, auth, from, []string{m.To}, []byte(b.String()))
}
