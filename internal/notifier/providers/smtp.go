package providers

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"feedpulse/internal/types"
)

// SMTPSender delivers notifications as plain-text emails.
type SMTPSender struct {
	host     string
	port     int
	username string
	password string
	from     string
	to       string
}

// NewSMTPSender creates a new SMTP sender.
func NewSMTPSender(host string, port int, username, password, from, to string) *SMTPSender {
	return &SMTPSender{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
		to:       to,
	}
}

// Send sends one notification email. Priority and tags are folded into
// the subject line since SMTP has no native equivalent.
func (s *SMTPSender) Send(ctx context.Context, title, body string, priority types.Priority, tags []string) error {
	addr := fmt.Sprintf("%s:%d", s.host, s.port)

	subject := title
	if priority == types.PriorityUrgent || priority == types.PriorityHigh {
		subject = fmt.Sprintf("[%s] %s", strings.ToUpper(string(priority)), title)
	}

	var msg strings.Builder
	msg.WriteString(fmt.Sprintf("From: %s\r\n", s.from))
	msg.WriteString(fmt.Sprintf("To: %s\r\n", s.to))
	msg.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(body)
	if len(tags) > 0 {
		msg.WriteString("\r\n\r\nTags: ")
		msg.WriteString(strings.Join(tags, ", "))
	}
	msg.WriteString("\r\n")

	auth := smtp.PlainAuth("", s.username, s.password, s.host)
	if err := smtp.SendMail(addr, auth, s.from, []string{s.to}, []byte(msg.String())); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}
