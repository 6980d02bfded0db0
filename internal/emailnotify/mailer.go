package emailnotify

import (
	"context"
	"fmt"
	"mime"
	"net/smtp"
	"strings"

	"avviso/internal/platform/config"
)

// Email is one fully rendered outbound message.
type Email struct {
	From    string
	To      string
	Subject string
	HTML    string
	Text    string
}

// Mailer delivers rendered emails. Errors are transient: the caller retries
// the whole notification.
type Mailer interface {
	Send(ctx context.Context, email Email) error
}

// SMTPMailer sends through a plain SMTP relay. Authentication is optional;
// local dev relays usually run without it.
type SMTPMailer struct {
	addr string
	auth smtp.Auth
}

func NewSMTPMailer(cfg config.EmailConfig) *SMTPMailer {
	var auth smtp.Auth
	if cfg.Username != "" {
		host := cfg.SMTPAddr
		if i := strings.IndexByte(host, ':'); i >= 0 {
			host = host[:i]
		}
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, host)
	}
	return &SMTPMailer{addr: cfg.SMTPAddr, auth: auth}
}

func (m *SMTPMailer) Send(_ context.Context, email Email) error {
	msg := buildMessage(email)
	if err := smtp.SendMail(m.addr, m.auth, email.From, []string{email.To}, msg); err != nil {
		return fmt.Errorf("send mail to %s: %w", email.To, err)
	}
	return nil
}

const altBoundary = "=-avviso-alt-boundary"

// buildMessage assembles a multipart/alternative MIME message with the text
// part first so clients that cannot render HTML fall back to it.
func buildMessage(email Email) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", email.From)
	fmt.Fprintf(&b, "To: %s\r\n", email.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", email.Subject))
	b.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&b, "Content-Type: multipart/alternative; boundary=%q\r\n", altBoundary)
	b.WriteString("\r\n")

	fmt.Fprintf(&b, "--%s\r\n", altBoundary)
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n\r\n")
	b.WriteString(email.Text)
	b.WriteString("\r\n")

	fmt.Fprintf(&b, "--%s\r\n", altBoundary)
	b.WriteString("Content-Type: text/html; charset=utf-8\r\n\r\n")
	b.WriteString(email.HTML)
	b.WriteString("\r\n")

	fmt.Fprintf(&b, "--%s--\r\n", altBoundary)
	return []byte(b.String())
}
