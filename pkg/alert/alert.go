package alert

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
	"time"

	"github.com/mousdieng/neo4flix/pkg/config"
)

// Alerter notifies an operator about a failed or degraded run.
type Alerter interface {
	Alert(ctx context.Context, subject, message string) error
}

// New returns an EmailAlerter when alerting is enabled and a NoOpAlerter
// otherwise.
func New(cfg config.AlertConfig) Alerter {
	if !cfg.Enabled {
		return NoOpAlerter{}
	}
	return NewEmailAlerter(cfg)
}

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// EmailAlerter sends alerts over SMTP.
type EmailAlerter struct {
	cfg  config.AlertConfig
	send sendFunc
	now  func() time.Time
}

// NewEmailAlerter creates a new email alerter
func NewEmailAlerter(cfg config.AlertConfig) *EmailAlerter {
	return &EmailAlerter{cfg: cfg, send: smtp.SendMail, now: time.Now}
}

// Alert sends an email with the given subject and message. The context is
// only checked before sending; net/smtp has no cancellation.
func (a *EmailAlerter) Alert(ctx context.Context, subject, message string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(a.cfg.To) == 0 {
		return fmt.Errorf("alert has no recipients")
	}

	var auth smtp.Auth
	if a.cfg.Username != "" {
		auth = smtp.PlainAuth("", a.cfg.Username, a.cfg.Password, a.cfg.SMTPHost)
	}
	addr := fmt.Sprintf("%s:%d", a.cfg.SMTPHost, a.cfg.SMTPPort)

	if err := a.send(addr, auth, a.cfg.From, a.cfg.To, a.message(subject, message)); err != nil {
		return fmt.Errorf("failed to send alert email: %w", err)
	}
	return nil
}

func (a *EmailAlerter) message(subject, body string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", a.cfg.From)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(a.cfg.To, ","))
	fmt.Fprintf(&b, "Subject: [neo4flix] %s\r\n", oneLine(subject))
	fmt.Fprintf(&b, "Date: %s\r\n", a.now().UTC().Format(time.RFC1123Z))
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n\r\n")
	b.WriteString(strings.ReplaceAll(body, "\n", "\r\n"))
	b.WriteString("\r\n")
	return []byte(b.String())
}

// oneLine keeps a header value from injecting further headers.
func oneLine(s string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(s)
}

// NoOpAlerter is a dummy alerter for when alerting is disabled
type NoOpAlerter struct{}

func (NoOpAlerter) Alert(context.Context, string, string) error {
	return nil
}
