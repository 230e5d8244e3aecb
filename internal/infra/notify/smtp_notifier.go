package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"smm-storefront/internal/config"
	"smm-storefront/internal/domain/ports/adapter"
)

var _ adapter.Notifier = (*SMTPNotifier)(nil)

// SMTPNotifier sends customer mail over plain SMTP with AUTH.
type SMTPNotifier struct {
	addr string
	auth smtp.Auth
	from string
}

func NewSMTPNotifier(cfg config.SMTPConfig) *SMTPNotifier {
	var auth smtp.Auth
	if cfg.Username != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}
	return &SMTPNotifier{
		addr: fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		auth: auth,
		from: cfg.From,
	}
}

func (n *SMTPNotifier) Send(ctx context.Context, to, subject, htmlBody string) error {
	if to == "" {
		return fmt.Errorf("empty recipient")
	}
	msg := strings.Join([]string{
		"From: " + n.from,
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		`Content-Type: text/html; charset="UTF-8"`,
		"",
		htmlBody,
	}, "\r\n")

	// net/smtp has no context support; run the send in a goroutine so callers
	// keep their deadline.
	done := make(chan error, 1)
	go func() {
		done <- smtp.SendMail(n.addr, n.auth, n.from, []string{to}, []byte(msg))
	}()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		if err != nil {
			return fmt.Errorf("smtp send: %w", err)
		}
		return nil
	}
}
