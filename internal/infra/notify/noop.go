package notify

import (
	"context"

	"github.com/rs/zerolog"

	"smm-storefront/internal/domain/ports/adapter"
)

var (
	_ adapter.Notifier = (*NoopNotifier)(nil)
	_ adapter.Alerter  = (*NoopAlerter)(nil)
)

// NoopNotifier logs instead of sending; used in dev mode and when SMTP is not
// configured.
type NoopNotifier struct {
	log *zerolog.Logger
}

func NewNoopNotifier(logger *zerolog.Logger) *NoopNotifier {
	return &NoopNotifier{log: logger}
}

func (n *NoopNotifier) Send(ctx context.Context, to, subject, htmlBody string) error {
	n.log.Debug().Str("to", to).Str("subject", subject).Msg("noop notifier: mail suppressed")
	return nil
}

type NoopAlerter struct {
	log *zerolog.Logger
}

func NewNoopAlerter(logger *zerolog.Logger) *NoopAlerter {
	return &NoopAlerter{log: logger}
}

func (a *NoopAlerter) Alert(ctx context.Context, message string) error {
	a.log.Warn().Str("alert", message).Msg("noop alerter: alert suppressed")
	return nil
}
