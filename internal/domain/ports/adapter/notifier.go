package adapter

import "context"

// Notifier delivers customer-facing mail. Send failures are logged by callers
// and never affect order state.
type Notifier interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// Alerter is the operator channel for conditions that need a human
// (failed submissions, guard-record inconsistencies).
type Alerter interface {
	Alert(ctx context.Context, message string) error
}
