package provider

import "fmt"

// TimeoutError means the panel did not answer within the request bound.
// It is retryable by redelivery of the triggering event; the order claim
// protocol guards against double submission.
type TimeoutError struct {
	Provider string
	Op       string // "add" | "status"
	Err      error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("provider %s: %s timed out: %v", e.Provider, e.Op, e.Err)
}

func (e *TimeoutError) Unwrap() error { return e.Err }

// PanelError means the panel responded but with an error or an unparseable
// body (these panels happily return HTML error pages). RawBody is kept for
// diagnostics, truncated at capture time.
type PanelError struct {
	Provider string
	Op       string
	RawBody  string
	Err      error
}

func (e *PanelError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("provider %s: %s failed: %v (body: %s)", e.Provider, e.Op, e.Err, e.RawBody)
	}
	return fmt.Sprintf("provider %s: %s failed (body: %s)", e.Provider, e.Op, e.RawBody)
}

func (e *PanelError) Unwrap() error { return e.Err }
