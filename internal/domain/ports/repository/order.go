package repository

import (
	"context"
	"time"

	"smm-storefront/internal/domain/model"
)

// -----------------------------
// Orders
// -----------------------------

type OrderRepository interface {
	// Claim inserts the order keyed by its payment reference, atomically at the
	// store level. It returns the authoritative row and whether this caller now
	// holds the submission claim:
	//
	//   - first delivery: row inserted, claimed=true
	//   - redelivery after failed_submission: the existing row is re-claimed
	//     (status reset to pending_submission), claimed=true
	//   - redelivery while pending_submission, processing or beyond:
	//     claimed=false and the existing row is returned (idempotent no-op for
	//     the caller). A pending row is never handed out again because its
	//     first submission may still be in flight.
	//
	// Two concurrent deliveries of the same payment reference resolve through
	// the store's unique constraint: exactly one wins the claim.
	Claim(ctx context.Context, tx Tx, o *model.Order) (*model.Order, bool, error)

	FindByID(ctx context.Context, tx Tx, id string) (*model.Order, error)
	FindByPaymentRef(ctx context.Context, tx Tx, paymentRef string) (*model.Order, error)
	FindByUpstreamID(ctx context.Context, tx Tx, upstreamID string) (*model.Order, error)

	// MarkProcessing records the upstream order id, advances the order to
	// processing and stamps the refill window. It only applies while the order
	// is still pending_submission.
	MarkProcessing(ctx context.Context, tx Tx, id, upstreamOrderID string, refillUntil time.Time) error
	// MarkFailed moves a pending_submission order to one of the failure branches.
	MarkFailed(ctx context.Context, tx Tx, id string, status model.OrderStatus) error
	// UpdateStatus performs a conditional write `from -> to` and reports whether
	// a row changed. Used by the sweeper; the condition keeps overlapping sweeps
	// idempotent and enforces forward-only transitions.
	UpdateStatus(ctx context.Context, tx Tx, id string, from, to model.OrderStatus) (bool, error)

	// ListProcessing returns non-terminal orders that have an upstream id.
	ListProcessing(ctx context.Context, tx Tx, limit int) ([]*model.Order, error)
	// ListPendingOlderThan returns pending_submission orders created before the
	// cutoff, for submission retry.
	ListPendingOlderThan(ctx context.Context, tx Tx, olderThan time.Time, limit int) ([]*model.Order, error)
	ListByStatus(ctx context.Context, tx Tx, status model.OrderStatus, offset, limit int) ([]*model.Order, error)

	CountByStatus(ctx context.Context, tx Tx) (map[model.OrderStatus]int, error)
	// SumRevenueByPeriod sums price_minor of delivered orders since the start of
	// the given period ("week" | "month" | "year").
	SumRevenueByPeriod(ctx context.Context, tx Tx, period string) (int64, error)
}
