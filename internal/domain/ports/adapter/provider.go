package adapter

import (
	"context"

	"smm-storefront/internal/domain/model"
)

// EngagementProvider is the uniform contract over the upstream fulfillment
// panels. Implementations are stateless with respect to a single order, so
// concurrent callers need no coordination.
type EngagementProvider interface {
	Name() string
	// SubmitOrder places an order upstream and returns the provider's order id.
	// Failures are provider.TimeoutError / provider.PanelError.
	SubmitOrder(ctx context.Context, serviceID int64, target string, quantity int) (upstreamOrderID string, err error)
	// QueryStatus returns the canonical status mapped from the provider's
	// free-text vocabulary, plus the raw string for diagnostics.
	QueryStatus(ctx context.Context, upstreamOrderID string) (status model.OrderStatus, raw string, err error)
}
