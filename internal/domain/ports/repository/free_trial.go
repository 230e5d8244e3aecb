package repository

import (
	"context"

	"smm-storefront/internal/domain/model"
)

// -----------------------------
// Free trials
// -----------------------------

type FreeTrialRepository interface {
	// Insert claims the guard row. The store enforces UNIQUE(target) via
	// insert-on-conflict, so of two concurrent requests for the same target
	// exactly one gets inserted=true.
	Insert(ctx context.Context, tx Tx, t *model.FreeTrial) (inserted bool, err error)
	// FindAnyMatch returns a record matching email OR target OR ip,
	// or domain.ErrNotFound.
	FindAnyMatch(ctx context.Context, tx Tx, email, target, ip string) (*model.FreeTrial, error)
	// SetResult records the submission outcome on an existing guard row.
	SetResult(ctx context.Context, tx Tx, id string, upstreamOrderID *string, status model.FreeTrialStatus) error
}
