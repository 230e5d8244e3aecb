// File: internal/usecase/reconcile_uc.go
package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"smm-storefront/internal/domain/model"
	"smm-storefront/internal/domain/ports/adapter"
	"smm-storefront/internal/domain/ports/repository"
	"smm-storefront/internal/infra/metrics"
)

// Compile-time check
var _ ReconcileUseCase = (*reconcileUC)(nil)

const statusQueryTimeout = 10 * time.Second

type SweepFailure struct {
	OrderID string
	Err     error
}

type SweepReport struct {
	Checked     int
	Updated     int
	Resubmitted int
	Failures    []SweepFailure
}

type ReconcileUseCase interface {
	// SweepOnce refreshes every processing order against its upstream panel
	// and retries submission for stale pending orders. Per-order failures are
	// collected into the report; the sweep keeps going.
	SweepOnce(ctx context.Context) (SweepReport, error)
}

type reconcileUC struct {
	orders     repository.OrderRepository
	providers  map[string]adapter.EngagementProvider
	fulfill    FulfillmentUseCase
	staleAfter time.Duration
	batchSize  int
	log        *zerolog.Logger
}

func NewReconcileUseCase(
	orders repository.OrderRepository,
	providers map[string]adapter.EngagementProvider,
	fulfill FulfillmentUseCase,
	staleAfter time.Duration,
	batchSize int,
	logger *zerolog.Logger,
) *reconcileUC {
	if staleAfter <= 0 {
		staleAfter = 10 * time.Minute
	}
	if batchSize <= 0 {
		batchSize = 200
	}
	compLog := logger.With().Str("component", "ReconcileUC").Logger()
	return &reconcileUC{
		orders:     orders,
		providers:  providers,
		fulfill:    fulfill,
		staleAfter: staleAfter,
		batchSize:  batchSize,
		log:        &compLog,
	}
}

func (u *reconcileUC) SweepOnce(ctx context.Context) (SweepReport, error) {
	var report SweepReport

	processing, err := u.orders.ListProcessing(ctx, repository.NoTX, u.batchSize)
	if err != nil {
		return report, fmt.Errorf("list processing orders: %w", err)
	}
	for _, o := range processing {
		report.Checked++
		if err := u.reconcileOrder(ctx, o); err != nil {
			report.Failures = append(report.Failures, SweepFailure{OrderID: o.ID, Err: err})
			continue
		}
		if o.Status != model.OrderStatusProcessing {
			report.Updated++
		}
	}

	u.retryStalePending(ctx, &report)

	metrics.ObserveSweep(report.Checked, len(report.Failures))
	return report, nil
}

// reconcileOrder queries upstream and writes back only when the mapped status
// differs from the stored one. The mapping is a pure function of the raw
// string, so overlapping sweeps converge to the same final state.
func (u *reconcileUC) reconcileOrder(ctx context.Context, o *model.Order) error {
	prov, ok := u.providers[o.Provider]
	if !ok {
		return fmt.Errorf("unknown provider %q", o.Provider)
	}
	if o.UpstreamOrderID == nil {
		return fmt.Errorf("processing order %s has no upstream id", o.ID)
	}

	qCtx, cancel := context.WithTimeout(ctx, statusQueryTimeout)
	defer cancel()
	mapped, raw, err := prov.QueryStatus(qCtx, *o.UpstreamOrderID)
	if err != nil {
		return err
	}
	if mapped == o.Status {
		return nil
	}

	changed, err := u.orders.UpdateStatus(ctx, repository.NoTX, o.ID, o.Status, mapped)
	if err != nil {
		return err
	}
	if changed {
		o.Status = mapped
		metrics.IncSweepUpdated(string(mapped))
		u.log.Info().
			Str("order_id", o.ID).
			Str("raw_status", raw).
			Str("status", string(mapped)).
			Msg("order status reconciled")
	}
	return nil
}

// retryStalePending re-runs submission for orders that were claimed but whose
// async processing never finished (crash, saturated worker queue). staleAfter
// keeps this clear of in-flight webhook processing.
func (u *reconcileUC) retryStalePending(ctx context.Context, report *SweepReport) {
	cutoff := time.Now().Add(-u.staleAfter)
	stale, err := u.orders.ListPendingOlderThan(ctx, repository.NoTX, cutoff, u.batchSize)
	if err != nil {
		u.log.Error().Err(err).Msg("list stale pending orders failed")
		return
	}
	for _, o := range stale {
		if _, err := u.fulfill.Process(ctx, o); err != nil {
			report.Failures = append(report.Failures, SweepFailure{OrderID: o.ID, Err: err})
			continue
		}
		report.Resubmitted++
		u.log.Info().Str("order_id", o.ID).Msg("stale pending order resubmitted")
	}
}
