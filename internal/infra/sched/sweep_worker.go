package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"smm-storefront/internal/infra/redis"
	"smm-storefront/internal/usecase"
)

const sweepLockKey = "sweep:reconcile"

// SweepWorker periodically runs the reconciliation sweep. Overlapping runs are
// harmless (the sweep's writes are idempotent), but when a locker is provided
// a tick that finds a sweep already running skips instead of stacking.
type SweepWorker struct {
	interval time.Duration
	reconUC  usecase.ReconcileUseCase
	locker   redis.Locker // optional
	log      *zerolog.Logger
}

func NewSweepWorker(interval time.Duration, reconUC usecase.ReconcileUseCase, locker redis.Locker, logger *zerolog.Logger) *SweepWorker {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	compLog := logger.With().Str("component", "SweepWorker").Logger()
	return &SweepWorker{
		interval: interval,
		reconUC:  reconUC,
		locker:   locker,
		log:      &compLog,
	}
}

func (w *SweepWorker) Run(ctx context.Context) error {
	w.log.Info().Dur("interval", w.interval).Msg("Starting sweep worker")
	// Run once on startup, then on every tick
	w.tick(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping sweep worker")
			return ctx.Err()
		case <-ticker.C:
			w.tick(ctx)
		}
	}
}

func (w *SweepWorker) tick(ctx context.Context) {
	if w.locker != nil {
		token, ok, err := w.locker.TryLock(ctx, sweepLockKey, w.interval)
		if err != nil {
			w.log.Warn().Err(err).Msg("sweep lock unavailable, running unlocked")
		} else if !ok {
			w.log.Debug().Msg("sweep already running elsewhere, skipping tick")
			return
		} else {
			defer func() {
				if err := w.locker.Unlock(ctx, sweepLockKey, token); err != nil {
					w.log.Warn().Err(err).Msg("sweep unlock failed")
				}
			}()
		}
	}

	runCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	report, err := w.reconUC.SweepOnce(runCtx)
	if err != nil {
		w.log.Error().Err(err).Msg("sweep failed")
		return
	}
	for _, f := range report.Failures {
		w.log.Warn().Err(f.Err).Str("order_id", f.OrderID).Msg("order reconciliation failed")
	}
	if report.Updated > 0 || report.Resubmitted > 0 || len(report.Failures) > 0 {
		w.log.Info().
			Int("checked", report.Checked).
			Int("updated", report.Updated).
			Int("resubmitted", report.Resubmitted).
			Int("failures", len(report.Failures)).
			Msg("sweep finished")
	}
}
