// File: internal/usecase/freetrial_uc.go
package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"smm-storefront/internal/catalog"
	"smm-storefront/internal/domain"
	"smm-storefront/internal/domain/model"
	"smm-storefront/internal/domain/ports/adapter"
	"smm-storefront/internal/domain/ports/repository"
	"smm-storefront/internal/infra/metrics"
)

// Compile-time check
var _ FreeTrialUseCase = (*freeTrialUC)(nil)

type FreeTrialRequest struct {
	Email  string
	Target string
	IP     string
}

type FreeTrialResult struct {
	AlreadyUsed     bool
	UpstreamOrderID string
}

type FreeTrialUseCase interface {
	// Request fulfills one promotional order per (email|target|ip). A repeat on
	// any of the three comes back AlreadyUsed, not an error.
	Request(ctx context.Context, req FreeTrialRequest) (*FreeTrialResult, error)
}

// TrialSpec pins what a free trial actually ships.
type TrialSpec struct {
	Platform string
	Service  string
	Quantity int
}

type freeTrialUC struct {
	trials   repository.FreeTrialRepository
	catalog  *catalog.Catalog
	provider adapter.EngagementProvider
	alerter  adapter.Alerter
	spec     TrialSpec
	log      *zerolog.Logger
}

func NewFreeTrialUseCase(
	trials repository.FreeTrialRepository,
	cat *catalog.Catalog,
	provider adapter.EngagementProvider,
	alerter adapter.Alerter,
	spec TrialSpec,
	logger *zerolog.Logger,
) *freeTrialUC {
	compLog := logger.With().Str("component", "FreeTrialUC").Logger()
	return &freeTrialUC{
		trials:   trials,
		catalog:  cat,
		provider: provider,
		alerter:  alerter,
		spec:     spec,
		log:      &compLog,
	}
}

func (u *freeTrialUC) Request(ctx context.Context, req FreeTrialRequest) (*FreeTrialResult, error) {
	if req.Email == "" || req.Target == "" || req.IP == "" {
		return nil, domain.ErrInvalidArgument
	}

	// Any prior record matching email OR target OR ip blocks the request.
	if _, err := u.trials.FindAnyMatch(ctx, repository.NoTX, req.Email, req.Target, req.IP); err == nil {
		metrics.IncFreeTrial("already_used")
		return &FreeTrialResult{AlreadyUsed: true}, nil
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	// Claim the guard row before touching the provider; the UNIQUE(target)
	// upsert closes the race between concurrent duplicates that all pass the
	// check above.
	trial := &model.FreeTrial{
		ID:        uuid.NewString(),
		Email:     req.Email,
		Target:    req.Target,
		IP:        req.IP,
		Status:    model.FreeTrialStatusPending,
		CreatedAt: time.Now(),
	}
	inserted, err := u.trials.Insert(ctx, repository.NoTX, trial)
	if err != nil {
		return nil, err
	}
	if !inserted {
		metrics.IncFreeTrial("already_used")
		return &FreeTrialResult{AlreadyUsed: true}, nil
	}

	serviceID, err := u.catalog.Resolve(u.provider.Name(), u.spec.Platform, u.spec.Service)
	if err != nil {
		_ = u.trials.SetResult(ctx, repository.NoTX, trial.ID, nil, model.FreeTrialStatusFailed)
		return nil, err
	}

	submitCtx, cancel := context.WithTimeout(ctx, submitTimeout)
	defer cancel()
	upstreamID, err := u.provider.SubmitOrder(submitCtx, serviceID, req.Target, u.spec.Quantity)
	if err != nil {
		metrics.IncFreeTrial("failed")
		if serr := u.trials.SetResult(ctx, repository.NoTX, trial.ID, nil, model.FreeTrialStatusFailed); serr != nil {
			u.log.Error().Err(serr).Str("trial_id", trial.ID).Msg("could not record failed trial")
		}
		return nil, err
	}

	// The upstream side effect already happened and cannot be undone, so a
	// failed guard-record write must not turn success into failure; it is
	// logged for manual reconciliation instead.
	if err := u.trials.SetResult(ctx, repository.NoTX, trial.ID, &upstreamID, model.FreeTrialStatusSubmitted); err != nil {
		u.log.Error().Err(err).
			Str("trial_id", trial.ID).
			Str("upstream_order_id", upstreamID).
			Msg("trial submitted upstream but guard record write failed")
		u.alertInconsistency(ctx, trial.ID, upstreamID, err)
	}

	metrics.IncFreeTrial("granted")
	u.log.Info().
		Str("trial_id", trial.ID).
		Str("upstream_order_id", upstreamID).
		Str("target", req.Target).
		Msg("free trial granted")
	return &FreeTrialResult{UpstreamOrderID: upstreamID}, nil
}

func (u *freeTrialUC) alertInconsistency(ctx context.Context, trialID, upstreamID string, cause error) {
	if u.alerter == nil {
		return
	}
	msg := fmt.Sprintf("free trial %s: upstream order %s placed but guard write failed: %v", trialID, upstreamID, cause)
	if err := u.alerter.Alert(ctx, msg); err != nil {
		u.log.Warn().Err(err).Msg("operator alert failed")
	}
}
