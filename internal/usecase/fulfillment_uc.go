// File: internal/usecase/fulfillment_uc.go
package usecase

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"smm-storefront/internal/catalog"
	"smm-storefront/internal/domain"
	"smm-storefront/internal/domain/model"
	"smm-storefront/internal/domain/ports/adapter"
	"smm-storefront/internal/domain/ports/repository"
	"smm-storefront/internal/infra/logging"
	"smm-storefront/internal/infra/metrics"
)

// Compile-time check
var _ FulfillmentUseCase = (*fulfillmentUC)(nil)

const (
	submitTimeout = 10 * time.Second
	refillWindow  = 30 * 24 * time.Hour
)

// PaymentEvent is the decoded payment-confirmation payload. PaymentRef is the
// idempotency key; the rest is the order metadata embedded by checkout.
type PaymentEvent struct {
	PaymentRef string
	Platform   string
	Service    string
	Target     string
	Quantity   int
	PriceMinor int64
	Currency   string
	Email      string
}

func (e PaymentEvent) validate() error {
	if e.PaymentRef == "" || e.Target == "" || e.Quantity <= 0 || e.PriceMinor < 0 {
		return domain.ErrInvalidArgument
	}
	return nil
}

type FulfillmentUseCase interface {
	// Claim durably records the order for the event's payment reference, or
	// finds the existing record. claimed=false is the idempotent duplicate
	// path: the caller must NOT submit and should return the existing order.
	Claim(ctx context.Context, evt PaymentEvent) (order *model.Order, claimed bool, err error)
	// Process runs catalog resolution, upstream submission and notification
	// for a claimed order. Everything it needs is persisted on the order row,
	// so it also serves submission retry for stale pending orders.
	Process(ctx context.Context, order *model.Order) (*model.Order, error)
	// HandlePaymentConfirmed is Claim + Process in one call (synchronous path).
	HandlePaymentConfirmed(ctx context.Context, evt PaymentEvent) (*model.Order, error)
}

type fulfillmentUC struct {
	orders    repository.OrderRepository
	tm        repository.TransactionManager
	catalog   *catalog.Catalog
	providers map[string]adapter.EngagementProvider
	active    string // provider new orders are routed to
	notifier  adapter.Notifier
	alerter   adapter.Alerter
	log       *zerolog.Logger
}

func NewFulfillmentUseCase(
	orders repository.OrderRepository,
	tm repository.TransactionManager,
	cat *catalog.Catalog,
	providers map[string]adapter.EngagementProvider,
	activeProvider string,
	notifier adapter.Notifier,
	alerter adapter.Alerter,
	logger *zerolog.Logger,
) *fulfillmentUC {
	compLog := logger.With().Str("component", "FulfillmentUC").Logger()
	return &fulfillmentUC{
		orders:    orders,
		tm:        tm,
		catalog:   cat,
		providers: providers,
		active:    activeProvider,
		notifier:  notifier,
		alerter:   alerter,
		log:       &compLog,
	}
}

func (u *fulfillmentUC) Claim(ctx context.Context, evt PaymentEvent) (*model.Order, bool, error) {
	if err := evt.validate(); err != nil {
		return nil, false, err
	}

	now := time.Now()
	o := &model.Order{
		ID:            ulid.MustNew(ulid.Timestamp(now), rand.Reader).String(),
		PaymentRef:    evt.PaymentRef,
		Provider:      u.active,
		Platform:      strings.ToLower(strings.TrimSpace(evt.Platform)),
		Service:       strings.ToLower(strings.TrimSpace(evt.Service)),
		Target:        evt.Target,
		Quantity:      evt.Quantity,
		PriceMinor:    evt.PriceMinor,
		Currency:      evt.Currency,
		Status:        model.OrderStatusPendingSubmission,
		CustomerEmail: evt.Email,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := o.Validate(); err != nil {
		return nil, false, err
	}

	// Claim and any conflict read-back run inside one transaction so the row
	// handed to the caller reflects the claim that actually won.
	var claimed *model.Order
	var ok bool
	err := u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		var err error
		claimed, ok, err = u.orders.Claim(ctx, tx, o)
		if err == nil {
			return nil
		}
		// A lost concurrent claim is not an error: read back the winner and
		// behave as a duplicate.
		if errors.Is(err, domain.ErrStoreConflict) {
			claimed, err = u.orders.FindByPaymentRef(ctx, tx, evt.PaymentRef)
			ok = false
			return err
		}
		return err
	})
	if err != nil {
		return nil, false, err
	}
	if !ok {
		metrics.IncDuplicateEvent()
		u.log.Info().
			Str("payment_ref", evt.PaymentRef).
			Str("order_id", claimed.ID).
			Str("status", string(claimed.Status)).
			Msg("duplicate payment event ignored")
	}
	return claimed, ok, nil
}

func (u *fulfillmentUC) Process(ctx context.Context, order *model.Order) (*model.Order, error) {
	log := logging.With(ctx, u.log)
	defer logging.TraceDuration(log, "FulfillmentUC.Process")()

	prov, ok := u.providers[order.Provider]
	if !ok {
		return order, fmt.Errorf("order %s routed to unknown provider %q", order.ID, order.Provider)
	}

	serviceID, err := u.catalog.Resolve(order.Provider, order.Platform, order.Service)
	if err != nil {
		var unsupported *domain.UnsupportedServiceError
		if errors.As(err, &unsupported) {
			if merr := u.orders.MarkFailed(ctx, repository.NoTX, order.ID, model.OrderStatusFailedUnsupported); merr != nil {
				return order, merr
			}
			order.Status = model.OrderStatusFailedUnsupported
			metrics.IncOrderFailed(string(model.OrderStatusFailedUnsupported))
			log.Warn().
				Str("order_id", order.ID).
				Str("platform", order.Platform).
				Str("service", order.Service).
				Msg("no catalog mapping, order failed as unsupported")
			return order, err
		}
		return order, err
	}

	submitCtx, cancel := context.WithTimeout(ctx, submitTimeout)
	defer cancel()
	upstreamID, err := prov.SubmitOrder(submitCtx, serviceID, order.Target, order.Quantity)
	if err != nil {
		if merr := u.orders.MarkFailed(ctx, repository.NoTX, order.ID, model.OrderStatusFailedSubmission); merr != nil {
			log.Error().Err(merr).Str("order_id", order.ID).Msg("could not record failed submission")
		}
		order.Status = model.OrderStatusFailedSubmission
		metrics.IncOrderFailed(string(model.OrderStatusFailedSubmission))
		u.alert(ctx, fmt.Sprintf("order %s: submission to %s failed: %v", order.ID, order.Provider, err))
		return order, err
	}

	refillUntil := order.CreatedAt.Add(refillWindow)
	if err := u.orders.MarkProcessing(ctx, repository.NoTX, order.ID, upstreamID, refillUntil); err != nil {
		// The upstream order exists; the row must reflect it or the sweeper
		// will never reconcile. Surface loudly.
		u.alert(ctx, fmt.Sprintf("order %s: submitted upstream as %s but store write failed: %v", order.ID, upstreamID, err))
		return order, err
	}
	order.Status = model.OrderStatusProcessing
	order.UpstreamOrderID = &upstreamID
	order.RefillEligibleUntil = &refillUntil
	metrics.IncOrderSubmitted(order.Provider)
	log.Info().
		Str("order_id", order.ID).
		Str("upstream_order_id", upstreamID).
		Str("provider", order.Provider).
		Msg("order submitted")

	u.notifyCustomer(ctx, order)
	return order, nil
}

func (u *fulfillmentUC) HandlePaymentConfirmed(ctx context.Context, evt PaymentEvent) (*model.Order, error) {
	order, claimed, err := u.Claim(ctx, evt)
	if err != nil {
		return nil, err
	}
	if !claimed {
		return order, nil
	}
	return u.Process(ctx, order)
}

// notifyCustomer is best-effort: a notification failure never rolls back or
// fails the order.
func (u *fulfillmentUC) notifyCustomer(ctx context.Context, order *model.Order) {
	if u.notifier == nil || order.CustomerEmail == "" {
		return
	}
	subject := "Your order is on its way"
	body := fmt.Sprintf(
		"<p>Your %s %s order (%d) for <b>%s</b> has been accepted and is being delivered.</p>",
		order.Platform, order.Service, order.Quantity, order.Target,
	)
	if err := u.notifier.Send(ctx, order.CustomerEmail, subject, body); err != nil {
		u.log.Warn().Err(err).Str("order_id", order.ID).Msg("customer notification failed")
	}
}

func (u *fulfillmentUC) alert(ctx context.Context, msg string) {
	if u.alerter == nil {
		return
	}
	if err := u.alerter.Alert(ctx, msg); err != nil {
		u.log.Warn().Err(err).Msg("operator alert failed")
	}
}
