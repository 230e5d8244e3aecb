package model

import (
	"strings"
	"time"

	"smm-storefront/internal/domain"
)

type Platform string

const (
	PlatformInstagram Platform = "instagram"
	PlatformTikTok    Platform = "tiktok"
	PlatformYouTube   Platform = "youtube"
)

type ServiceType string

const (
	ServiceFollowers   ServiceType = "followers"
	ServiceLikes       ServiceType = "likes"
	ServiceViews       ServiceType = "views"
	ServiceSubscribers ServiceType = "subscribers"
	ServiceComments    ServiceType = "comments"
)

type OrderStatus string

const (
	OrderStatusPendingSubmission OrderStatus = "pending_submission" // claimed, not yet submitted upstream
	OrderStatusProcessing        OrderStatus = "processing"         // submitted, upstream id assigned
	OrderStatusCompleted         OrderStatus = "completed"
	OrderStatusPartial           OrderStatus = "partial"
	OrderStatusCanceled          OrderStatus = "canceled"
	OrderStatusFailedUnsupported OrderStatus = "failed_unsupported" // no catalog mapping
	OrderStatusFailedSubmission  OrderStatus = "failed_submission"  // upstream submit failed
)

// Terminal reports whether no further automatic transition is expected.
// failed_submission is terminal for the sweeper but a redelivered payment
// event may re-claim it (see OrderRepository.Claim).
func (s OrderStatus) Terminal() bool {
	switch s {
	case OrderStatusCompleted, OrderStatusPartial, OrderStatusCanceled,
		OrderStatusFailedUnsupported, OrderStatusFailedSubmission:
		return true
	}
	return false
}

// CanTransitionTo encodes the forward-only state machine:
// pending_submission -> processing -> {completed, partial, canceled},
// with failed_unsupported / failed_submission reachable only from pending_submission.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	switch s {
	case OrderStatusPendingSubmission:
		switch next {
		case OrderStatusProcessing, OrderStatusFailedUnsupported, OrderStatusFailedSubmission:
			return true
		}
	case OrderStatusProcessing:
		switch next {
		case OrderStatusCompleted, OrderStatusPartial, OrderStatusCanceled:
			return true
		}
	}
	return false
}

func ParsePlatform(s string) (Platform, bool) {
	switch Platform(strings.ToLower(strings.TrimSpace(s))) {
	case PlatformInstagram:
		return PlatformInstagram, true
	case PlatformTikTok:
		return PlatformTikTok, true
	case PlatformYouTube:
		return PlatformYouTube, true
	}
	return "", false
}

func ParseServiceType(s string) (ServiceType, bool) {
	switch ServiceType(strings.ToLower(strings.TrimSpace(s))) {
	case ServiceFollowers:
		return ServiceFollowers, true
	case ServiceLikes:
		return ServiceLikes, true
	case ServiceViews:
		return ServiceViews, true
	case ServiceSubscribers:
		return ServiceSubscribers, true
	case ServiceComments:
		return ServiceComments, true
	}
	return "", false
}

// Order is the authoritative record of a paid engagement order.
// PaymentRef doubles as the idempotency key: the orders table enforces
// UNIQUE(payment_ref) so a redelivered payment event cannot create a second row.
type Order struct {
	ID              string // ULID
	PaymentRef      string // opaque reference from the payment gateway
	UpstreamOrderID *string
	Provider        string // which panel owns this order ("boostapi" | "smmglow")
	Platform        string // raw (normalized-lowercase) platform from the event
	Service         string // raw (normalized-lowercase) service from the event
	Target          string // URL or username
	Quantity        int
	PriceMinor      int64 // price paid in currency minor units
	Currency        string
	Status          OrderStatus
	CustomerEmail   string
	CreatedAt       time.Time
	UpdatedAt       time.Time
	// 30 days after creation; written when the order first reaches processing.
	RefillEligibleUntil *time.Time
}

func (o *Order) Validate() error {
	if o.PaymentRef == "" || o.Target == "" {
		return domain.ErrInvalidArgument
	}
	if o.Quantity <= 0 {
		return domain.ErrInvalidArgument
	}
	if o.PriceMinor < 0 {
		return domain.ErrInvalidArgument
	}
	return nil
}
