//go:build !integration

package model_test

import (
	"errors"
	"testing"

	"smm-storefront/internal/domain"
	"smm-storefront/internal/domain/model"
)

func TestOrderStatus_CanTransitionTo(t *testing.T) {
	allowed := map[model.OrderStatus][]model.OrderStatus{
		model.OrderStatusPendingSubmission: {
			model.OrderStatusProcessing,
			model.OrderStatusFailedUnsupported,
			model.OrderStatusFailedSubmission,
		},
		model.OrderStatusProcessing: {
			model.OrderStatusCompleted,
			model.OrderStatusPartial,
			model.OrderStatusCanceled,
		},
	}

	all := []model.OrderStatus{
		model.OrderStatusPendingSubmission,
		model.OrderStatusProcessing,
		model.OrderStatusCompleted,
		model.OrderStatusPartial,
		model.OrderStatusCanceled,
		model.OrderStatusFailedUnsupported,
		model.OrderStatusFailedSubmission,
	}

	for _, from := range all {
		for _, to := range all {
			want := false
			for _, ok := range allowed[from] {
				if ok == to {
					want = true
				}
			}
			if got := from.CanTransitionTo(to); got != want {
				t.Errorf("%s -> %s: got %v, want %v", from, to, got, want)
			}
		}
	}
}

func TestOrderStatus_NoBackwardTransitions(t *testing.T) {
	// once terminal, nothing moves
	terminals := []model.OrderStatus{
		model.OrderStatusCompleted,
		model.OrderStatusPartial,
		model.OrderStatusCanceled,
		model.OrderStatusFailedUnsupported,
		model.OrderStatusFailedSubmission,
	}
	for _, s := range terminals {
		if !s.Terminal() {
			t.Errorf("%s should be terminal", s)
		}
		if s.CanTransitionTo(model.OrderStatusProcessing) || s.CanTransitionTo(model.OrderStatusPendingSubmission) {
			t.Errorf("%s must not transition backwards", s)
		}
	}
	if model.OrderStatusPendingSubmission.Terminal() || model.OrderStatusProcessing.Terminal() {
		t.Error("in-flight statuses must not report terminal")
	}
}

func TestOrder_Validate(t *testing.T) {
	valid := func() *model.Order {
		return &model.Order{
			PaymentRef: "pay_123",
			Target:     "https://instagram.com/someone",
			Quantity:   500,
			PriceMinor: 1299,
		}
	}

	if err := valid().Validate(); err != nil {
		t.Fatalf("expected valid order, got: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*model.Order)
	}{
		{"empty payment ref", func(o *model.Order) { o.PaymentRef = "" }},
		{"empty target", func(o *model.Order) { o.Target = "" }},
		{"zero quantity", func(o *model.Order) { o.Quantity = 0 }},
		{"negative quantity", func(o *model.Order) { o.Quantity = -10 }},
		{"negative price", func(o *model.Order) { o.PriceMinor = -1 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			o := valid()
			tc.mutate(o)
			if err := o.Validate(); !errors.Is(err, domain.ErrInvalidArgument) {
				t.Errorf("expected ErrInvalidArgument, got: %v", err)
			}
		})
	}
}

func TestParsePlatform(t *testing.T) {
	if p, ok := model.ParsePlatform(" TikTok "); !ok || p != model.PlatformTikTok {
		t.Errorf("expected tiktok, got %q (ok=%v)", p, ok)
	}
	if _, ok := model.ParsePlatform("myspace"); ok {
		t.Error("expected unknown platform to fail")
	}
}

func TestParseServiceType(t *testing.T) {
	if s, ok := model.ParseServiceType("VIEWS"); !ok || s != model.ServiceViews {
		t.Errorf("expected views, got %q (ok=%v)", s, ok)
	}
	if _, ok := model.ParseServiceType("retweets"); ok {
		t.Error("expected unknown service to fail")
	}
}
