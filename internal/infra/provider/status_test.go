//go:build !integration

package provider

import (
	"testing"

	"smm-storefront/internal/domain/model"
)

func TestMapRawStatus(t *testing.T) {
	cases := []struct {
		raw  string
		want model.OrderStatus
	}{
		{"Completed", model.OrderStatusCompleted},
		{"completed", model.OrderStatusCompleted},
		{" COMPLETED ", model.OrderStatusCompleted},
		{"Partial", model.OrderStatusPartial},
		// contains both "partial" and "complet"; partial wins
		{"Partially completed", model.OrderStatusPartial},
		{"Canceled", model.OrderStatusCanceled},
		{"Cancelled", model.OrderStatusCanceled},
		{"Canceled by support", model.OrderStatusCanceled},
		{"In progress", model.OrderStatusProcessing},
		{"Pending", model.OrderStatusProcessing},
		{"Processing", model.OrderStatusProcessing},
		// unrecognized vocabulary stays processing so the sweep keeps polling
		{"Awaiting moderation", model.OrderStatusProcessing},
		{"", model.OrderStatusProcessing},
	}
	for _, tc := range cases {
		if got := MapRawStatus(tc.raw); got != tc.want {
			t.Errorf("MapRawStatus(%q) = %s, want %s", tc.raw, got, tc.want)
		}
	}
}
