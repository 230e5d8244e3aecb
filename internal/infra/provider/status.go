package provider

import (
	"strings"

	"smm-storefront/internal/domain/model"
)

// MapRawStatus maps a panel's free-text status into the canonical enum.
// Total over all inputs: anything unrecognized (including "pending",
// "in progress", garbage) falls back to processing. A terminal status is never
// inferred from unknown input.
//
// "partial" is checked before "complet" so that "Partially completed" maps to
// partial, not completed.
func MapRawStatus(raw string) model.OrderStatus {
	s := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case strings.Contains(s, "partial"):
		return model.OrderStatusPartial
	case strings.Contains(s, "cancel"):
		return model.OrderStatusCanceled
	case strings.Contains(s, "complet"):
		return model.OrderStatusCompleted
	default:
		return model.OrderStatusProcessing
	}
}
