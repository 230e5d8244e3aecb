package model

import "time"

type FreeTrialStatus string

const (
	FreeTrialStatusPending   FreeTrialStatus = "pending"   // guard row claimed, not yet submitted
	FreeTrialStatusSubmitted FreeTrialStatus = "submitted" // upstream order placed
	FreeTrialStatusFailed    FreeTrialStatus = "failed"
)

// FreeTrial is the single-use guard record for the promotional flow.
// The store enforces UNIQUE(target); email and ip are matched application-side
// when deciding whether a request is blocked.
type FreeTrial struct {
	ID              string // UUID
	Email           string
	Target          string
	IP              string
	UpstreamOrderID *string
	Status          FreeTrialStatus
	CreatedAt       time.Time
}
