package domain

import (
	"errors"
	"fmt"
)

var (
	// Common domain errors
	ErrNotFound           = errors.New("entity not found")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrReadDatabaseRow    = errors.New("failed to read database row")
	ErrInvalidExecContext = errors.New("invalid database exec context")
	ErrStoreConflict      = errors.New("conflicting concurrent write")
	ErrInvalidTransition  = errors.New("invalid order status transition")
)

// UnsupportedServiceError means the catalog has no mapping for a
// (provider, platform, service) combination. It is a user-facing, terminal
// failure and must never be retried against the provider.
type UnsupportedServiceError struct {
	Provider string
	Platform string
	Service  string
}

func (e *UnsupportedServiceError) Error() string {
	return fmt.Sprintf("service %q on %q is not supported by provider %q", e.Service, e.Platform, e.Provider)
}
