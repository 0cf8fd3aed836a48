package models

import (
	"errors"
	"fmt"
)

// Sentinel errors surfaced to callers. Handlers map these onto HTTP status
// codes; services never log-and-swallow them.
var (
	// ErrNotAuthenticated means no valid session accompanied the request.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrLocationRequired means a high or moderate alert was composed while
	// no location fix was available. Raised before any store call.
	ErrLocationRequired = errors.New("location required for this alert type")
)

// PersistenceError wraps a store rejection (constraint violation,
// connectivity). It is reported to the caller and never retried here.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failure during %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// Sensor error codes, mirroring the platform geolocation failure modes.
const (
	SensorPermissionDenied    = "permission_denied"
	SensorTimeout             = "timeout"
	SensorPositionUnavailable = "position_unavailable"
)

// SensorError reports a geolocation failure. It is non-fatal: tracking keeps
// retrying and only the latest-fix availability flips to unavailable.
type SensorError struct {
	Code    string
	Message string
}

func (e *SensorError) Error() string {
	return fmt.Sprintf("sensor error (%s): %s", e.Code, e.Message)
}
