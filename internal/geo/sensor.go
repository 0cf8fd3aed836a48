package geo

import (
	"time"

	"CampusResponseAPI/internal/models"
)

// WatchHandle identifies one continuous watch on a sensor.
type WatchHandle string

// WatchOptions mirror the platform geolocation watch parameters.
type WatchOptions struct {
	// HighAccuracy asks the device for precise fixes.
	HighAccuracy bool
	// MaxAge bounds how old a delivered fix may be. Zero rejects any fix
	// whose timestamp predates its arrival window.
	MaxAge time.Duration
	// Timeout is the per-fix acquisition deadline. Exceeding it surfaces a
	// timeout error without ending the watch.
	Timeout time.Duration
}

// FixFunc receives each successful position fix.
type FixFunc func(models.LocationFix)

// ErrorFunc receives each sensor failure. Errors are non-fatal; the watch
// keeps running.
type ErrorFunc func(*models.SensorError)

// Sensor is a continuous position source. Watch begins delivery and returns
// a handle; ClearWatch releases it. Implementations must tolerate ClearWatch
// being called with a handle that was already cleared.
type Sensor interface {
	Watch(onFix FixFunc, onError ErrorFunc, opts WatchOptions) (WatchHandle, error)
	ClearWatch(WatchHandle)
}
