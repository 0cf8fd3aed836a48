package geo

import (
	"sync"

	"CampusResponseAPI/internal/models"
)

// WarnFunc observes sensor failures, once per error event.
type WarnFunc func(*models.SensorError)

// Tracker maintains the latest known position fix from a continuous sensor
// watch. It is an explicit two-state machine: tracking-active after a
// successful Start, tracking-stopped after Stop. No fix history is kept and
// no smoothing is applied; each fix overwrites the last.
type Tracker struct {
	sensor Sensor
	opts   WatchOptions
	onWarn WarnFunc

	mu     sync.Mutex
	active bool
	handle WatchHandle
	fix    *models.LocationFix
}

func NewTracker(sensor Sensor, opts WatchOptions, onWarn WarnFunc) *Tracker {
	return &Tracker{
		sensor: sensor,
		opts:   opts,
		onWarn: onWarn,
	}
}

// Start begins continuous acquisition. Starting an active tracker is a
// no-op; the existing watch is kept.
func (t *Tracker) Start() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.active {
		return nil
	}

	handle, err := t.sensor.Watch(t.handleFix, t.handleError, t.opts)
	if err != nil {
		return err
	}

	t.handle = handle
	t.active = true
	return nil
}

// Stop releases the watch and discards the latest fix. Idempotent: stopping
// a stopped tracker does nothing. Whoever starts a tracker owns the duty to
// call Stop on teardown, including error exits.
func (t *Tracker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.active {
		return
	}

	t.sensor.ClearWatch(t.handle)
	t.active = false
	t.fix = nil
}

// Current returns the latest known fix. The second return is false while no
// fix is available (never acquired, discarded after an error, or stopped).
func (t *Tracker) Current() (models.LocationFix, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.fix == nil {
		return models.LocationFix{}, false
	}
	return *t.fix, true
}

// Active reports whether the tracker is in the tracking-active state.
func (t *Tracker) Active() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.active
}

func (t *Tracker) handleFix(fix models.LocationFix) {
	t.mu.Lock()
	if !t.active {
		t.mu.Unlock()
		return
	}
	t.fix = &fix
	t.mu.Unlock()
}

func (t *Tracker) handleError(serr *models.SensorError) {
	t.mu.Lock()
	if !t.active {
		t.mu.Unlock()
		return
	}
	// Availability flips to unavailable; the watch itself keeps retrying.
	t.fix = nil
	t.mu.Unlock()

	if t.onWarn != nil {
		t.onWarn(serr)
	}
}
