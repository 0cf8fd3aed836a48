package geo

import (
	"sync"

	"CampusResponseAPI/internal/logger"
	"CampusResponseAPI/internal/models"
)

// SensorFactory builds the sensor for one user's location stream.
type SensorFactory func(userID string) Sensor

// Registry owns one tracker per logged-in student. Login starts tracking,
// logout (or server shutdown) stops it, so no sensor watch outlives its
// session.
type Registry struct {
	newSensor SensorFactory
	opts      WatchOptions
	log       *logger.Logger

	mu       sync.Mutex
	trackers map[string]*Tracker
}

func NewRegistry(newSensor SensorFactory, opts WatchOptions, log *logger.Logger) *Registry {
	return &Registry{
		newSensor: newSensor,
		opts:      opts,
		log:       log,
		trackers:  make(map[string]*Tracker),
	}
}

// StartTracking begins continuous acquisition for userID. Starting an
// already-tracked user keeps the existing watch.
func (r *Registry) StartTracking(userID string) error {
	r.mu.Lock()
	t, ok := r.trackers[userID]
	if !ok {
		t = NewTracker(r.newSensor(userID), r.opts, r.warnFor(userID))
		r.trackers[userID] = t
	}
	r.mu.Unlock()

	if err := t.Start(); err != nil {
		r.mu.Lock()
		delete(r.trackers, userID)
		r.mu.Unlock()
		return err
	}

	return nil
}

// StopTracking releases userID's watch. Idempotent.
func (r *Registry) StopTracking(userID string) {
	r.mu.Lock()
	t, ok := r.trackers[userID]
	if ok {
		delete(r.trackers, userID)
	}
	r.mu.Unlock()

	if ok {
		t.Stop()
	}
}

// Current returns userID's latest known fix, or false when tracking is off
// or no fix is available.
func (r *Registry) Current(userID string) (models.LocationFix, bool) {
	r.mu.Lock()
	t, ok := r.trackers[userID]
	r.mu.Unlock()

	if !ok {
		return models.LocationFix{}, false
	}
	return t.Current()
}

// StopAll releases every active watch. Called on shutdown.
func (r *Registry) StopAll() {
	r.mu.Lock()
	trackers := make([]*Tracker, 0, len(r.trackers))
	for id, t := range r.trackers {
		trackers = append(trackers, t)
		delete(r.trackers, id)
	}
	r.mu.Unlock()

	for _, t := range trackers {
		t.Stop()
	}
}

func (r *Registry) warnFor(userID string) WarnFunc {
	return func(serr *models.SensorError) {
		r.log.Warn("Location sensor for user %s: %v", userID, serr)
	}
}
