package geo

import (
	"sync"
	"testing"
	"time"

	"CampusResponseAPI/internal/models"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeSensor struct {
	mu       sync.Mutex
	watching bool
	watches  int
	clears   int
	onFix    FixFunc
	onError  ErrorFunc
	watchErr error
}

func (s *fakeSensor) Watch(onFix FixFunc, onError ErrorFunc, opts WatchOptions) (WatchHandle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.watchErr != nil {
		return "", s.watchErr
	}
	s.watching = true
	s.watches++
	s.onFix = onFix
	s.onError = onError
	return "watch-1", nil
}

func (s *fakeSensor) ClearWatch(h WatchHandle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.watching = false
	s.clears++
}

func (s *fakeSensor) emitFix(lat, lng float64) {
	s.mu.Lock()
	onFix := s.onFix
	s.mu.Unlock()
	if onFix != nil {
		onFix(models.LocationFix{Lat: lat, Lng: lng, Timestamp: time.Now()})
	}
}

func (s *fakeSensor) emitError(code string) {
	s.mu.Lock()
	onError := s.onError
	s.mu.Unlock()
	if onError != nil {
		onError(&models.SensorError{Code: code, Message: code})
	}
}

func TestTracker_NoFixBeforeFirstCallback(t *testing.T) {
	sensor := &fakeSensor{}
	tracker := NewTracker(sensor, WatchOptions{}, nil)

	if err := tracker.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer tracker.Stop()

	if _, ok := tracker.Current(); ok {
		t.Error("expected no fix before the first sensor callback")
	}
}

func TestTracker_FixOverwritesPrevious(t *testing.T) {
	sensor := &fakeSensor{}
	tracker := NewTracker(sensor, WatchOptions{}, nil)

	if err := tracker.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer tracker.Stop()

	sensor.emitFix(37.0, -122.0)
	sensor.emitFix(37.5, -122.5)

	fix, ok := tracker.Current()
	if !ok {
		t.Fatal("expected a fix after sensor callbacks")
	}
	if fix.Lat != 37.5 || fix.Lng != -122.5 {
		t.Errorf("expected latest fix (37.5, -122.5), got (%v, %v)", fix.Lat, fix.Lng)
	}
}

func TestTracker_ErrorFlipsToUnavailable(t *testing.T) {
	sensor := &fakeSensor{}

	var warnings []string
	var mu sync.Mutex
	tracker := NewTracker(sensor, WatchOptions{}, func(serr *models.SensorError) {
		mu.Lock()
		warnings = append(warnings, serr.Code)
		mu.Unlock()
	})

	if err := tracker.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer tracker.Stop()

	sensor.emitFix(37.0, -122.0)
	sensor.emitError(models.SensorPermissionDenied)

	if _, ok := tracker.Current(); ok {
		t.Error("expected unavailable after a sensor error")
	}

	// Tracking keeps retrying: a later fix restores availability.
	sensor.emitFix(36.0, -121.0)
	if _, ok := tracker.Current(); !ok {
		t.Error("expected availability restored after a new fix")
	}

	mu.Lock()
	defer mu.Unlock()
	if len(warnings) != 1 {
		t.Errorf("expected exactly one warning per error event, got %d", len(warnings))
	}
}

func TestTracker_StartIsIdempotentWhileActive(t *testing.T) {
	sensor := &fakeSensor{}
	tracker := NewTracker(sensor, WatchOptions{}, nil)

	if err := tracker.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := tracker.Start(); err != nil {
		t.Fatalf("second Start failed: %v", err)
	}
	defer tracker.Stop()

	if sensor.watches != 1 {
		t.Errorf("expected a single sensor watch, got %d", sensor.watches)
	}
}

func TestTracker_StopIsIdempotentAndDiscardsFix(t *testing.T) {
	sensor := &fakeSensor{}
	tracker := NewTracker(sensor, WatchOptions{}, nil)

	if err := tracker.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	sensor.emitFix(37.0, -122.0)

	tracker.Stop()
	tracker.Stop()

	if sensor.clears != 1 {
		t.Errorf("expected a single ClearWatch, got %d", sensor.clears)
	}
	if _, ok := tracker.Current(); ok {
		t.Error("expected fix discarded on Stop")
	}
	if tracker.Active() {
		t.Error("expected tracking-stopped state after Stop")
	}
}

func TestTracker_LateCallbacksIgnoredAfterStop(t *testing.T) {
	sensor := &fakeSensor{}
	tracker := NewTracker(sensor, WatchOptions{}, func(*models.SensorError) {
		t.Error("warning raised after Stop")
	})

	if err := tracker.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	tracker.Stop()

	sensor.emitFix(37.0, -122.0)
	sensor.emitError(models.SensorTimeout)

	if _, ok := tracker.Current(); ok {
		t.Error("expected no fix recorded after Stop")
	}
}
