package geo

import (
	"errors"
	"testing"

	"CampusResponseAPI/internal/logger"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New(logger.Config{Level: logger.ERROR})
	if err != nil {
		t.Fatalf("failed to build test logger: %v", err)
	}
	return log
}

func TestRegistry_StartStopLifecycle(t *testing.T) {
	sensors := make(map[string]*fakeSensor)
	r := NewRegistry(func(userID string) Sensor {
		s := &fakeSensor{}
		sensors[userID] = s
		return s
	}, WatchOptions{}, testLogger(t))

	if err := r.StartTracking("student-1"); err != nil {
		t.Fatalf("StartTracking failed: %v", err)
	}

	sensors["student-1"].emitFix(37.0, -122.0)

	fix, ok := r.Current("student-1")
	if !ok {
		t.Fatal("expected a fix for the tracked student")
	}
	if fix.Lat != 37.0 {
		t.Errorf("expected lat 37.0, got %v", fix.Lat)
	}

	r.StopTracking("student-1")

	if _, ok := r.Current("student-1"); ok {
		t.Error("expected no fix after StopTracking")
	}
	if sensors["student-1"].clears != 1 {
		t.Errorf("expected watch released once, got %d", sensors["student-1"].clears)
	}

	// Stopping an untracked user is a no-op.
	r.StopTracking("student-1")
	r.StopTracking("never-tracked")
}

func TestRegistry_DoubleStartKeepsExistingWatch(t *testing.T) {
	var created int
	r := NewRegistry(func(userID string) Sensor {
		created++
		return &fakeSensor{}
	}, WatchOptions{}, testLogger(t))
	defer r.StopAll()

	if err := r.StartTracking("student-1"); err != nil {
		t.Fatalf("StartTracking failed: %v", err)
	}
	if err := r.StartTracking("student-1"); err != nil {
		t.Fatalf("second StartTracking failed: %v", err)
	}

	if created != 1 {
		t.Errorf("expected one sensor per user, got %d", created)
	}
}

func TestRegistry_StartFailureLeavesNoTracker(t *testing.T) {
	r := NewRegistry(func(userID string) Sensor {
		return &fakeSensor{watchErr: errors.New("broker down")}
	}, WatchOptions{}, testLogger(t))

	if err := r.StartTracking("student-1"); err == nil {
		t.Fatal("expected StartTracking to fail")
	}

	if _, ok := r.Current("student-1"); ok {
		t.Error("expected no tracker after a failed start")
	}
}

func TestRegistry_StopAll(t *testing.T) {
	sensors := make(map[string]*fakeSensor)
	r := NewRegistry(func(userID string) Sensor {
		s := &fakeSensor{}
		sensors[userID] = s
		return s
	}, WatchOptions{}, testLogger(t))

	for _, id := range []string{"a", "b", "c"} {
		if err := r.StartTracking(id); err != nil {
			t.Fatalf("StartTracking(%s) failed: %v", id, err)
		}
	}

	r.StopAll()

	for id, s := range sensors {
		if s.watching {
			t.Errorf("sensor %s still watching after StopAll", id)
		}
	}
}
