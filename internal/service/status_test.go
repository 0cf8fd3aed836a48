package service

import (
	"context"
	"errors"
	"testing"

	"CampusResponseAPI/internal/models"
	"CampusResponseAPI/internal/notify"
)

func newTestStatusService(t *testing.T) (*StatusService, *fakeAlertRepo) {
	t.Helper()

	notifier := notify.NewNotifier()
	t.Cleanup(notifier.Close)

	repo := newFakeAlertRepo(notifier)
	return NewStatusService(repo, testLogger(t)), repo
}

func TestStatusService_ToggleRoundTrip(t *testing.T) {
	svc, repo := newTestStatusService(t)
	alert := repo.mustCreate(t, models.TypeModerate, "s1")

	if err := svc.SetStatus(context.Background(), alert.ID, models.StatusCompleted); err != nil {
		t.Fatalf("SetStatus failed: %v", err)
	}

	stored, err := repo.GetByID(context.Background(), alert.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if stored.Status != models.StatusCompleted {
		t.Errorf("expected completed, got %s", stored.Status)
	}

	if err := svc.SetStatus(context.Background(), alert.ID, models.StatusPending); err != nil {
		t.Fatalf("SetStatus back failed: %v", err)
	}

	stored, _ = repo.GetByID(context.Background(), alert.ID)
	if stored.Status != models.StatusPending {
		t.Errorf("expected pending after toggle back, got %s", stored.Status)
	}
}

func TestStatusService_RepeatedWriteIsIdempotent(t *testing.T) {
	svc, repo := newTestStatusService(t)
	alert := repo.mustCreate(t, models.TypeHigh, "s1")

	// Two staff members flipping the same alert both succeed; the store
	// converges on the written value.
	if err := svc.SetStatus(context.Background(), alert.ID, models.StatusCompleted); err != nil {
		t.Fatalf("first SetStatus failed: %v", err)
	}
	if err := svc.SetStatus(context.Background(), alert.ID, models.StatusCompleted); err != nil {
		t.Fatalf("second SetStatus failed: %v", err)
	}

	stored, _ := repo.GetByID(context.Background(), alert.ID)
	if stored.Status != models.StatusCompleted {
		t.Errorf("expected completed, got %s", stored.Status)
	}
}

func TestStatusService_RejectsUnknownStatus(t *testing.T) {
	svc, repo := newTestStatusService(t)
	alert := repo.mustCreate(t, models.TypeGeneral, "s1")

	if err := svc.SetStatus(context.Background(), alert.ID, "resolved"); err == nil {
		t.Error("expected an error for an unknown status")
	}

	stored, _ := repo.GetByID(context.Background(), alert.ID)
	if stored.Status != models.StatusPending {
		t.Errorf("expected store untouched, got %s", stored.Status)
	}
}

func TestStatusService_StoreRejectionSurfaces(t *testing.T) {
	svc, repo := newTestStatusService(t)
	alert := repo.mustCreate(t, models.TypeModerate, "s1")

	repo.failUpdate = true
	err := svc.SetStatus(context.Background(), alert.ID, models.StatusCompleted)
	if err == nil {
		t.Fatal("expected SetStatus to fail")
	}

	var perr *models.PersistenceError
	if !errors.As(err, &perr) {
		t.Errorf("expected PersistenceError, got %T", err)
	}
}
