package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"CampusResponseAPI/internal/auth"
	"CampusResponseAPI/internal/models"
	"CampusResponseAPI/internal/notify"
)

func newTestSubmissionService(t *testing.T) (*SubmissionService, *fakeAlertRepo) {
	t.Helper()

	notifier := notify.NewNotifier()
	t.Cleanup(notifier.Close)

	repo := newFakeAlertRepo(notifier)
	return NewSubmissionService(repo, testLogger(t)), repo
}

func liveSession(userID string) *auth.Session {
	return &auth.Session{
		UserID:    userID,
		Role:      models.RoleStudent,
		TokenID:   "token-1",
		ExpiresAt: time.Now().Add(time.Hour),
	}
}

func TestSubmission_HighAlertWithFix(t *testing.T) {
	svc, repo := newTestSubmissionService(t)

	draft, err := ComposeAlert(models.TypeHigh, "", fixAt(37.0, -122.0))
	if err != nil {
		t.Fatalf("compose failed: %v", err)
	}

	id, err := svc.Submit(context.Background(), draft, liveSession("student-1"))
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if id == "" {
		t.Fatal("expected the store-assigned id returned")
	}

	stored, err := repo.GetByID(context.Background(), id)
	if err != nil || stored == nil {
		t.Fatalf("stored alert not found: %v", err)
	}
	if stored.StudentID != "student-1" {
		t.Errorf("expected owner student-1, got %s", stored.StudentID)
	}
	if stored.Status != models.StatusPending {
		t.Errorf("expected pending on insert, got %s", stored.Status)
	}
	if stored.LocationLat == nil || *stored.LocationLat != 37.0 {
		t.Error("expected the composed location persisted")
	}
	if stored.Description != nil {
		t.Error("expected no description on a high alert")
	}
}

func TestSubmission_RejectsExpiredSession(t *testing.T) {
	svc, repo := newTestSubmissionService(t)

	draft, err := ComposeAlert(models.TypeGeneral, "stolen bike", nil)
	if err != nil {
		t.Fatalf("compose failed: %v", err)
	}

	expired := &auth.Session{
		UserID:    "student-1",
		Role:      models.RoleStudent,
		ExpiresAt: time.Now().Add(-time.Minute),
	}
	if _, err := svc.Submit(context.Background(), draft, expired); !errors.Is(err, models.ErrNotAuthenticated) {
		t.Errorf("expected ErrNotAuthenticated for an expired session, got %v", err)
	}

	if _, err := svc.Submit(context.Background(), draft, nil); !errors.Is(err, models.ErrNotAuthenticated) {
		t.Errorf("expected ErrNotAuthenticated for a nil session, got %v", err)
	}

	alerts, _ := repo.List(context.Background(), models.FilterAll)
	if len(alerts) != 0 {
		t.Errorf("expected no insert without authentication, got %d", len(alerts))
	}
}

func TestSubmission_StoreRejectionSurfaces(t *testing.T) {
	svc, repo := newTestSubmissionService(t)
	repo.failCreate = true

	draft, err := ComposeAlert(models.TypeModerate, "smoke near the library", fixAt(37.0, -122.0))
	if err != nil {
		t.Fatalf("compose failed: %v", err)
	}

	_, err = svc.Submit(context.Background(), draft, liveSession("student-1"))
	if err == nil {
		t.Fatal("expected Submit to fail")
	}

	var perr *models.PersistenceError
	if !errors.As(err, &perr) {
		t.Errorf("expected PersistenceError, got %T", err)
	}
}
