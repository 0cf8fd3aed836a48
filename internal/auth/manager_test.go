package auth

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"CampusResponseAPI/internal/models"
)

func testManager() *Manager {
	return NewManager("test-secret-at-least-32-bytes-long", 1)
}

func testProfile(role string) *models.Profile {
	return &models.Profile{ID: "user-1", Role: role}
}

func TestManager_IssueParseRoundTrip(t *testing.T) {
	m := testManager()

	token, err := m.IssueToken(testProfile(models.RoleStaff))
	if err != nil {
		t.Fatalf("IssueToken failed: %v", err)
	}

	session, err := m.ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken failed: %v", err)
	}
	if session.UserID != "user-1" {
		t.Errorf("expected subject user-1, got %s", session.UserID)
	}
	if session.Role != models.RoleStaff {
		t.Errorf("expected staff role, got %s", session.Role)
	}
	if !session.Valid() {
		t.Error("expected a freshly issued session to be valid")
	}
}

func TestManager_RejectsGarbageAndForeignTokens(t *testing.T) {
	m := testManager()

	if _, err := m.ParseToken("not-a-token"); !errors.Is(err, models.ErrNotAuthenticated) {
		t.Errorf("expected ErrNotAuthenticated, got %v", err)
	}

	other := NewManager("a-different-signing-secret-entirely", 1)
	foreign, err := other.IssueToken(testProfile(models.RoleStudent))
	if err != nil {
		t.Fatalf("IssueToken failed: %v", err)
	}
	if _, err := m.ParseToken(foreign); !errors.Is(err, models.ErrNotAuthenticated) {
		t.Errorf("expected ErrNotAuthenticated for a foreign signature, got %v", err)
	}
}

func TestManager_RevokeEndsSessionEarly(t *testing.T) {
	m := testManager()

	token, err := m.IssueToken(testProfile(models.RoleStudent))
	if err != nil {
		t.Fatalf("IssueToken failed: %v", err)
	}

	session, err := m.ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken failed: %v", err)
	}

	m.Revoke(session)

	if _, err := m.ParseToken(token); !errors.Is(err, models.ErrNotAuthenticated) {
		t.Errorf("expected revoked token rejected, got %v", err)
	}

	// Revoking again or revoking nil is harmless.
	m.Revoke(session)
	m.Revoke(nil)
}

func TestManager_SessionFromRequest(t *testing.T) {
	m := testManager()

	token, err := m.IssueToken(testProfile(models.RoleStudent))
	if err != nil {
		t.Fatalf("IssueToken failed: %v", err)
	}

	r, _ := http.NewRequest(http.MethodGet, "/api/v1/alerts", nil)
	r.Header.Set("Authorization", "Bearer "+token)

	session, err := m.SessionFromRequest(r)
	if err != nil {
		t.Fatalf("SessionFromRequest failed: %v", err)
	}
	if session.UserID != "user-1" {
		t.Errorf("expected subject user-1, got %s", session.UserID)
	}

	bare, _ := http.NewRequest(http.MethodGet, "/api/v1/alerts", nil)
	if _, err := m.SessionFromRequest(bare); !errors.Is(err, models.ErrNotAuthenticated) {
		t.Errorf("expected ErrNotAuthenticated without a header, got %v", err)
	}

	malformed, _ := http.NewRequest(http.MethodGet, "/api/v1/alerts", nil)
	malformed.Header.Set("Authorization", token)
	if _, err := m.SessionFromRequest(malformed); !errors.Is(err, models.ErrNotAuthenticated) {
		t.Errorf("expected ErrNotAuthenticated for a bare token, got %v", err)
	}
}

func TestSession_Valid(t *testing.T) {
	var nilSession *Session
	if nilSession.Valid() {
		t.Error("expected nil session invalid")
	}

	expired := &Session{UserID: "u", ExpiresAt: time.Now().Add(-time.Second)}
	if expired.Valid() {
		t.Error("expected expired session invalid")
	}
}

func TestPassword_HashAndCheck(t *testing.T) {
	hash, err := HashPassword("correct horse battery")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}

	if !CheckPassword(hash, "correct horse battery") {
		t.Error("expected the right password to verify")
	}
	if CheckPassword(hash, "wrong password") {
		t.Error("expected the wrong password to fail")
	}

	if _, err := HashPassword("short"); err == nil {
		t.Error("expected an error for a password under the minimum length")
	}
}
