package auth

import (
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"CampusResponseAPI/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Session is the caller identity attached to an authenticated request.
type Session struct {
	UserID    string
	Role      string
	TokenID   string
	ExpiresAt time.Time
}

// Valid reports whether the session can still authorize actions.
func (s *Session) Valid() bool {
	return s != nil && time.Now().Before(s.ExpiresAt)
}

type sessionClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Manager issues and validates session tokens. Tokens are stateless JWTs,
// but sign-out is honored through an in-memory revocation set keyed by token
// id, pruned as entries expire.
type Manager struct {
	secret []byte
	expiry time.Duration

	mu      sync.Mutex
	revoked map[string]time.Time
}

func NewManager(secret string, expirationHours int) *Manager {
	return &Manager{
		secret:  []byte(secret),
		expiry:  time.Duration(expirationHours) * time.Hour,
		revoked: make(map[string]time.Time),
	}
}

// IssueToken creates a signed session token for the given profile.
func (m *Manager) IssueToken(profile *models.Profile) (string, error) {
	now := time.Now()
	claims := sessionClaims{
		Role: profile.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   profile.ID,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.expiry)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}

	return signed, nil
}

// ParseToken validates a token and returns its session, or
// models.ErrNotAuthenticated for anything invalid, expired or revoked.
func (m *Manager) ParseToken(tokenString string) (*Session, error) {
	token, err := jwt.ParseWithClaims(tokenString, &sessionClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, models.ErrNotAuthenticated
	}

	claims, ok := token.Claims.(*sessionClaims)
	if !ok || claims.Subject == "" {
		return nil, models.ErrNotAuthenticated
	}

	if m.isRevoked(claims.ID) {
		return nil, models.ErrNotAuthenticated
	}

	return &Session{
		UserID:    claims.Subject,
		Role:      claims.Role,
		TokenID:   claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// SessionFromRequest extracts the bearer token session from an HTTP request.
func (m *Manager) SessionFromRequest(r *http.Request) (*Session, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return nil, models.ErrNotAuthenticated
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return nil, models.ErrNotAuthenticated
	}

	return m.ParseToken(parts[1])
}

// Revoke invalidates a live session so sign-out takes effect before the
// token's natural expiry.
func (m *Manager) Revoke(session *Session) {
	if session == nil || session.TokenID == "" {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	for id, exp := range m.revoked {
		if now.After(exp) {
			delete(m.revoked, id)
		}
	}

	m.revoked[session.TokenID] = session.ExpiresAt
}

func (m *Manager) isRevoked(tokenID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	exp, ok := m.revoked[tokenID]
	if !ok {
		return false
	}
	if time.Now().After(exp) {
		delete(m.revoked, tokenID)
		return false
	}
	return true
}
