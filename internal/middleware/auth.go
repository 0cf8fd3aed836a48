package middleware

import (
	"context"
	"net/http"

	"CampusResponseAPI/internal/auth"
	"CampusResponseAPI/internal/logger"
)

type contextKey string

const sessionKey contextKey = "session"

// SessionFromContext returns the authenticated session placed on the request
// by RequireAuth, or nil for unauthenticated requests.
func SessionFromContext(ctx context.Context) *auth.Session {
	session, _ := ctx.Value(sessionKey).(*auth.Session)
	return session
}

// RequireAuth rejects requests without a valid bearer session and attaches
// the session to the request context.
func RequireAuth(manager *auth.Manager, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, err := manager.SessionFromRequest(r)
			if err != nil {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"error": "Not authenticated"}`))
				return
			}

			ctx := context.WithValue(r.Context(), sessionKey, session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole gates a route on the session's role. Must run after
// RequireAuth.
func RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session := SessionFromContext(r.Context())
			if session == nil || session.Role != role {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				w.Write([]byte(`{"error": "Insufficient role"}`))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
