package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/dcode-github/cozycorner/apperrors"
	"github.com/dcode-github/cozycorner/logger"
	"github.com/dcode-github/cozycorner/models"
)

type contextKey string

const sessionKey contextKey = "session"

// Authenticator resolves a bearer token into a session.
type Authenticator interface {
	Authenticate(token string) (models.Session, error)
}

// Auth rejects requests without a valid bearer token and stores the
// caller's session in the request context.
func Auth(a Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log := logger.FromContext(r.Context())

			tokenHeader := r.Header.Get("Authorization")
			if tokenHeader == "" {
				log.Debug("missing authorization header", "method", r.Method, "path", r.URL.Path)
				writeMessage(w, http.StatusUnauthorized, "Missing Authorization header")
				return
			}

			tokenParts := strings.Split(tokenHeader, " ")
			if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
				log.Debug("invalid authorization header", "method", r.Method, "path", r.URL.Path)
				writeMessage(w, http.StatusUnauthorized, "Invalid Authorization header format")
				return
			}

			session, err := a.Authenticate(tokenParts[1])
			if err != nil {
				log.Debug("token rejected", "error", err)
				writeMessage(w, http.StatusUnauthorized, apperrors.From(err).Message)
				return
			}

			ctx := WithSession(r.Context(), session)
			ctx = logger.WithUserID(ctx, session.ID.Hex())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRoles must run after Auth.
func RequireRoles(roles ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, ok := SessionFrom(r.Context())
			if !ok {
				writeMessage(w, http.StatusUnauthorized, "Authentication required")
				return
			}
			if !session.HasRole(roles...) {
				writeMessage(w, http.StatusForbidden, "Access denied")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func WithSession(ctx context.Context, s models.Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

func SessionFrom(ctx context.Context) (models.Session, bool) {
	s, ok := ctx.Value(sessionKey).(models.Session)
	return s, ok
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"message": message})
}
