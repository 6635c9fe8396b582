package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/rowanleaf/service-accounts-go/internal/user"
)

type ctxKey int

const userIDKey ctxKey = iota

// UserID returns the authenticated user id the guard attached to the
// request context.
func UserID(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(userIDKey).(int64)
	return id, ok
}

// Guard returns middleware that rejects requests without a valid bearer
// token before the protected handler runs. On success the subject's user id
// is attached to the request context; the subject must still resolve to an
// existing user.
func Guard(tokens *TokenService, repo user.Repository, logger *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := bearerToken(r)
			if !ok {
				unauthorized(w)
				return
			}
			id, err := tokens.Validate(raw)
			if err != nil {
				logger.Debugw("token rejected", "path", r.URL.Path)
				unauthorized(w)
				return
			}
			if _, err := repo.GetByID(r.Context(), id); err != nil {
				if errors.Is(err, user.ErrUnavailable) {
					writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "temporarily unavailable"})
					return
				}
				// deleted subject or store error: the token proves nothing
				unauthorized(w)
				return
			}
			ctx := context.WithValue(r.Context(), userIDKey, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// bearerToken extracts the credential from the Authorization header.
func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	if h == "" || !strings.HasPrefix(strings.ToLower(h), "bearer ") {
		return "", false
	}
	token := strings.TrimSpace(h[len("bearer "):])
	return token, token != ""
}

func unauthorized(w http.ResponseWriter) {
	writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
