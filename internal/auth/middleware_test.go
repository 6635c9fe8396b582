package auth_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rowanleaf/service-accounts-go/internal/auth"
	"github.com/rowanleaf/service-accounts-go/internal/user/memory"
)

func newGuardedHandler(t *testing.T, tokens *auth.TokenService, repo *memory.UserRepo) (http.Handler, *int64) {
	t.Helper()
	var seenID int64
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := auth.UserID(r.Context())
		require.True(t, ok, "guard must attach the user id")
		seenID = id
		w.WriteHeader(http.StatusOK)
	})
	guard := auth.Guard(tokens, repo, zap.NewNop().Sugar())
	return guard(next), &seenID
}

func TestGuard_ValidToken(t *testing.T) {
	repo := memory.NewUserRepo()
	tokens := auth.NewTokenService([]byte("secret"), time.Hour)

	u, err := repo.Create(context.Background(), "a@x.com", "hash")
	require.NoError(t, err)
	tok, err := tokens.Issue(u.ID)
	require.NoError(t, err)

	handler, seenID := newGuardedHandler(t, tokens, repo)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, u.ID, *seenID)
}

func TestGuard_Rejections(t *testing.T) {
	repo := memory.NewUserRepo()
	tokens := auth.NewTokenService([]byte("secret"), time.Hour)
	handler, _ := newGuardedHandler(t, tokens, repo)

	expired := auth.NewTokenService([]byte("secret"), -time.Hour)
	expiredTok, err := expired.Issue(1)
	require.NoError(t, err)

	otherKey := auth.NewTokenService([]byte("other"), time.Hour)
	forgedTok, err := otherKey.Issue(1)
	require.NoError(t, err)

	// subject exists in no store
	danglingTok, err := tokens.Issue(424242)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"wrong scheme", "Basic dXNlcjpwdw=="},
		{"empty credential", "Bearer "},
		{"garbage token", "Bearer not.a.jwt"},
		{"expired token", "Bearer " + expiredTok},
		{"wrong signing key", "Bearer " + forgedTok},
		{"unknown subject", "Bearer " + danglingTok},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestGuard_CaseInsensitiveScheme(t *testing.T) {
	repo := memory.NewUserRepo()
	tokens := auth.NewTokenService([]byte("secret"), time.Hour)

	u, err := repo.Create(context.Background(), "a@x.com", "hash")
	require.NoError(t, err)
	tok, err := tokens.Issue(u.ID)
	require.NoError(t, err)

	handler, _ := newGuardedHandler(t, tokens, repo)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "bearer "+tok)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}
