package router_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/rowanleaf/service-accounts-go/internal/auth"
	"github.com/rowanleaf/service-accounts-go/internal/router"
	"github.com/rowanleaf/service-accounts-go/internal/user"
	"github.com/rowanleaf/service-accounts-go/internal/user/memory"
)

// newAPI wires the full stack on the in-memory store.
func newAPI(t *testing.T) http.Handler {
	t.Helper()
	logger := zap.NewNop().Sugar()
	repo := memory.NewUserRepo()
	hasher := user.BcryptHasher{Cost: bcrypt.MinCost}
	tokens := auth.NewTokenService([]byte("test-secret"), time.Hour)

	authHandler := auth.NewHandler(auth.NewService(repo, hasher, tokens), logger)
	userHandler := user.NewHandler(user.NewService(repo, hasher), logger)
	guard := auth.Guard(tokens, repo, logger)

	return router.RegisterRoutes(logger, authHandler, userHandler, guard)
}

func doJSON(t *testing.T, h http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestHealth(t *testing.T) {
	api := newAPI(t)
	rec := doJSON(t, api, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decode(t, rec)["status"])
}

func TestRegisterLoginProfileFlow(t *testing.T) {
	api := newAPI(t)
	creds := map[string]string{"email": "a@x.com", "password": "secret123"}

	// register
	rec := doJSON(t, api, http.MethodPost, "/api/v1/auth/register", "", creds)
	require.Equal(t, http.StatusCreated, rec.Code)
	body := decode(t, rec)
	require.NotEmpty(t, body["token"])
	u := body["user"].(map[string]any)
	assert.Equal(t, "a@x.com", u["email"])
	assert.NotContains(t, u, "password_hash")
	assert.NotContains(t, rec.Body.String(), "password")

	// duplicate register conflicts
	rec = doJSON(t, api, http.MethodPost, "/api/v1/auth/register", "", creds)
	assert.Equal(t, http.StatusConflict, rec.Code)

	// wrong password
	rec = doJSON(t, api, http.MethodPost, "/api/v1/auth/login", "",
		map[string]string{"email": "a@x.com", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// unknown email fails the same way
	rec = doJSON(t, api, http.MethodPost, "/api/v1/auth/login", "",
		map[string]string{"email": "ghost@x.com", "password": "secret123"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// correct login
	rec = doJSON(t, api, http.MethodPost, "/api/v1/auth/login", "", creds)
	require.Equal(t, http.StatusOK, rec.Code)
	token := decode(t, rec)["token"].(string)
	require.NotEmpty(t, token)

	// profile resolves self from the token
	rec = doJSON(t, api, http.MethodGet, "/api/v1/profile", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	profile := decode(t, rec)["user"].(map[string]any)
	assert.Equal(t, "a@x.com", profile["email"])
	assert.NotContains(t, profile, "password_hash")
}

func TestInvalidRegistrationInput(t *testing.T) {
	api := newAPI(t)

	tests := []map[string]string{
		{"email": "", "password": "secret123"},
		{"email": "nope", "password": "secret123"},
		{"email": "a@x.com", "password": "short"},
	}
	for _, creds := range tests {
		rec := doJSON(t, api, http.MethodPost, "/api/v1/auth/register", "", creds)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "creds=%v", creds)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	api := newAPI(t)

	paths := []struct{ method, path string }{
		{http.MethodGet, "/api/v1/profile"},
		{http.MethodGet, "/api/v1/users"},
		{http.MethodGet, "/api/v1/users/1"},
		{http.MethodPut, "/api/v1/users/1"},
		{http.MethodDelete, "/api/v1/users/1"},
	}
	for _, p := range paths {
		rec := doJSON(t, api, p.method, p.path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "%s %s", p.method, p.path)
	}
}

func TestUserCRUD(t *testing.T) {
	api := newAPI(t)

	// seed a few users, keep the first one's token
	var token string
	for i := 0; i < 3; i++ {
		rec := doJSON(t, api, http.MethodPost, "/api/v1/auth/register", "",
			map[string]string{"email": fmt.Sprintf("u%d@x.com", i), "password": "secret123"})
		require.Equal(t, http.StatusCreated, rec.Code)
		if token == "" {
			token = decode(t, rec)["token"].(string)
		}
	}

	// list
	rec := doJSON(t, api, http.MethodGet, "/api/v1/users?page=1&page_size=2", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	users := decode(t, rec)["users"].([]any)
	assert.Len(t, users, 2)

	// get by id
	first := users[0].(map[string]any)
	id := int64(first["id"].(float64))
	rec = doJSON(t, api, http.MethodGet, fmt.Sprintf("/api/v1/users/%d", id), token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	// unknown id
	rec = doJSON(t, api, http.MethodGet, "/api/v1/users/9999", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// update email
	rec = doJSON(t, api, http.MethodPut, fmt.Sprintf("/api/v1/users/%d", id), token,
		map[string]string{"email": "renamed@x.com"})
	require.Equal(t, http.StatusOK, rec.Code)
	updated := decode(t, rec)["user"].(map[string]any)
	assert.Equal(t, "renamed@x.com", updated["email"])

	// update onto a taken email conflicts
	rec = doJSON(t, api, http.MethodPut, fmt.Sprintf("/api/v1/users/%d", id), token,
		map[string]string{"email": "u1@x.com"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	// delete another user, then the id is gone
	rec = doJSON(t, api, http.MethodDelete, "/api/v1/users/3", token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = doJSON(t, api, http.MethodDelete, "/api/v1/users/3", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRequestIDHeader(t *testing.T) {
	api := newAPI(t)
	rec := doJSON(t, api, http.MethodGet, "/health", "", nil)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))

	// a caller-supplied id is echoed back
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-Id", "caller-id")
	rec2 := httptest.NewRecorder()
	api.ServeHTTP(rec2, req)
	assert.Equal(t, "caller-id", rec2.Header().Get("X-Request-Id"))
}

func TestSecurityHeaders(t *testing.T) {
	api := newAPI(t)
	rec := doJSON(t, api, http.MethodGet, "/health", "", nil)
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
}
