package api

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wordgym/wordgym-api/internal/config"
	"github.com/wordgym/wordgym-api/internal/platform/memstore"
	"github.com/wordgym/wordgym-api/internal/service/auth"
)

func newAuthRouter(t *testing.T, mem *memstore.Store) (http.Handler, auth.JWTService) {
	t.Helper()

	jwtService, err := auth.NewJWTService(config.AuthConfig{
		JWTSecret:                   "test-secret-that-is-long-enough-for-hmac",
		TokenLifetimeMinutes:        60,
		RefreshTokenLifetimeMinutes: 10080,
		BcryptCost:                  4,
	})
	require.NoError(t, err)

	handler := NewAuthHandler(mem.Users(), jwtService, auth.NewBcryptVerifier())

	r := chi.NewRouter()
	r.Post("/api/auth/register", handler.Register)
	r.Post("/api/auth/login", handler.Login)
	r.Post("/api/auth/refresh", handler.Refresh)
	return r, jwtService
}

func TestRegisterLoginRefresh(t *testing.T) {
	t.Parallel()

	mem := memstore.New()
	router, jwtService := newAuthRouter(t, mem)

	// Register
	w := doJSON(t, router, http.MethodPost, "/api/auth/register", RegisterRequest{
		Email:    "ana@example.com",
		Password: "correct horse battery",
		Name:     "Ana",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var registered AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &registered))
	assert.NotEqual(t, uuid.Nil, registered.UserID)
	assert.NotEmpty(t, registered.Token)
	assert.NotEmpty(t, registered.RefreshToken)

	claims, err := jwtService.ValidateToken(context.Background(), registered.Token)
	require.NoError(t, err)
	assert.Equal(t, registered.UserID, claims.UserID)

	// Login with the same credentials
	w = doJSON(t, router, http.MethodPost, "/api/auth/login", LoginRequest{
		Email:    "ana@example.com",
		Password: "correct horse battery",
	})
	require.Equal(t, http.StatusOK, w.Code)
	var loggedIn AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &loggedIn))
	assert.Equal(t, registered.UserID, loggedIn.UserID)

	// Refresh rotates the pair
	w = doJSON(t, router, http.MethodPost, "/api/auth/refresh", RefreshRequest{
		RefreshToken: loggedIn.RefreshToken,
	})
	require.Equal(t, http.StatusOK, w.Code)
	var refreshed AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &refreshed))
	assert.Equal(t, registered.UserID, refreshed.UserID)
	assert.NotEmpty(t, refreshed.Token)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	t.Parallel()

	router, _ := newAuthRouter(t, memstore.New())

	req := RegisterRequest{Email: "dup@example.com", Password: "a long enough password"}
	w := doJSON(t, router, http.MethodPost, "/api/auth/register", req)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/auth/register", req)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestRegisterRejectsWeakInput(t *testing.T) {
	t.Parallel()

	router, _ := newAuthRouter(t, memstore.New())

	tests := []struct {
		name string
		req  RegisterRequest
	}{
		{"short password", RegisterRequest{Email: "a@example.com", Password: "short"}},
		{"bad email", RegisterRequest{Email: "not-an-email", Password: "a long enough password"}},
		{"missing email", RegisterRequest{Password: "a long enough password"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := doJSON(t, router, http.MethodPost, "/api/auth/register", tc.req)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	t.Parallel()

	router, _ := newAuthRouter(t, memstore.New())

	w := doJSON(t, router, http.MethodPost, "/api/auth/register", RegisterRequest{
		Email: "ana@example.com", Password: "correct horse battery",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	wrongPassword := doJSON(t, router, http.MethodPost, "/api/auth/login", LoginRequest{
		Email: "ana@example.com", Password: "wrong password entirely",
	})
	unknownUser := doJSON(t, router, http.MethodPost, "/api/auth/login", LoginRequest{
		Email: "ghost@example.com", Password: "correct horse battery",
	})

	require.Equal(t, http.StatusUnauthorized, wrongPassword.Code)
	require.Equal(t, http.StatusUnauthorized, unknownUser.Code)

	var a, b map[string]any
	require.NoError(t, json.Unmarshal(wrongPassword.Body.Bytes(), &a))
	require.NoError(t, json.Unmarshal(unknownUser.Body.Bytes(), &b))
	assert.Equal(t, a["error"], b["error"])
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	t.Parallel()

	router, jwtService := newAuthRouter(t, memstore.New())

	w := doJSON(t, router, http.MethodPost, "/api/auth/register", RegisterRequest{
		Email: "ana@example.com", Password: "correct horse battery",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var registered AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &registered))

	// An access token must not pass as a refresh token.
	w = doJSON(t, router, http.MethodPost, "/api/auth/refresh", RefreshRequest{
		RefreshToken: registered.Token,
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	_, err := jwtService.ValidateRefreshToken(context.Background(), registered.Token)
	assert.ErrorIs(t, err, auth.ErrWrongTokenType)
}

func TestRegisterStoresNoPlaintextPassword(t *testing.T) {
	t.Parallel()

	mem := memstore.New()
	router, _ := newAuthRouter(t, mem)

	w := doJSON(t, router, http.MethodPost, "/api/auth/register", RegisterRequest{
		Email: "ana@example.com", Password: "correct horse battery",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	stored, err := mem.Users().GetByEmail(context.Background(), "ana@example.com")
	require.NoError(t, err)
	assert.Empty(t, stored.Password)
	assert.NotEmpty(t, stored.HashedPassword)
	assert.NotEqual(t, "correct horse battery", stored.HashedPassword)
}
