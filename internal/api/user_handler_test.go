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

	"github.com/wordgym/wordgym-api/internal/api/shared"
	"github.com/wordgym/wordgym-api/internal/domain"
	"github.com/wordgym/wordgym-api/internal/platform/memstore"
	"github.com/wordgym/wordgym-api/internal/store"
)

func newUserRouter(mem *memstore.Store, userID uuid.UUID) http.Handler {
	handler := NewUserHandler(mem.Users(), mem.Decks(), mem.Streaks(), mem.Sessions(), mem.Runner())

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := context.WithValue(req.Context(), shared.UserIDContextKey, userID)
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	r.Get("/api/user/me", handler.Me)
	r.Post("/api/user/sync", handler.Sync)
	r.Delete("/api/user/me", handler.Delete)
	return r
}

func seedUser(t *testing.T, mem *memstore.Store, email string) uuid.UUID {
	t.Helper()

	user, err := domain.NewUser(email, "a long enough password")
	require.NoError(t, err)
	require.NoError(t, mem.Users().Create(context.Background(), user))
	return user.ID
}

func TestUserMe(t *testing.T) {
	t.Parallel()

	mem := memstore.New()
	userID := seedUser(t, mem, "ana@example.com")
	router := newUserRouter(mem, userID)

	w := doJSON(t, router, http.MethodGet, "/api/user/me", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp UserResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, userID, resp.User.ID)
	assert.Equal(t, "ana@example.com", resp.User.Email)
	assert.Empty(t, resp.User.HashedPassword)
}

func TestUserSyncUpdatesProfile(t *testing.T) {
	t.Parallel()

	mem := memstore.New()
	userID := seedUser(t, mem, "ana@example.com")
	router := newUserRouter(mem, userID)

	w := doJSON(t, router, http.MethodPost, "/api/user/sync", SyncUserRequest{
		Name:     "Ana",
		ImageURL: "https://cdn.example.com/ana.png",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp UserResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Ana", resp.User.Name)
	assert.Equal(t, "https://cdn.example.com/ana.png", resp.User.ImageURL)
	// Email wasn't sent, so it stays.
	assert.Equal(t, "ana@example.com", resp.User.Email)
}

func TestUserSyncRejectsTakenEmail(t *testing.T) {
	t.Parallel()

	mem := memstore.New()
	seedUser(t, mem, "taken@example.com")
	userID := seedUser(t, mem, "ana@example.com")
	router := newUserRouter(mem, userID)

	w := doJSON(t, router, http.MethodPost, "/api/user/sync", SyncUserRequest{
		Email: "taken@example.com",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestUserDeleteCascades(t *testing.T) {
	t.Parallel()

	mem := memstore.New()
	userID := seedUser(t, mem, "ana@example.com")
	router := newUserRouter(mem, userID)

	ctx := context.Background()
	deck, err := domain.NewDeck("Spanish")
	require.NoError(t, err)
	require.NoError(t, mem.Decks().Save(ctx, userID, deck))
	require.NoError(t, mem.Streaks().Save(ctx, userID, &domain.StreakData{CurrentStreak: 1, BestStreak: 1, LastStudyDate: "2026-08-29"}))
	require.NoError(t, mem.Sessions().Record(ctx, userID, "2026-08-29", 5))

	w := doJSON(t, router, http.MethodDelete, "/api/user/me", nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	_, err = mem.Users().GetByID(ctx, userID)
	assert.ErrorIs(t, err, store.ErrUserNotFound)

	decks, err := mem.Decks().GetAll(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, decks)

	_, err = mem.Streaks().Get(ctx, userID)
	assert.ErrorIs(t, err, store.ErrStreakNotFound)

	count, err := mem.Sessions().Get(ctx, userID, "2026-08-29")
	require.NoError(t, err)
	assert.Zero(t, count)
}
