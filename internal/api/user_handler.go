package api

import (
	"context"
	"database/sql"
	"errors"
	"net/http"

	"github.com/wordgym/wordgym-api/internal/api/shared"
	"github.com/wordgym/wordgym-api/internal/store"
)

// UserHandler handles user profile API requests, including account
// deletion, which cascades to the user's decks, sessions and streak.
type UserHandler struct {
	userStore    store.UserStore
	deckStore    store.DeckStore
	streakStore  store.StreakStore
	sessionStore store.SessionStore
	txRunner     store.TxRunner
}

// NewUserHandler creates a new UserHandler with the given dependencies.
func NewUserHandler(
	userStore store.UserStore,
	deckStore store.DeckStore,
	streakStore store.StreakStore,
	sessionStore store.SessionStore,
	txRunner store.TxRunner,
) *UserHandler {
	return &UserHandler{
		userStore:    userStore,
		deckStore:    deckStore,
		streakStore:  streakStore,
		sessionStore: sessionStore,
		txRunner:     txRunner,
	}
}

// Me handles GET /api/user/me.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	user, err := h.userStore.GetByID(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, UserResponse{User: *user})
}

// Sync handles POST /api/user/sync: the device pushes profile details.
// Empty fields leave the stored value untouched.
func (h *UserHandler) Sync(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	var req SyncUserRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.userStore.GetByID(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	if req.Email != "" {
		user.Email = req.Email
	}
	if req.Name != "" {
		user.Name = req.Name
	}
	if req.ImageURL != "" {
		user.ImageURL = req.ImageURL
	}

	if err := h.userStore.Update(r.Context(), user); err != nil {
		if errors.Is(err, store.ErrEmailExists) {
			shared.RespondWithError(w, r, http.StatusConflict, "Email already exists")
			return
		}
		HandleAPIError(w, r, err, "Failed to update profile")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, UserResponse{User: *user})
}

// Delete handles DELETE /api/user/me: removes the account and everything
// it owns in one transaction.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	err := h.txRunner.RunInTransaction(r.Context(), func(ctx context.Context, tx *sql.Tx) error {
		if err := h.deckStore.WithTx(tx).DeleteAllForUser(ctx, userID); err != nil {
			return err
		}
		if err := h.sessionStore.WithTx(tx).DeleteAllForUser(ctx, userID); err != nil {
			return err
		}
		if err := h.streakStore.WithTx(tx).Delete(ctx, userID); err != nil {
			return err
		}
		return h.userStore.WithTx(tx).Delete(ctx, userID)
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to delete account")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
