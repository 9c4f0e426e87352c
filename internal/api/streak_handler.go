package api

import (
	"errors"
	"net/http"

	"github.com/wordgym/wordgym-api/internal/api/shared"
	"github.com/wordgym/wordgym-api/internal/domain"
	"github.com/wordgym/wordgym-api/internal/store"
	syncengine "github.com/wordgym/wordgym-api/internal/sync"
)

// StreakHandler handles streak API requests.
type StreakHandler struct {
	streakStore store.StreakStore
}

// NewStreakHandler creates a new StreakHandler with the given dependencies.
func NewStreakHandler(streakStore store.StreakStore) *StreakHandler {
	return &StreakHandler{streakStore: streakStore}
}

// Get handles GET /api/streak. A user who has never synced a streak gets
// the zero-value record; nothing is persisted by a read.
func (h *StreakHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	streak, err := h.streakStore.Get(r.Context(), userID)
	if err != nil {
		if errors.Is(err, store.ErrStreakNotFound) {
			shared.RespondWithJSON(w, r, http.StatusOK, StreakResponse{Streak: domain.StreakData{}})
			return
		}
		HandleAPIError(w, r, err, "Failed to load streak")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, StreakResponse{Streak: *streak})
}

// Sync handles POST /api/streak/sync: merges the device's streak with the
// stored one (max-wins) and returns the merged record.
func (h *StreakHandler) Sync(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	var req SyncStreakRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := req.Streak.Validate(); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	remote := domain.StreakData{}
	if stored, err := h.streakStore.Get(r.Context(), userID); err == nil {
		remote = *stored
	} else if !errors.Is(err, store.ErrStreakNotFound) {
		HandleAPIError(w, r, err, "Failed to load streak")
		return
	}

	merged := syncengine.MergeStreaks(req.Streak, remote, domain.NowMillis())
	if err := h.streakStore.Save(r.Context(), userID, &merged); err != nil {
		HandleAPIError(w, r, err, "Failed to sync streak")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, StreakResponse{Streak: merged})
}
