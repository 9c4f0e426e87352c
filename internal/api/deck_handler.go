package api

import (
	"context"
	"database/sql"
	"net/http"

	"github.com/wordgym/wordgym-api/internal/api/shared"
	"github.com/wordgym/wordgym-api/internal/domain"
	"github.com/wordgym/wordgym-api/internal/store"
	syncengine "github.com/wordgym/wordgym-api/internal/sync"
)

// DeckHandler handles deck and card API requests, including the sync
// endpoint that merges a device's deck set into the remote store.
type DeckHandler struct {
	deckStore store.DeckStore
	txRunner  store.TxRunner
}

// NewDeckHandler creates a new DeckHandler with the given dependencies.
func NewDeckHandler(deckStore store.DeckStore, txRunner store.TxRunner) *DeckHandler {
	return &DeckHandler{
		deckStore: deckStore,
		txRunner:  txRunner,
	}
}

// List handles GET /api/decks.
func (h *DeckHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	decks, err := h.deckStore.GetAll(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list decks")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, DecksResponse{Decks: decks})
}

// Get handles GET /api/decks/{deckID}.
func (h *DeckHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	deckID, ok := requirePathParam(w, r, "deckID")
	if !ok {
		return
	}

	deck, err := h.deckStore.Get(r.Context(), userID, deckID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, DeckResponse{Deck: *deck})
}

// Create handles POST /api/decks.
func (h *DeckHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	var req CreateDeckRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	deck, err := domain.NewDeck(req.Name)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	if err := h.deckStore.Save(r.Context(), userID, deck); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, DeckResponse{Deck: *deck})
}

// Update handles PUT /api/decks/{deckID}. Only the fields present in the
// body change.
func (h *DeckHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	deckID, ok := requirePathParam(w, r, "deckID")
	if !ok {
		return
	}
	var req UpdateDeckRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	deck, err := h.deckStore.Get(r.Context(), userID, deckID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	if req.Name != nil {
		if err := domain.ValidateDeckName(*req.Name); err != nil {
			HandleAPIError(w, r, err, "")
			return
		}
		deck.Name = *req.Name
	}
	if req.IsFavorite != nil {
		deck.IsFavorite = *req.IsFavorite
	}
	deck.Touch()

	if err := h.deckStore.Save(r.Context(), userID, deck); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, DeckResponse{Deck: *deck})
}

// Delete handles DELETE /api/decks/{deckID}.
func (h *DeckHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	deckID, ok := requirePathParam(w, r, "deckID")
	if !ok {
		return
	}

	deleted, err := h.deckStore.Delete(r.Context(), userID, deckID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to delete deck")
		return
	}
	if !deleted {
		HandleAPIError(w, r, store.ErrDeckNotFound, "")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Sync handles POST /api/decks/sync. The device's deck set merges into the
// remote set last-write-wins; staged winners persist inside one
// transaction so the batch commits all-or-nothing. The full merged set is
// returned for the device to adopt.
func (h *DeckHandler) Sync(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	var req SyncDecksRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	for i := range req.Decks {
		if err := req.Decks[i].Validate(); err != nil {
			HandleAPIError(w, r, err, "")
			return
		}
	}

	remote, err := h.deckStore.GetAll(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load decks")
		return
	}

	result := syncengine.MergeDecks(req.Decks, remote, domain.NowMillis())

	if len(result.Staged) > 0 {
		err = h.txRunner.RunInTransaction(r.Context(), func(ctx context.Context, tx *sql.Tx) error {
			decks := h.deckStore.WithTx(tx)
			for i := range result.Staged {
				if err := decks.Save(ctx, userID, &result.Staged[i]); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			HandleAPIError(w, r, err, "Failed to sync decks")
			return
		}
	}

	shared.RespondWithJSON(w, r, http.StatusOK, DecksResponse{Decks: result.Decks})
}

// CreateCard handles POST /api/decks/{deckID}/cards.
func (h *DeckHandler) CreateCard(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	deckID, ok := requirePathParam(w, r, "deckID")
	if !ok {
		return
	}
	var req CreateCardRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	card, err := domain.NewCard(req.Word, req.Translation)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	deck, err := h.deckStore.Get(r.Context(), userID, deckID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	deck.Cards = append([]domain.Card{*card}, deck.Cards...)
	deck.Touch()

	if err := h.deckStore.Save(r.Context(), userID, deck); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, CardResponse{Card: *card})
}

// UpdateCard handles PUT /api/decks/{deckID}/cards/{cardID}.
func (h *DeckHandler) UpdateCard(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	deckID, ok := requirePathParam(w, r, "deckID")
	if !ok {
		return
	}
	cardID, ok := requirePathParam(w, r, "cardID")
	if !ok {
		return
	}
	var req UpdateCardRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	if err := domain.ValidateCardText(req.Word, req.Translation); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	deck, err := h.deckStore.Get(r.Context(), userID, deckID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	i := deck.FindCard(cardID)
	if i < 0 {
		HandleAPIError(w, r, store.ErrCardNotFound, "")
		return
	}

	deck.Cards[i].Word = req.Word
	deck.Cards[i].Translation = req.Translation
	deck.Cards[i].UpdatedAt = domain.NowMillis()
	deck.Touch()

	if err := h.deckStore.Save(r.Context(), userID, deck); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, CardResponse{Card: deck.Cards[i]})
}

// DeleteCard handles DELETE /api/decks/{deckID}/cards/{cardID}.
func (h *DeckHandler) DeleteCard(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	deckID, ok := requirePathParam(w, r, "deckID")
	if !ok {
		return
	}
	cardID, ok := requirePathParam(w, r, "cardID")
	if !ok {
		return
	}

	deck, err := h.deckStore.Get(r.Context(), userID, deckID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	i := deck.FindCard(cardID)
	if i < 0 {
		HandleAPIError(w, r, store.ErrCardNotFound, "")
		return
	}

	deck.Cards = append(deck.Cards[:i], deck.Cards[i+1:]...)
	deck.Touch()

	if err := h.deckStore.Save(r.Context(), userID, deck); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
