package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/wordgym/wordgym-api/internal/domain"
)

// DeckStore defines the interface for user-scoped deck persistence on the
// remote side. A deck is stored together with its cards; card order is
// preserved (newest first).
type DeckStore interface {
	// GetAll retrieves every deck owned by the user, sorted by updatedAt
	// descending. Returns an empty slice when the user has no decks.
	GetAll(ctx context.Context, userID uuid.UUID) ([]domain.Deck, error)

	// Get retrieves a single deck by ID.
	// Returns ErrDeckNotFound if the deck does not exist for this user.
	Get(ctx context.Context, userID uuid.UUID, deckID string) (*domain.Deck, error)

	// Save upserts a deck and replaces its card set. The deck must be valid
	// according to domain rules; returns ErrInvalidEntity wrapping the
	// validation error otherwise.
	//
	// When saving several decks as one sync batch, run each Save against a
	// transaction-scoped store (WithTx) inside store.RunInTransaction so the
	// batch commits all-or-nothing.
	Save(ctx context.Context, userID uuid.UUID, deck *domain.Deck) error

	// Delete removes a deck and, by cascade, its cards.
	// Returns false (and no error) if the deck did not exist.
	Delete(ctx context.Context, userID uuid.UUID, deckID string) (bool, error)

	// DeleteAllForUser removes every deck owned by the user. Used by
	// account deletion.
	DeleteAllForUser(ctx context.Context, userID uuid.UUID) error

	// WithTx returns a DeckStore bound to the given transaction.
	WithTx(tx *sql.Tx) DeckStore
}

// StreakStore defines the interface for the per-user streak singleton.
type StreakStore interface {
	// Get retrieves the user's streak record.
	// Returns ErrStreakNotFound when the user has never synced a streak;
	// callers respond with defaults rather than an error.
	Get(ctx context.Context, userID uuid.UUID) (*domain.StreakData, error)

	// Save upserts the user's streak record.
	Save(ctx context.Context, userID uuid.UUID, streak *domain.StreakData) error

	// Delete removes the user's streak record if present.
	Delete(ctx context.Context, userID uuid.UUID) error

	// WithTx returns a StreakStore bound to the given transaction.
	WithTx(tx *sql.Tx) StreakStore
}
