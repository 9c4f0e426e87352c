package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/wordgym/wordgym-api/internal/domain"
)

// SessionStore defines the interface for per-day study session counters.
// A user has at most one row per date; recording on an existing date
// accumulates into it.
type SessionStore interface {
	// Record adds cardsStudied to the user's counter for the given date
	// ("YYYY-MM-DD"), creating the row if absent.
	Record(ctx context.Context, userID uuid.UUID, date string, cardsStudied int) error

	// Get returns the cards studied on the given date, 0 when no row exists.
	Get(ctx context.Context, userID uuid.UUID, date string) (int, error)

	// GetRange returns sessions with from <= date <= to, sorted by date
	// ascending. Dates with no study activity are absent from the result.
	GetRange(ctx context.Context, userID uuid.UUID, from, to string) ([]domain.StudySession, error)

	// DeleteAllForUser removes every session row owned by the user.
	DeleteAllForUser(ctx context.Context, userID uuid.UUID) error

	// WithTx returns a SessionStore bound to the given transaction.
	WithTx(tx *sql.Tx) SessionStore
}
