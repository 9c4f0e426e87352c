package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/wordgym/wordgym-api/internal/domain"
	"github.com/wordgym/wordgym-api/internal/platform/logger"
	"github.com/wordgym/wordgym-api/internal/store"
)

// PostgresSessionStore implements the store.SessionStore interface using a
// PostgreSQL database as the storage backend.
type PostgresSessionStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresSessionStore creates a new PostgreSQL implementation of the
// SessionStore interface.
func NewPostgresSessionStore(db store.DBTX, logger *slog.Logger) *PostgresSessionStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresSessionStore{
		db:     db,
		logger: logger.With(slog.String("component", "session_store")),
	}
}

var _ store.SessionStore = (*PostgresSessionStore)(nil)

// WithTx implements store.SessionStore.WithTx
func (s *PostgresSessionStore) WithTx(tx *sql.Tx) store.SessionStore {
	return &PostgresSessionStore{db: tx, logger: s.logger}
}

// Record implements store.SessionStore.Record
// Recording on an existing date accumulates into that row.
func (s *PostgresSessionStore) Record(ctx context.Context, userID uuid.UUID, date string, cardsStudied int) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO study_sessions (user_id, date, cards_studied)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, date) DO UPDATE
		SET cards_studied = study_sessions.cards_studied + EXCLUDED.cards_studied
	`, userID, date, cardsStudied)
	if err != nil {
		log.Error("failed to record study session",
			slog.String("error", err.Error()),
			slog.String("date", date))
		return MapError(err)
	}
	return nil
}

// Get implements store.SessionStore.Get
func (s *PostgresSessionStore) Get(ctx context.Context, userID uuid.UUID, date string) (int, error) {
	var cards int
	err := s.db.QueryRowContext(ctx, `
		SELECT cards_studied FROM study_sessions
		WHERE user_id = $1 AND date = $2
	`, userID, date).Scan(&cards)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, MapError(err)
	}
	return cards, nil
}

// GetRange implements store.SessionStore.GetRange
func (s *PostgresSessionStore) GetRange(ctx context.Context, userID uuid.UUID, from, to string) ([]domain.StudySession, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT date, cards_studied FROM study_sessions
		WHERE user_id = $1 AND date >= $2 AND date <= $3
		ORDER BY date ASC
	`, userID, from, to)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	sessions := []domain.StudySession{}
	for rows.Next() {
		var session domain.StudySession
		if err := rows.Scan(&session.Date, &session.CardsStudied); err != nil {
			return nil, MapError(err)
		}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return sessions, nil
}

// DeleteAllForUser implements store.SessionStore.DeleteAllForUser
func (s *PostgresSessionStore) DeleteAllForUser(ctx context.Context, userID uuid.UUID) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM study_sessions WHERE user_id = $1`, userID); err != nil {
		return MapError(err)
	}
	return nil
}
