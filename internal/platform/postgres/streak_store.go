package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/wordgym/wordgym-api/internal/domain"
	"github.com/wordgym/wordgym-api/internal/platform/logger"
	"github.com/wordgym/wordgym-api/internal/store"
)

// PostgresStreakStore implements the store.StreakStore interface using a
// PostgreSQL database as the storage backend. Each user has at most one
// streak row.
type PostgresStreakStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresStreakStore creates a new PostgreSQL implementation of the
// StreakStore interface.
func NewPostgresStreakStore(db store.DBTX, logger *slog.Logger) *PostgresStreakStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresStreakStore{
		db:     db,
		logger: logger.With(slog.String("component", "streak_store")),
	}
}

var _ store.StreakStore = (*PostgresStreakStore)(nil)

// WithTx implements store.StreakStore.WithTx
func (s *PostgresStreakStore) WithTx(tx *sql.Tx) store.StreakStore {
	return &PostgresStreakStore{db: tx, logger: s.logger}
}

// Get implements store.StreakStore.Get
// Returns store.ErrStreakNotFound when the user has never studied.
func (s *PostgresStreakStore) Get(ctx context.Context, userID uuid.UUID) (*domain.StreakData, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var (
		streak        domain.StreakData
		lastStudyDate sql.NullString
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT current_streak, best_streak, last_study_date, updated_at
		FROM streak_data
		WHERE user_id = $1
	`, userID).Scan(&streak.CurrentStreak, &streak.BestStreak, &lastStudyDate, &streak.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrStreakNotFound
		}
		log.Error("failed to get streak data", slog.String("error", err.Error()))
		return nil, MapError(err)
	}

	streak.LastStudyDate = lastStudyDate.String
	return &streak, nil
}

// Save implements store.StreakStore.Save
func (s *PostgresStreakStore) Save(ctx context.Context, userID uuid.UUID, streak *domain.StreakData) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := streak.Validate(); err != nil {
		log.Warn("streak validation failed during save", slog.String("error", err.Error()))
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO streak_data (user_id, current_streak, best_streak, last_study_date, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id) DO UPDATE
		SET current_streak = EXCLUDED.current_streak,
		    best_streak = EXCLUDED.best_streak,
		    last_study_date = EXCLUDED.last_study_date,
		    updated_at = EXCLUDED.updated_at
	`, userID, streak.CurrentStreak, streak.BestStreak,
		nullString(streak.LastStudyDate), streak.UpdatedAt)
	if err != nil {
		log.Error("failed to save streak data", slog.String("error", err.Error()))
		return MapError(err)
	}

	return nil
}

// Delete implements store.StreakStore.Delete
// Deleting an absent record is not an error.
func (s *PostgresStreakStore) Delete(ctx context.Context, userID uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM streak_data WHERE user_id = $1
	`, userID)
	if err != nil {
		return MapError(err)
	}
	return nil
}
