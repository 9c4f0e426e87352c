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

// PostgresDeckStore implements the store.DeckStore interface using a
// PostgreSQL database as the storage backend. Decks and their cards live in
// separate tables; cards cascade-delete with their deck.
type PostgresDeckStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresDeckStore creates a new PostgreSQL implementation of the
// DeckStore interface. It accepts a database connection or transaction
// managed by the caller. If logger is nil, a default logger is used.
func NewPostgresDeckStore(db store.DBTX, logger *slog.Logger) *PostgresDeckStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresDeckStore{
		db:     db,
		logger: logger.With(slog.String("component", "deck_store")),
	}
}

// Ensure PostgresDeckStore implements store.DeckStore interface
var _ store.DeckStore = (*PostgresDeckStore)(nil)

// WithTx implements store.DeckStore.WithTx
func (s *PostgresDeckStore) WithTx(tx *sql.Tx) store.DeckStore {
	return &PostgresDeckStore{db: tx, logger: s.logger}
}

// deckRow is the typed shape of a decks table row. Row scanning goes
// through this struct before mapping to the domain entity so the boundary
// between storage and domain stays explicit.
type deckRow struct {
	ID         string
	Name       string
	IsFavorite bool
	CreatedAt  int64
	UpdatedAt  int64
}

// cardRow is the typed shape of a cards table row.
type cardRow struct {
	ID              string
	DeckID          string
	Word            string
	Translation     string
	LastRating      sql.NullString
	NextReviewLabel sql.NullString
	NextReviewAt    sql.NullInt64
	UpdatedAt       sql.NullInt64
}

func (r deckRow) toDomain() domain.Deck {
	return domain.Deck{
		ID:         r.ID,
		Name:       r.Name,
		Cards:      []domain.Card{},
		IsFavorite: r.IsFavorite,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}

func (r cardRow) toDomain() domain.Card {
	return domain.Card{
		ID:              r.ID,
		Word:            r.Word,
		Translation:     r.Translation,
		LastRating:      domain.Rating(r.LastRating.String),
		NextReviewLabel: r.NextReviewLabel.String,
		NextReviewAt:    r.NextReviewAt.Int64,
		UpdatedAt:       r.UpdatedAt.Int64,
	}
}

// GetAll implements store.DeckStore.GetAll
// Decks are returned sorted by updated_at descending with their cards in
// stored order (newest first).
func (s *PostgresDeckStore) GetAll(ctx context.Context, userID uuid.UUID) ([]domain.Deck, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, is_favorite, created_at, updated_at
		FROM decks
		WHERE user_id = $1
		ORDER BY updated_at DESC
	`, userID)
	if err != nil {
		log.Error("failed to query decks", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	decks := []domain.Deck{}
	index := map[string]int{}
	for rows.Next() {
		var r deckRow
		if err := rows.Scan(&r.ID, &r.Name, &r.IsFavorite, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, MapError(err)
		}
		index[r.ID] = len(decks)
		decks = append(decks, r.toDomain())
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	if len(decks) == 0 {
		return decks, nil
	}

	cardRows, err := s.db.QueryContext(ctx, `
		SELECT id, deck_id, word, translation, last_rating, next_review_label, next_review_date, updated_at
		FROM cards
		WHERE user_id = $1
		ORDER BY deck_id, position ASC
	`, userID)
	if err != nil {
		log.Error("failed to query cards", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() { _ = cardRows.Close() }()

	for cardRows.Next() {
		var r cardRow
		if err := cardRows.Scan(&r.ID, &r.DeckID, &r.Word, &r.Translation,
			&r.LastRating, &r.NextReviewLabel, &r.NextReviewAt, &r.UpdatedAt); err != nil {
			return nil, MapError(err)
		}
		if i, ok := index[r.DeckID]; ok {
			decks[i].Cards = append(decks[i].Cards, r.toDomain())
		}
	}
	if err := cardRows.Err(); err != nil {
		return nil, MapError(err)
	}

	return decks, nil
}

// Get implements store.DeckStore.Get
// Returns store.ErrDeckNotFound if the deck does not exist for this user.
func (s *PostgresDeckStore) Get(ctx context.Context, userID uuid.UUID, deckID string) (*domain.Deck, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var r deckRow
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, is_favorite, created_at, updated_at
		FROM decks
		WHERE user_id = $1 AND id = $2
	`, userID, deckID).Scan(&r.ID, &r.Name, &r.IsFavorite, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("deck not found", slog.String("deck_id", deckID))
			return nil, store.ErrDeckNotFound
		}
		log.Error("failed to get deck",
			slog.String("error", err.Error()),
			slog.String("deck_id", deckID))
		return nil, MapError(err)
	}

	deck := r.toDomain()

	cardRows, err := s.db.QueryContext(ctx, `
		SELECT id, deck_id, word, translation, last_rating, next_review_label, next_review_date, updated_at
		FROM cards
		WHERE user_id = $1 AND deck_id = $2
		ORDER BY position ASC
	`, userID, deckID)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = cardRows.Close() }()

	for cardRows.Next() {
		var cr cardRow
		if err := cardRows.Scan(&cr.ID, &cr.DeckID, &cr.Word, &cr.Translation,
			&cr.LastRating, &cr.NextReviewLabel, &cr.NextReviewAt, &cr.UpdatedAt); err != nil {
			return nil, MapError(err)
		}
		deck.Cards = append(deck.Cards, cr.toDomain())
	}
	if err := cardRows.Err(); err != nil {
		return nil, MapError(err)
	}

	return &deck, nil
}

// Save implements store.DeckStore.Save
// It upserts the deck row and replaces the deck's card set in stored order.
// When the store holds a raw connection the statements run inside their own
// transaction; a WithTx store joins the caller's transaction instead.
func (s *PostgresDeckStore) Save(ctx context.Context, userID uuid.UUID, deck *domain.Deck) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := deck.Validate(); err != nil {
		log.Warn("deck validation failed during save",
			slog.String("error", err.Error()),
			slog.String("deck_id", deck.ID))
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	if db, ok := s.db.(*sql.DB); ok {
		return store.RunInTransaction(ctx, db, func(ctx context.Context, tx *sql.Tx) error {
			return s.WithTx(tx).(*PostgresDeckStore).save(ctx, userID, deck)
		})
	}
	return s.save(ctx, userID, deck)
}

// save writes the deck and its cards with the store's current DBTX. The
// deck upsert, card delete and card inserts must share one transaction or
// a failure strips the deck of its cards.
func (s *PostgresDeckStore) save(ctx context.Context, userID uuid.UUID, deck *domain.Deck) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO decks (user_id, id, name, is_favorite, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id, id) DO UPDATE
		SET name = EXCLUDED.name,
		    is_favorite = EXCLUDED.is_favorite,
		    updated_at = EXCLUDED.updated_at
	`, userID, deck.ID, deck.Name, deck.IsFavorite, deck.CreatedAt, deck.UpdatedAt)
	if err != nil {
		log.Error("failed to upsert deck",
			slog.String("error", err.Error()),
			slog.String("deck_id", deck.ID))
		return MapError(err)
	}

	if _, err := s.db.ExecContext(ctx, `
		DELETE FROM cards WHERE user_id = $1 AND deck_id = $2
	`, userID, deck.ID); err != nil {
		return MapError(err)
	}

	for i := range deck.Cards {
		c := &deck.Cards[i]
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO cards (user_id, deck_id, id, word, translation, last_rating,
			                   next_review_label, next_review_date, position, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		`, userID, deck.ID, c.ID, c.Word, c.Translation,
			nullString(string(c.LastRating)), nullString(c.NextReviewLabel),
			nullInt(c.NextReviewAt), i, nullInt(c.UpdatedAt))
		if err != nil {
			return MapError(err)
		}
	}

	log.Debug("deck saved",
		slog.String("deck_id", deck.ID),
		slog.Int("cards", len(deck.Cards)))
	return nil
}

// Delete implements store.DeckStore.Delete
// Cards cascade at the database level. Deleting an absent deck returns
// false and no error.
func (s *PostgresDeckStore) Delete(ctx context.Context, userID uuid.UUID, deckID string) (bool, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `
		DELETE FROM decks WHERE user_id = $1 AND id = $2
	`, userID, deckID)
	if err != nil {
		log.Error("failed to delete deck",
			slog.String("error", err.Error()),
			slog.String("deck_id", deckID))
		return false, MapError(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, MapError(err)
	}
	return affected > 0, nil
}

// DeleteAllForUser implements store.DeckStore.DeleteAllForUser
func (s *PostgresDeckStore) DeleteAllForUser(ctx context.Context, userID uuid.UUID) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM decks WHERE user_id = $1`, userID); err != nil {
		return MapError(err)
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullInt(n int64) sql.NullInt64 {
	return sql.NullInt64{Int64: n, Valid: n != 0}
}
