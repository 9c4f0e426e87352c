// Package local implements the device-side store: an observable in-memory
// mirror of the user's decks and streak, kept consistent with a pluggable
// persistence backend. Every mutation persists first, then updates the
// mirror, then notifies subscribers, so readers never observe a
// half-applied state.
package local

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wordgym/wordgym-api/internal/domain"
	"github.com/wordgym/wordgym-api/internal/domain/review"
	"github.com/wordgym/wordgym-api/internal/domain/streak"
	"github.com/wordgym/wordgym-api/internal/platform/logger"
	"github.com/wordgym/wordgym-api/internal/store"
)

// Backend bundles the persistence interfaces the local store writes
// through. Wire it to postgres stores for durable storage or to memstore
// views for the degraded in-memory mode. Runner batches multi-statement
// writes; memstore's pass-through runner serves the in-memory mode.
type Backend struct {
	Decks    store.DeckStore
	Streaks  store.StreakStore
	Sessions store.SessionStore
	Runner   store.TxRunner
}

// Listener is invoked after a mutation has been committed. It runs outside
// the store's lock, so listeners may call read methods.
type Listener func()

// Store is the observable local state container. A single logical writer
// is enforced with a mutex; reads return copies, never shared slices.
type Store struct {
	backend Backend
	owner   uuid.UUID
	logger  *slog.Logger
	now     func() time.Time

	mu     sync.RWMutex
	decks  []domain.Deck
	streak domain.StreakData

	listenersMu sync.Mutex
	listeners   map[int]Listener
	nextID      int
}

// New creates a local store over the given backend and hydrates the mirror
// from it. owner scopes all backend rows; a device uses one fixed owner ID
// for its lifetime. If logger is nil, a default logger is used.
func New(ctx context.Context, backend Backend, owner uuid.UUID, log *slog.Logger) (*Store, error) {
	if backend.Decks == nil || backend.Streaks == nil || backend.Sessions == nil || backend.Runner == nil {
		panic("backend stores cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}

	s := &Store{
		backend:   backend,
		owner:     owner,
		logger:    log.With(slog.String("component", "local_store")),
		now:       time.Now,
		listeners: make(map[int]Listener),
	}

	decks, err := backend.Decks.GetAll(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("hydrating decks: %w", err)
	}
	s.decks = decks

	st, err := backend.Streaks.Get(ctx, owner)
	switch {
	case err == nil:
		s.streak = *st
	case store.IsNotFoundError(err):
		// Never studied; zero-value streak.
	default:
		return nil, fmt.Errorf("hydrating streak: %w", err)
	}

	s.logger.Info("local store hydrated", slog.Int("decks", len(decks)))
	return s, nil
}

// Subscribe registers a listener and returns a function that removes it.
func (s *Store) Subscribe(fn Listener) func() {
	s.listenersMu.Lock()
	defer s.listenersMu.Unlock()

	id := s.nextID
	s.nextID++
	s.listeners[id] = fn

	return func() {
		s.listenersMu.Lock()
		defer s.listenersMu.Unlock()
		delete(s.listeners, id)
	}
}

func (s *Store) notify() {
	s.listenersMu.Lock()
	snapshot := make([]Listener, 0, len(s.listeners))
	for _, fn := range s.listeners {
		snapshot = append(snapshot, fn)
	}
	s.listenersMu.Unlock()

	for _, fn := range snapshot {
		fn()
	}
}

// commit runs fn under the write lock and notifies listeners when it
// succeeds.
func (s *Store) commit(fn func() error) error {
	s.mu.Lock()
	err := fn()
	s.mu.Unlock()

	if err == nil {
		s.notify()
	}
	return err
}

func (s *Store) findDeck(deckID string) int {
	for i := range s.decks {
		if s.decks[i].ID == deckID {
			return i
		}
	}
	return -1
}

// AddDeck creates an empty deck with the given name and persists it.
func (s *Store) AddDeck(ctx context.Context, name string) (*domain.Deck, error) {
	deck, err := domain.NewDeck(name)
	if err != nil {
		return nil, err
	}

	err = s.commit(func() error {
		if err := s.backend.Decks.Save(ctx, s.owner, deck); err != nil {
			return err
		}
		// Newest deck first, matching updatedAt-descending reads.
		s.decks = append([]domain.Deck{*deck.Clone()}, s.decks...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return deck, nil
}

// AddCard adds a card to the front of the deck (newest first) and bumps the
// deck's updatedAt.
func (s *Store) AddCard(ctx context.Context, deckID, word, translation string) (*domain.Card, error) {
	card, err := domain.NewCard(word, translation)
	if err != nil {
		return nil, err
	}

	err = s.commit(func() error {
		i := s.findDeck(deckID)
		if i < 0 {
			return store.ErrDeckNotFound
		}
		updated := s.decks[i].Clone()
		updated.Cards = append([]domain.Card{*card}, updated.Cards...)
		updated.Touch()

		if err := s.backend.Decks.Save(ctx, s.owner, updated); err != nil {
			return err
		}
		s.decks[i] = *updated
		return nil
	})
	if err != nil {
		return nil, err
	}
	return card, nil
}

// RateCard records a review rating on a card and returns the updated card.
// It stamps the card's last rating, next-review time and human-readable
// label, and bumps the deck's updatedAt.
func (s *Store) RateCard(ctx context.Context, deckID, cardID string, rating domain.Rating) (*domain.Card, error) {
	if !rating.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidRating, rating)
	}

	var rated domain.Card
	err := s.commit(func() error {
		i := s.findDeck(deckID)
		if i < 0 {
			return store.ErrDeckNotFound
		}
		updated := s.decks[i].Clone()
		j := updated.FindCard(cardID)
		if j < 0 {
			return store.ErrCardNotFound
		}

		now := s.now()
		card := &updated.Cards[j]
		card.LastRating = rating
		card.NextReviewAt = review.NextReviewAt(rating, now).Unix()
		card.NextReviewLabel = review.Label(rating)
		card.UpdatedAt = now.UnixMilli()
		updated.Touch()

		if err := s.backend.Decks.Save(ctx, s.owner, updated); err != nil {
			return err
		}
		s.decks[i] = *updated
		rated = *card
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &rated, nil
}

// UpdateDeck renames a deck.
func (s *Store) UpdateDeck(ctx context.Context, deckID, name string) error {
	if err := domain.ValidateDeckName(name); err != nil {
		return err
	}

	return s.commit(func() error {
		i := s.findDeck(deckID)
		if i < 0 {
			return store.ErrDeckNotFound
		}
		updated := s.decks[i].Clone()
		updated.Name = name
		updated.Touch()

		if err := s.backend.Decks.Save(ctx, s.owner, updated); err != nil {
			return err
		}
		s.decks[i] = *updated
		return nil
	})
}

// UpdateCard edits a card's word and translation.
func (s *Store) UpdateCard(ctx context.Context, deckID, cardID, word, translation string) error {
	if err := domain.ValidateCardText(word, translation); err != nil {
		return err
	}

	return s.commit(func() error {
		i := s.findDeck(deckID)
		if i < 0 {
			return store.ErrDeckNotFound
		}
		updated := s.decks[i].Clone()
		j := updated.FindCard(cardID)
		if j < 0 {
			return store.ErrCardNotFound
		}

		updated.Cards[j].Word = word
		updated.Cards[j].Translation = translation
		updated.Cards[j].UpdatedAt = s.now().UnixMilli()
		updated.Touch()

		if err := s.backend.Decks.Save(ctx, s.owner, updated); err != nil {
			return err
		}
		s.decks[i] = *updated
		return nil
	})
}

// ToggleFavorite flips a deck's favorite flag.
func (s *Store) ToggleFavorite(ctx context.Context, deckID string) error {
	return s.commit(func() error {
		i := s.findDeck(deckID)
		if i < 0 {
			return store.ErrDeckNotFound
		}
		updated := s.decks[i].Clone()
		updated.IsFavorite = !updated.IsFavorite
		updated.Touch()

		if err := s.backend.Decks.Save(ctx, s.owner, updated); err != nil {
			return err
		}
		s.decks[i] = *updated
		return nil
	})
}

// DeleteDeck removes a deck. Deleting an absent deck is a no-op.
func (s *Store) DeleteDeck(ctx context.Context, deckID string) error {
	return s.commit(func() error {
		i := s.findDeck(deckID)
		if i < 0 {
			return nil
		}
		if _, err := s.backend.Decks.Delete(ctx, s.owner, deckID); err != nil {
			return err
		}
		s.decks = append(s.decks[:i], s.decks[i+1:]...)
		return nil
	})
}

// DeleteCard removes a card from a deck. Deleting an absent card is a
// no-op; the deck must exist.
func (s *Store) DeleteCard(ctx context.Context, deckID, cardID string) error {
	return s.commit(func() error {
		i := s.findDeck(deckID)
		if i < 0 {
			return store.ErrDeckNotFound
		}
		updated := s.decks[i].Clone()
		j := updated.FindCard(cardID)
		if j < 0 {
			return nil
		}
		updated.Cards = append(updated.Cards[:j], updated.Cards[j+1:]...)
		updated.Touch()

		if err := s.backend.Decks.Save(ctx, s.owner, updated); err != nil {
			return err
		}
		s.decks[i] = *updated
		return nil
	})
}

// GetAllDecks returns a copy of every deck in the mirror.
func (s *Store) GetAllDecks() []domain.Deck {
	s.mu.RLock()
	defer s.mu.RUnlock()

	decks := make([]domain.Deck, 0, len(s.decks))
	for i := range s.decks {
		decks = append(decks, *s.decks[i].Clone())
	}
	return decks
}

// GetDeckByID returns a copy of the deck, or false when absent.
func (s *Store) GetDeckByID(deckID string) (*domain.Deck, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.findDeck(deckID)
	if i < 0 {
		return nil, false
	}
	return s.decks[i].Clone(), true
}

// GetDueCards returns the deck's cards that are due for review now:
// never-reviewed cards plus cards whose next review time has passed.
func (s *Store) GetDueCards(deckID string) ([]domain.Card, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.findDeck(deckID)
	if i < 0 {
		return nil, store.ErrDeckNotFound
	}

	now := s.now()
	due := []domain.Card{}
	for _, c := range s.decks[i].Cards {
		if review.IsDue(c.NextReviewAt, now) {
			due = append(due, c)
		}
	}
	return due, nil
}

// Streak returns a copy of the current streak state.
func (s *Store) Streak() domain.StreakData {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.streak
}

// RecordStudySession logs cards studied today and advances the streak. The
// streak moves at most once per day; repeated calls on the same day only
// accumulate the session counter.
func (s *Store) RecordStudySession(ctx context.Context, cardsStudied int) error {
	if cardsStudied < 0 {
		return fmt.Errorf("%w: cards studied cannot be negative", domain.ErrValidation)
	}

	return s.commit(func() error {
		now := s.now()
		today := domain.DayString(now)

		if err := s.backend.Sessions.Record(ctx, s.owner, today, cardsStudied); err != nil {
			return err
		}

		next := streak.Advance(s.streak, today, now.UnixMilli())
		if err := s.backend.Streaks.Save(ctx, s.owner, &next); err != nil {
			return err
		}
		s.streak = next
		return nil
	})
}

// CardsStudiedToday returns the session counter for the current day.
func (s *Store) CardsStudiedToday(ctx context.Context) (int, error) {
	return s.backend.Sessions.Get(ctx, s.owner, domain.DayString(s.now()))
}

// GetWeeklyActivity returns the trailing seven days, oldest first, with a
// zero entry for days without study activity.
func (s *Store) GetWeeklyActivity(ctx context.Context) ([]domain.StudySession, error) {
	now := s.now()
	from := domain.DayString(now.AddDate(0, 0, -6))
	to := domain.DayString(now)

	recorded, err := s.backend.Sessions.GetRange(ctx, s.owner, from, to)
	if err != nil {
		return nil, err
	}

	byDate := make(map[string]int, len(recorded))
	for _, session := range recorded {
		byDate[session.Date] = session.CardsStudied
	}

	week := make([]domain.StudySession, 0, 7)
	for offset := -6; offset <= 0; offset++ {
		date := domain.DayString(now.AddDate(0, 0, offset))
		week = append(week, domain.StudySession{Date: date, CardsStudied: byDate[date]})
	}
	return week, nil
}

// DeckStats returns learning-progress statistics for a deck.
func (s *Store) DeckStats(deckID string) (DeckStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.findDeck(deckID)
	if i < 0 {
		return DeckStats{}, store.ErrDeckNotFound
	}
	return computeDeckStats(s.decks[i].Cards, s.now()), nil
}

// RatingDistribution tallies a deck's cards by last rating.
func (s *Store) RatingDistribution(deckID string) (map[domain.Rating]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.findDeck(deckID)
	if i < 0 {
		return nil, store.ErrDeckNotFound
	}
	return computeRatingDistribution(s.decks[i].Cards), nil
}

// ReplaceAll atomically replaces the entire local state with the given
// decks and streak. This is the commit path after a successful sync and
// after a whole-library import.
func (s *Store) ReplaceAll(ctx context.Context, decks []domain.Deck, streakData domain.StreakData) error {
	for i := range decks {
		if err := decks[i].Validate(); err != nil {
			return fmt.Errorf("%w: deck %q: %v", store.ErrInvalidEntity, decks[i].ID, err)
		}
	}

	return s.commit(func() error {
		log := logger.FromContextOrDefault(ctx, s.logger)

		// The delete and saves commit together or not at all; a failure
		// mid-batch must not strip the durable copy of its decks.
		err := s.backend.Runner.RunInTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
			deckStore := s.backend.Decks.WithTx(tx)
			if err := deckStore.DeleteAllForUser(ctx, s.owner); err != nil {
				return err
			}
			for i := range decks {
				if err := deckStore.Save(ctx, s.owner, &decks[i]); err != nil {
					return err
				}
			}
			return s.backend.Streaks.WithTx(tx).Save(ctx, s.owner, &streakData)
		})
		if err != nil {
			return err
		}

		mirror := make([]domain.Deck, 0, len(decks))
		for i := range decks {
			mirror = append(mirror, *decks[i].Clone())
		}
		s.decks = mirror
		s.streak = streakData

		log.Debug("local state replaced", slog.Int("decks", len(decks)))
		return nil
	})
}
