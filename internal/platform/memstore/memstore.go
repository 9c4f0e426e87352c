// Package memstore provides in-memory implementations of the store
// interfaces. It backs the degraded storage mode, where data lives only for
// the lifetime of the process, and doubles as the store used by handler and
// sync tests.
package memstore

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/wordgym/wordgym-api/internal/domain"
	"github.com/wordgym/wordgym-api/internal/store"
)

// Store holds all in-memory state and hands out views implementing the
// individual store interfaces. All views share one lock, so a Runner
// transaction sees a consistent snapshot.
type Store struct {
	mu       sync.RWMutex
	decks    map[uuid.UUID]map[string]domain.Deck
	streaks  map[uuid.UUID]domain.StreakData
	users    map[uuid.UUID]domain.User
	byEmail  map[string]uuid.UUID
	sessions map[uuid.UUID]map[string]int
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		decks:    make(map[uuid.UUID]map[string]domain.Deck),
		streaks:  make(map[uuid.UUID]domain.StreakData),
		users:    make(map[uuid.UUID]domain.User),
		byEmail:  make(map[string]uuid.UUID),
		sessions: make(map[uuid.UUID]map[string]int),
	}
}

// Decks returns the store.DeckStore view.
func (s *Store) Decks() store.DeckStore { return &deckView{s} }

// Streaks returns the store.StreakStore view.
func (s *Store) Streaks() store.StreakStore { return &streakView{s} }

// Users returns the store.UserStore view.
func (s *Store) Users() store.UserStore { return &userView{s} }

// Sessions returns the store.SessionStore view.
func (s *Store) Sessions() store.SessionStore { return &sessionView{s} }

// Runner returns a pass-through store.TxRunner. The TxFn receives a nil
// *sql.Tx; views ignore WithTx(nil) and keep operating on the shared state.
// There is no rollback: memory mode trades atomicity for zero setup, which
// is acceptable for the degraded backend and for tests that never fail
// mid-batch.
func (s *Store) Runner() store.TxRunner { return passRunner{} }

type passRunner struct{}

func (passRunner) RunInTransaction(ctx context.Context, fn store.TxFn) error {
	return fn(ctx, nil)
}

// --- deck view ---

type deckView struct{ s *Store }

var _ store.DeckStore = (*deckView)(nil)

func (v *deckView) WithTx(tx *sql.Tx) store.DeckStore { return v }

func (v *deckView) GetAll(ctx context.Context, userID uuid.UUID) ([]domain.Deck, error) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()

	decks := []domain.Deck{}
	for _, deck := range v.s.decks[userID] {
		decks = append(decks, *deck.Clone())
	}
	sort.SliceStable(decks, func(i, j int) bool {
		return decks[i].UpdatedAt > decks[j].UpdatedAt
	})
	return decks, nil
}

func (v *deckView) Get(ctx context.Context, userID uuid.UUID, deckID string) (*domain.Deck, error) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()

	deck, ok := v.s.decks[userID][deckID]
	if !ok {
		return nil, store.ErrDeckNotFound
	}
	return deck.Clone(), nil
}

func (v *deckView) Save(ctx context.Context, userID uuid.UUID, deck *domain.Deck) error {
	if err := deck.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	if v.s.decks[userID] == nil {
		v.s.decks[userID] = make(map[string]domain.Deck)
	}
	v.s.decks[userID][deck.ID] = *deck.Clone()
	return nil
}

func (v *deckView) Delete(ctx context.Context, userID uuid.UUID, deckID string) (bool, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	if _, ok := v.s.decks[userID][deckID]; !ok {
		return false, nil
	}
	delete(v.s.decks[userID], deckID)
	return true, nil
}

func (v *deckView) DeleteAllForUser(ctx context.Context, userID uuid.UUID) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	delete(v.s.decks, userID)
	return nil
}

// --- streak view ---

type streakView struct{ s *Store }

var _ store.StreakStore = (*streakView)(nil)

func (v *streakView) WithTx(tx *sql.Tx) store.StreakStore { return v }

func (v *streakView) Get(ctx context.Context, userID uuid.UUID) (*domain.StreakData, error) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()

	streak, ok := v.s.streaks[userID]
	if !ok {
		return nil, store.ErrStreakNotFound
	}
	return &streak, nil
}

func (v *streakView) Save(ctx context.Context, userID uuid.UUID, streak *domain.StreakData) error {
	if err := streak.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	v.s.streaks[userID] = *streak
	return nil
}

func (v *streakView) Delete(ctx context.Context, userID uuid.UUID) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	delete(v.s.streaks, userID)
	return nil
}

// --- session view ---

type sessionView struct{ s *Store }

var _ store.SessionStore = (*sessionView)(nil)

func (v *sessionView) WithTx(tx *sql.Tx) store.SessionStore { return v }

func (v *sessionView) Record(ctx context.Context, userID uuid.UUID, date string, cardsStudied int) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	if v.s.sessions[userID] == nil {
		v.s.sessions[userID] = make(map[string]int)
	}
	v.s.sessions[userID][date] += cardsStudied
	return nil
}

func (v *sessionView) Get(ctx context.Context, userID uuid.UUID, date string) (int, error) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()

	return v.s.sessions[userID][date], nil
}

func (v *sessionView) GetRange(ctx context.Context, userID uuid.UUID, from, to string) ([]domain.StudySession, error) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()

	sessions := []domain.StudySession{}
	for date, cards := range v.s.sessions[userID] {
		if date >= from && date <= to {
			sessions = append(sessions, domain.StudySession{Date: date, CardsStudied: cards})
		}
	}
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].Date < sessions[j].Date
	})
	return sessions, nil
}

func (v *sessionView) DeleteAllForUser(ctx context.Context, userID uuid.UUID) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	delete(v.s.sessions, userID)
	return nil
}
