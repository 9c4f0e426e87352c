package memstore

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/wordgym/wordgym-api/internal/domain"
	"github.com/wordgym/wordgym-api/internal/store"
)

func TestDeckViewRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := New()
	userID := uuid.New()

	deck, err := domain.NewDeck("Spanish Basics")
	require.NoError(t, err)
	card, err := domain.NewCard("hola", "hello")
	require.NoError(t, err)
	deck.Cards = []domain.Card{*card}

	require.NoError(t, s.Decks().Save(ctx, userID, deck))

	got, err := s.Decks().Get(ctx, userID, deck.ID)
	require.NoError(t, err)
	assert.Equal(t, "Spanish Basics", got.Name)
	require.Len(t, got.Cards, 1)
	assert.Equal(t, "hola", got.Cards[0].Word)

	// Mutating the returned deck must not leak into stored state.
	got.Cards[0].Word = "mutated"
	again, err := s.Decks().Get(ctx, userID, deck.ID)
	require.NoError(t, err)
	assert.Equal(t, "hola", again.Cards[0].Word)
}

func TestDeckViewGetAllSortsByUpdatedAtDesc(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := New()
	userID := uuid.New()

	older, err := domain.NewDeck("Older")
	require.NoError(t, err)
	older.UpdatedAt = 1000
	newer, err := domain.NewDeck("Newer")
	require.NoError(t, err)
	newer.UpdatedAt = 2000

	require.NoError(t, s.Decks().Save(ctx, userID, older))
	require.NoError(t, s.Decks().Save(ctx, userID, newer))

	decks, err := s.Decks().GetAll(ctx, userID)
	require.NoError(t, err)
	require.Len(t, decks, 2)
	assert.Equal(t, "Newer", decks[0].Name)
	assert.Equal(t, "Older", decks[1].Name)
}

func TestDeckViewDeleteAbsentReturnsFalse(t *testing.T) {
	t.Parallel()

	s := New()
	deleted, err := s.Decks().Delete(context.Background(), uuid.New(), "missing")
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestDeckViewIsScopedPerUser(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := New()
	alice, bob := uuid.New(), uuid.New()

	deck, err := domain.NewDeck("Private")
	require.NoError(t, err)
	require.NoError(t, s.Decks().Save(ctx, alice, deck))

	_, err = s.Decks().Get(ctx, bob, deck.ID)
	assert.ErrorIs(t, err, store.ErrDeckNotFound)
}

func TestStreakView(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := New()
	userID := uuid.New()

	_, err := s.Streaks().Get(ctx, userID)
	assert.ErrorIs(t, err, store.ErrStreakNotFound)

	streak := &domain.StreakData{CurrentStreak: 3, BestStreak: 5, LastStudyDate: "2026-08-28", UpdatedAt: 1}
	require.NoError(t, s.Streaks().Save(ctx, userID, streak))

	got, err := s.Streaks().Get(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.CurrentStreak)
	assert.Equal(t, 5, got.BestStreak)
}

func TestSessionViewAccumulatesAndRanges(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := New()
	userID := uuid.New()

	require.NoError(t, s.Sessions().Record(ctx, userID, "2026-08-27", 5))
	require.NoError(t, s.Sessions().Record(ctx, userID, "2026-08-27", 3))
	require.NoError(t, s.Sessions().Record(ctx, userID, "2026-08-29", 2))

	count, err := s.Sessions().Get(ctx, userID, "2026-08-27")
	require.NoError(t, err)
	assert.Equal(t, 8, count)

	sessions, err := s.Sessions().GetRange(ctx, userID, "2026-08-23", "2026-08-29")
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, "2026-08-27", sessions[0].Date)
	assert.Equal(t, "2026-08-29", sessions[1].Date)
}

func TestUserViewCreateAndLogin(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := New()

	user, err := domain.NewUser("test@example.com", "correct-horse-battery")
	require.NoError(t, err)
	require.NoError(t, s.Users().Create(ctx, user))
	assert.Empty(t, user.Password)
	assert.NotEmpty(t, user.HashedPassword)

	got, err := s.Users().GetByEmail(ctx, "test@example.com")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(got.HashedPassword), []byte("correct-horse-battery")))

	dup, err := domain.NewUser("test@example.com", "another-long-password")
	require.NoError(t, err)
	assert.ErrorIs(t, s.Users().Create(ctx, dup), store.ErrEmailExists)
}

func TestUserViewDeleteRemovesEmailIndex(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := New()

	user, err := domain.NewUser("gone@example.com", "correct-horse-battery")
	require.NoError(t, err)
	require.NoError(t, s.Users().Create(ctx, user))
	require.NoError(t, s.Users().Delete(ctx, user.ID))

	_, err = s.Users().GetByEmail(ctx, "gone@example.com")
	assert.ErrorIs(t, err, store.ErrUserNotFound)

	// Email is free for re-registration after deletion.
	again, err := domain.NewUser("gone@example.com", "correct-horse-battery")
	require.NoError(t, err)
	assert.NoError(t, s.Users().Create(ctx, again))
}
