package sync

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wordgym/wordgym-api/internal/domain"
)

func deck(id string, updatedAt int64) domain.Deck {
	return domain.Deck{
		ID:        id,
		Name:      "deck " + id,
		Cards:     []domain.Card{},
		CreatedAt: 100,
		UpdatedAt: updatedAt,
	}
}

func TestMergeDecks(t *testing.T) {
	t.Parallel()

	const now = int64(10_000)

	tests := []struct {
		name       string
		local      []domain.Deck
		remote     []domain.Deck
		wantIDs    []string
		wantStaged []string
	}{
		{
			name:       "local-only deck is staged",
			local:      []domain.Deck{deck("a", 500)},
			remote:     nil,
			wantIDs:    []string{"a"},
			wantStaged: []string{"a"},
		},
		{
			name:       "remote-only deck survives unstaged",
			local:      nil,
			remote:     []domain.Deck{deck("a", 500)},
			wantIDs:    []string{"a"},
			wantStaged: []string{},
		},
		{
			name:       "newer local wins",
			local:      []domain.Deck{deck("a", 900)},
			remote:     []domain.Deck{deck("a", 500)},
			wantIDs:    []string{"a"},
			wantStaged: []string{"a"},
		},
		{
			name:       "newer remote wins",
			local:      []domain.Deck{deck("a", 500)},
			remote:     []domain.Deck{deck("a", 900)},
			wantIDs:    []string{"a"},
			wantStaged: []string{},
		},
		{
			name:       "equal timestamps keep remote",
			local:      []domain.Deck{deck("a", 500)},
			remote:     []domain.Deck{deck("a", 500)},
			wantIDs:    []string{"a"},
			wantStaged: []string{},
		},
		{
			name:       "disjoint sets union",
			local:      []domain.Deck{deck("a", 900)},
			remote:     []domain.Deck{deck("b", 500)},
			wantIDs:    []string{"a", "b"},
			wantStaged: []string{"a"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			result := MergeDecks(tt.local, tt.remote, now)

			gotIDs := make([]string, 0, len(result.Decks))
			for _, d := range result.Decks {
				gotIDs = append(gotIDs, d.ID)
			}
			assert.Equal(t, tt.wantIDs, gotIDs)

			gotStaged := make([]string, 0, len(result.Staged))
			for _, d := range result.Staged {
				gotStaged = append(gotStaged, d.ID)
			}
			assert.Equal(t, tt.wantStaged, gotStaged)
		})
	}
}

func TestMergeDecksStampsMissingTimestamps(t *testing.T) {
	t.Parallel()

	const now = int64(10_000)

	local := domain.Deck{ID: "a", Name: "untimestamped", Cards: []domain.Card{}}
	result := MergeDecks([]domain.Deck{local}, nil, now)

	require.Len(t, result.Decks, 1)
	assert.Equal(t, now, result.Decks[0].UpdatedAt)
	assert.Equal(t, now, result.Decks[0].CreatedAt)
}

func TestMergeDecksCreatedAtFallsBackToRemote(t *testing.T) {
	t.Parallel()

	const now = int64(10_000)

	local := domain.Deck{ID: "a", Name: "local", Cards: []domain.Card{}, UpdatedAt: 900}
	remote := deck("a", 500) // CreatedAt 100

	result := MergeDecks([]domain.Deck{local}, []domain.Deck{remote}, now)
	require.Len(t, result.Decks, 1)
	assert.Equal(t, int64(100), result.Decks[0].CreatedAt)
	assert.Equal(t, "local", result.Decks[0].Name)
}

func TestMergeDecksSortedByUpdatedAtDesc(t *testing.T) {
	t.Parallel()

	result := MergeDecks(
		[]domain.Deck{deck("old", 100), deck("new", 900)},
		[]domain.Deck{deck("mid", 500)},
		10_000,
	)

	ids := make([]string, 0, len(result.Decks))
	for _, d := range result.Decks {
		ids = append(ids, d.ID)
	}
	assert.Equal(t, []string{"new", "mid", "old"}, ids)
}

func TestMergeDecksIdempotent(t *testing.T) {
	t.Parallel()

	const now = int64(10_000)

	local := []domain.Deck{deck("a", 900), deck("b", 200)}
	remote := []domain.Deck{deck("a", 500), deck("c", 700)}

	first := MergeDecks(local, remote, now)
	second := MergeDecks(first.Decks, remote, now+50)

	assert.Equal(t, first.Decks, second.Decks)

	// Against the updated remote set nothing is staged at all.
	third := MergeDecks(first.Decks, first.Decks, now+100)
	assert.Equal(t, first.Decks, third.Decks)
	assert.Empty(t, third.Staged)
}

func TestMergeDecksDoesNotMutateInputs(t *testing.T) {
	t.Parallel()

	local := []domain.Deck{deck("a", 900)}
	remote := []domain.Deck{deck("a", 500)}

	result := MergeDecks(local, remote, 10_000)
	result.Decks[0].Name = "mutated"

	assert.Equal(t, "deck a", local[0].Name)
	assert.Equal(t, "deck a", remote[0].Name)
}

func TestMergeStreaks(t *testing.T) {
	t.Parallel()

	const now = int64(10_000)

	tests := []struct {
		name   string
		local  domain.StreakData
		remote domain.StreakData
		want   domain.StreakData
	}{
		{
			name:   "max wins on counters",
			local:  domain.StreakData{CurrentStreak: 3, BestStreak: 7, LastStudyDate: "2026-08-28"},
			remote: domain.StreakData{CurrentStreak: 5, BestStreak: 6, LastStudyDate: "2026-08-27"},
			want:   domain.StreakData{CurrentStreak: 5, BestStreak: 7, LastStudyDate: "2026-08-28", UpdatedAt: now},
		},
		{
			name:   "any date beats none",
			local:  domain.StreakData{},
			remote: domain.StreakData{CurrentStreak: 1, BestStreak: 1, LastStudyDate: "2026-08-01"},
			want:   domain.StreakData{CurrentStreak: 1, BestStreak: 1, LastStudyDate: "2026-08-01", UpdatedAt: now},
		},
		{
			name:   "both empty",
			local:  domain.StreakData{},
			remote: domain.StreakData{},
			want:   domain.StreakData{UpdatedAt: now},
		},
		{
			name:   "best lifted to current after max",
			local:  domain.StreakData{CurrentStreak: 9, BestStreak: 9, LastStudyDate: "2026-08-29"},
			remote: domain.StreakData{CurrentStreak: 2, BestStreak: 4, LastStudyDate: "2026-08-20"},
			want:   domain.StreakData{CurrentStreak: 9, BestStreak: 9, LastStudyDate: "2026-08-29", UpdatedAt: now},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := MergeStreaks(tt.local, tt.remote, now)
			assert.Equal(t, tt.want, got)

			// Symmetric up to the timestamp stamp.
			flipped := MergeStreaks(tt.remote, tt.local, now)
			assert.Equal(t, got, flipped)
		})
	}
}
