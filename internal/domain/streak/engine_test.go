package streak

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wordgym/wordgym-api/internal/domain"
)

func TestAdvance(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		prev        domain.StreakData
		today       string
		wantCurrent int
		wantBest    int
	}{
		{
			name:        "first session ever starts streak at one",
			prev:        domain.StreakData{},
			today:       "2024-01-10",
			wantCurrent: 1,
			wantBest:    1,
		},
		{
			name: "consecutive day extends streak",
			prev: domain.StreakData{
				CurrentStreak: 3,
				BestStreak:    5,
				LastStudyDate: "2024-01-09",
			},
			today:       "2024-01-10",
			wantCurrent: 4,
			wantBest:    5,
		},
		{
			name: "extending past best raises best",
			prev: domain.StreakData{
				CurrentStreak: 5,
				BestStreak:    5,
				LastStudyDate: "2024-01-09",
			},
			today:       "2024-01-10",
			wantCurrent: 6,
			wantBest:    6,
		},
		{
			name: "same day leaves counters unchanged",
			prev: domain.StreakData{
				CurrentStreak: 4,
				BestStreak:    7,
				LastStudyDate: "2024-01-10",
			},
			today:       "2024-01-10",
			wantCurrent: 4,
			wantBest:    7,
		},
		{
			name: "two day gap resets streak",
			prev: domain.StreakData{
				CurrentStreak: 9,
				BestStreak:    9,
				LastStudyDate: "2024-01-07",
			},
			today:       "2024-01-10",
			wantCurrent: 1,
			wantBest:    9,
		},
		{
			name: "month boundary still counts as consecutive",
			prev: domain.StreakData{
				CurrentStreak: 2,
				BestStreak:    2,
				LastStudyDate: "2024-01-31",
			},
			today:       "2024-02-01",
			wantCurrent: 3,
			wantBest:    3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Advance(tt.prev, tt.today, 1234)
			assert.Equal(t, tt.wantCurrent, got.CurrentStreak)
			assert.Equal(t, tt.wantBest, got.BestStreak)
			assert.Equal(t, tt.today, got.LastStudyDate)
			assert.Equal(t, int64(1234), got.UpdatedAt)
		})
	}
}

func TestAdvanceSameDayIdempotent(t *testing.T) {
	t.Parallel()

	// Day N with lastStudyDate = N-1: streak goes 3 -> 4, then stays 4 on
	// repeated same-day sessions.
	prev := domain.StreakData{CurrentStreak: 3, BestStreak: 3, LastStudyDate: "2024-01-09"}

	first := Advance(prev, "2024-01-10", 1)
	assert.Equal(t, 4, first.CurrentStreak)

	second := Advance(first, "2024-01-10", 2)
	assert.Equal(t, 4, second.CurrentStreak)
	assert.Equal(t, 4, second.BestStreak)
}

func TestAdvanceBestStreakMonotonic(t *testing.T) {
	t.Parallel()

	days := []string{
		"2024-01-01", "2024-01-02", "2024-01-03", // 3-day run
		"2024-01-07",               // gap, reset
		"2024-01-08", "2024-01-08", // consecutive + same-day repeat
	}

	state := domain.StreakData{}
	prevBest := 0
	for _, day := range days {
		state = Advance(state, day, 1)
		assert.GreaterOrEqual(t, state.BestStreak, prevBest, "best streak must never decrease")
		assert.GreaterOrEqual(t, state.BestStreak, state.CurrentStreak)
		prevBest = state.BestStreak
	}
	assert.Equal(t, 3, state.BestStreak)
	assert.Equal(t, 2, state.CurrentStreak)
}
