// Package streak implements the streak engine: a pure state transition
// over (currentStreak, bestStreak, lastStudyDate) driven by daily study
// sessions.
package streak

import (
	"time"

	"github.com/wordgym/wordgym-api/internal/domain"
)

// Advance computes the streak record that results from completing a study
// session on the calendar day `today` (YYYY-MM-DD). It returns a new
// record; the input is not modified.
//
// Transition rules:
//   - studied today already: counters unchanged
//   - studied yesterday: current streak extends by one
//   - never studied, or a gap of two or more days: streak resets to one
//
// bestStreak never decreases. The returned record's UpdatedAt is set to
// nowMillis.
func Advance(prev domain.StreakData, today string, nowMillis int64) domain.StreakData {
	next := prev
	next.UpdatedAt = nowMillis

	switch prev.LastStudyDate {
	case today:
		// Already counted for today.
	case yesterdayOf(today):
		next.CurrentStreak = prev.CurrentStreak + 1
	default:
		next.CurrentStreak = 1
	}

	if next.CurrentStreak > next.BestStreak {
		next.BestStreak = next.CurrentStreak
	}
	next.LastStudyDate = today

	return next
}

// yesterdayOf returns the calendar day before a YYYY-MM-DD date string.
// An unparsable input yields an empty string, which never matches a stored
// study date.
func yesterdayOf(day string) string {
	t, err := time.Parse(domain.DateLayout, day)
	if err != nil {
		return ""
	}
	return t.AddDate(0, 0, -1).Format(domain.DateLayout)
}
