// Package review implements the review scheduler: a pure mapping from a
// card rating to the next review time and a human-readable label.
//
// Intervals are fixed constants per rating rather than an adaptive
// spaced-repetition curve; the schedule is intentionally simple.
package review

import (
	"time"

	"github.com/wordgym/wordgym-api/internal/domain"
)

// Fixed review intervals per rating.
var intervals = map[domain.Rating]time.Duration{
	domain.RatingAgain: 60 * time.Second,
	domain.RatingHard:  480 * time.Second,
	domain.RatingGood:  900 * time.Second,
	domain.RatingEasy:  259200 * time.Second, // 3 days
}

// Human-readable labels per rating.
var labels = map[domain.Rating]string{
	domain.RatingAgain: "1m",
	domain.RatingHard:  "8m",
	domain.RatingGood:  "15m",
	domain.RatingEasy:  "3d",
}

// Interval returns the fixed review interval for the given rating.
// Unknown ratings map to a zero interval; callers are expected to pass a
// validated rating.
func Interval(r domain.Rating) time.Duration {
	return intervals[r]
}

// NextReviewAt returns the next review time for a card rated r at now.
func NextReviewAt(r domain.Rating, now time.Time) time.Time {
	return now.Add(Interval(r))
}

// Label returns the human-readable interval label for the given rating,
// e.g. "15m" for good or "3d" for easy.
func Label(r domain.Rating) string {
	return labels[r]
}

// IsDue reports whether a card with the given next-review timestamp (Unix
// seconds, 0 when never reviewed) is due at now. Cards without a scheduled
// review are always due.
func IsDue(nextReviewAt int64, now time.Time) bool {
	if nextReviewAt == 0 {
		return true
	}
	return nextReviewAt <= now.Unix()
}
