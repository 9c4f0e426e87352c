package domain

import (
	"fmt"
	"time"
)

// DateLayout is the calendar-day format used by streak tracking and study
// sessions ("YYYY-MM-DD").
const DateLayout = "2006-01-02"

// Streak-specific validation errors.
var (
	// ErrNegativeStreak is returned when a streak counter is negative.
	ErrNegativeStreak = fmt.Errorf("%w: streak counters must be >= 0", ErrValidation)

	// ErrBestStreakBelowCurrent is returned when bestStreak is smaller
	// than currentStreak.
	ErrBestStreakBelowCurrent = fmt.Errorf("%w: best streak cannot be below current streak", ErrValidation)

	// ErrInvalidStudyDate is returned when a study date is not a valid
	// YYYY-MM-DD string.
	ErrInvalidStudyDate = fmt.Errorf("%w: study date must be YYYY-MM-DD", ErrValidation)
)

// StreakData is the per-user (or per-device) streak singleton.
// An empty LastStudyDate means the user has never studied.
type StreakData struct {
	CurrentStreak int    `json:"currentStreak"`
	BestStreak    int    `json:"bestStreak"`
	LastStudyDate string `json:"lastStudyDate,omitempty"`
	UpdatedAt     int64  `json:"updatedAt"`
}

// NewStreakData returns the zero-value streak record for a user that has
// never studied.
func NewStreakData() *StreakData {
	return &StreakData{
		CurrentStreak: 0,
		BestStreak:    0,
		LastStudyDate: "",
		UpdatedAt:     NowMillis(),
	}
}

// Validate checks streak invariants: counters non-negative, bestStreak >=
// currentStreak, lastStudyDate either empty or a valid calendar day.
func (s *StreakData) Validate() error {
	if s.CurrentStreak < 0 || s.BestStreak < 0 {
		return ErrNegativeStreak
	}
	if s.BestStreak < s.CurrentStreak {
		return ErrBestStreakBelowCurrent
	}
	if s.LastStudyDate != "" {
		if _, err := time.Parse(DateLayout, s.LastStudyDate); err != nil {
			return ErrInvalidStudyDate
		}
	}
	return nil
}

// StudySession is one row per calendar day recording how many cards were
// studied that day. Local-only; never synced to the remote store.
type StudySession struct {
	Date         string `json:"date"`
	CardsStudied int    `json:"cardsStudied"`
}

// Validate checks the session row.
func (s *StudySession) Validate() error {
	if _, err := time.Parse(DateLayout, s.Date); err != nil {
		return ErrInvalidStudyDate
	}
	if s.CardsStudied < 0 {
		return fmt.Errorf("%w: cards studied must be >= 0", ErrValidation)
	}
	return nil
}

// DayString formats t as a YYYY-MM-DD calendar day in t's location.
func DayString(t time.Time) string {
	return t.Format(DateLayout)
}
