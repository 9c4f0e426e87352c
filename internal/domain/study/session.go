// Package study provides pure helpers for driving an in-memory study
// session over a deck's cards: cursor movement, rating tallies and a
// completion summary. Persistence and streak updates live elsewhere; a
// session only tracks the flow of one sitting.
package study

import (
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/wordgym/wordgym-api/internal/domain"
)

// Session is the state of one study sitting over a fixed card list.
type Session struct {
	DeckID         string
	Cards          []domain.Card
	CurrentIndex   int
	IsFlipped      bool
	CompletedCards []string
	Stats          Stats
}

// Stats accumulates per-session review statistics.
type Stats struct {
	TotalCards    int
	CardsReviewed int
	Ratings       map[domain.Rating]int
	StartedAt     time.Time
	EndedAt       time.Time
}

// Summary is the end-of-session roll-up shown to the user.
type Summary struct {
	CardsReviewed int
	Accuracy      int // percent of good/easy ratings
	Duration      string
	Ratings       map[domain.Rating]int
}

// NewSession creates a session over the given cards in the order provided.
func NewSession(deckID string, cards []domain.Card) *Session {
	copied := make([]domain.Card, len(cards))
	copy(copied, cards)
	return &Session{
		DeckID: deckID,
		Cards:  copied,
		Stats: Stats{
			TotalCards: len(cards),
			Ratings:    map[domain.Rating]int{},
			StartedAt:  time.Now(),
		},
	}
}

// NewShuffledSession creates a session with the cards in random order.
func NewShuffledSession(deckID string, cards []domain.Card) *Session {
	shuffled := make([]domain.Card, len(cards))
	copy(shuffled, cards)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	return NewSession(deckID, shuffled)
}

// Current returns the card under the cursor, or nil when the session is
// complete or empty.
func (s *Session) Current() *domain.Card {
	if s.CurrentIndex >= len(s.Cards) {
		return nil
	}
	return &s.Cards[s.CurrentIndex]
}

// Next advances the cursor and resets the flip state.
func (s *Session) Next() {
	if s.CurrentIndex < len(s.Cards) {
		s.CurrentIndex++
	}
	s.IsFlipped = false
}

// Previous moves the cursor back and resets the flip state.
func (s *Session) Previous() {
	if s.CurrentIndex > 0 {
		s.CurrentIndex--
	}
	s.IsFlipped = false
}

// Flip toggles the card face.
func (s *Session) Flip() {
	s.IsFlipped = !s.IsFlipped
}

// RecordRating tallies a rating for the current card. It does not advance
// the cursor.
func (s *Session) RecordRating(r domain.Rating) {
	card := s.Current()
	if card == nil {
		return
	}
	s.CompletedCards = append(s.CompletedCards, card.ID)
	s.Stats.CardsReviewed++
	s.Stats.Ratings[r]++
}

// Complete marks the session finished.
func (s *Session) Complete() {
	s.Stats.EndedAt = time.Now()
}

// IsComplete reports whether the cursor has passed the last card.
func (s *Session) IsComplete() bool {
	return s.CurrentIndex >= len(s.Cards)
}

// Progress returns completion as a percentage, 100 for an empty session.
func (s *Session) Progress() int {
	if len(s.Cards) == 0 {
		return 100
	}
	return int(float64(s.CurrentIndex) / float64(len(s.Cards)) * 100)
}

// Remaining returns the number of cards left in the session.
func (s *Session) Remaining() int {
	if s.CurrentIndex >= len(s.Cards) {
		return 0
	}
	return len(s.Cards) - s.CurrentIndex
}

// Duration returns the elapsed session time; for an unfinished session the
// clock is still running.
func (s *Session) Duration() time.Duration {
	end := s.Stats.EndedAt
	if end.IsZero() {
		end = time.Now()
	}
	return end.Sub(s.Stats.StartedAt)
}

// Summarize produces the end-of-session summary. Accuracy is the share of
// good/easy ratings among reviewed cards.
func (s *Session) Summarize() Summary {
	ratings := make(map[domain.Rating]int, len(s.Stats.Ratings))
	for r, n := range s.Stats.Ratings {
		ratings[r] = n
	}

	accuracy := 0
	if s.Stats.CardsReviewed > 0 {
		positive := ratings[domain.RatingGood] + ratings[domain.RatingEasy]
		accuracy = int(float64(positive)/float64(s.Stats.CardsReviewed)*100 + 0.5)
	}

	return Summary{
		CardsReviewed: s.Stats.CardsReviewed,
		Accuracy:      accuracy,
		Duration:      FormatDuration(s.Duration()),
		Ratings:       ratings,
	}
}

// FormatDuration renders a duration as "42s", "3m 10s" or "1h 5m".
func FormatDuration(d time.Duration) string {
	secs := int(d.Seconds())
	if secs < 60 {
		return fmt.Sprintf("%ds", secs)
	}
	mins := secs / 60
	secs %= 60
	if mins < 60 {
		if secs > 0 {
			return fmt.Sprintf("%dm %ds", mins, secs)
		}
		return fmt.Sprintf("%dm", mins)
	}
	return fmt.Sprintf("%dh %dm", mins/60, mins%60)
}

// FilterDue returns the cards that should be prioritized in a sitting:
// unrated cards plus cards last rated again or hard.
func FilterDue(cards []domain.Card) []domain.Card {
	out := make([]domain.Card, 0, len(cards))
	for _, c := range cards {
		if c.LastRating == "" || c.LastRating == domain.RatingAgain || c.LastRating == domain.RatingHard {
			out = append(out, c)
		}
	}
	return out
}

// ratingPriority orders ratings by how urgently the card needs review.
var ratingPriority = map[domain.Rating]int{
	domain.RatingAgain: 0,
	domain.RatingHard:  1,
	domain.RatingGood:  2,
	domain.RatingEasy:  3,
}

// SortByPriority returns the cards ordered for study: new cards first, then
// by last rating from again to easy. The sort is stable.
func SortByPriority(cards []domain.Card) []domain.Card {
	out := make([]domain.Card, len(cards))
	copy(out, cards)
	sort.SliceStable(out, func(i, j int) bool {
		return cardPriority(out[i]) < cardPriority(out[j])
	})
	return out
}

func cardPriority(c domain.Card) int {
	if c.LastRating == "" {
		return -1
	}
	return ratingPriority[c.LastRating]
}
