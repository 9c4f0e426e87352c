package local

import (
	"math"
	"time"

	"github.com/wordgym/wordgym-api/internal/domain"
	"github.com/wordgym/wordgym-api/internal/domain/review"
)

// DeckStats summarizes learning progress for one deck.
type DeckStats struct {
	TotalCards    int     `json:"totalCards"`
	DueCards      int     `json:"dueCards"`
	NewCards      int     `json:"newCards"`
	LearnedCards  int     `json:"learnedCards"`
	MasteredCards int     `json:"masteredCards"`
	Retention     float64 `json:"retention"`
}

// computeDeckStats derives stats from a card slice. A card is new until its
// first rating, learned once last rated good or easy, and mastered once
// last rated easy. Retention is learned over rated as a percentage, rounded
// to one decimal place; 0 when nothing has been rated yet.
func computeDeckStats(cards []domain.Card, now time.Time) DeckStats {
	stats := DeckStats{TotalCards: len(cards)}

	rated := 0
	for _, c := range cards {
		if review.IsDue(c.NextReviewAt, now) {
			stats.DueCards++
		}
		switch c.LastRating {
		case "":
			stats.NewCards++
			continue
		case domain.RatingGood:
			stats.LearnedCards++
		case domain.RatingEasy:
			stats.LearnedCards++
			stats.MasteredCards++
		}
		rated++
	}

	if rated > 0 {
		stats.Retention = math.Round(float64(stats.LearnedCards)/float64(rated)*1000) / 10
	}
	return stats
}

// computeRatingDistribution tallies cards by their last rating. Unrated
// cards are not counted.
func computeRatingDistribution(cards []domain.Card) map[domain.Rating]int {
	dist := map[domain.Rating]int{
		domain.RatingAgain: 0,
		domain.RatingHard:  0,
		domain.RatingGood:  0,
		domain.RatingEasy:  0,
	}
	for _, c := range cards {
		if c.LastRating.Valid() {
			dist[c.LastRating]++
		}
	}
	return dist
}
