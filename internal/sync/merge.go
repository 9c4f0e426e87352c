// Package sync implements the offline-first merge engine and the client
// that reconciles a device's local store with the remote API. Merging is
// last-write-wins on client-reported updatedAt timestamps; both sides run
// the same pure merge so the outcome is deterministic and idempotent.
package sync

import (
	"sort"

	"github.com/wordgym/wordgym-api/internal/domain"
)

// MergeResult is the outcome of merging a local deck set against a remote
// one.
type MergeResult struct {
	// Decks is the full merged set, sorted by updatedAt descending.
	Decks []domain.Deck

	// Staged holds the decks where the local copy won and therefore must
	// be written to the remote store. Persisting Staged inside one
	// transaction makes the whole batch all-or-nothing.
	Staged []domain.Deck
}

// MergeDecks merges local decks into the remote set. The remote set seeds
// the result; a local deck wins only when it is absent remotely or
// strictly newer by updatedAt. A winner with no updatedAt is stamped with
// now; createdAt falls back local, then remote, then now.
//
// Merging is idempotent: merging the result against the same remote set
// again yields the same result.
func MergeDecks(local, remote []domain.Deck, now int64) MergeResult {
	merged := make(map[string]domain.Deck, len(remote))
	for i := range remote {
		merged[remote[i].ID] = *remote[i].Clone()
	}

	staged := []domain.Deck{}
	for i := range local {
		l := local[i]
		r, exists := merged[l.ID]
		if exists && l.UpdatedAt <= r.UpdatedAt {
			continue
		}

		winner := *l.Clone()
		if winner.UpdatedAt == 0 {
			winner.UpdatedAt = now
		}
		if winner.CreatedAt == 0 {
			if exists && r.CreatedAt != 0 {
				winner.CreatedAt = r.CreatedAt
			} else {
				winner.CreatedAt = now
			}
		}

		merged[l.ID] = winner
		staged = append(staged, winner)
	}

	decks := make([]domain.Deck, 0, len(merged))
	for _, d := range merged {
		decks = append(decks, d)
	}
	sort.SliceStable(decks, func(i, j int) bool {
		if decks[i].UpdatedAt != decks[j].UpdatedAt {
			return decks[i].UpdatedAt > decks[j].UpdatedAt
		}
		return decks[i].ID < decks[j].ID
	})
	sort.SliceStable(staged, func(i, j int) bool {
		if staged[i].UpdatedAt != staged[j].UpdatedAt {
			return staged[i].UpdatedAt > staged[j].UpdatedAt
		}
		return staged[i].ID < staged[j].ID
	})

	return MergeResult{Decks: decks, Staged: staged}
}

// MergeStreaks merges two streak records. Counters take the maximum of
// both sides; lastStudyDate takes the lexicographically later date, with
// any date beating none. The result is stamped with now.
func MergeStreaks(local, remote domain.StreakData, now int64) domain.StreakData {
	merged := domain.StreakData{
		CurrentStreak: maxInt(local.CurrentStreak, remote.CurrentStreak),
		BestStreak:    maxInt(local.BestStreak, remote.BestStreak),
		LastStudyDate: laterDate(local.LastStudyDate, remote.LastStudyDate),
		UpdatedAt:     now,
	}
	if merged.BestStreak < merged.CurrentStreak {
		merged.BestStreak = merged.CurrentStreak
	}
	return merged
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// laterDate compares YYYY-MM-DD day strings, which order lexicographically.
func laterDate(a, b string) string {
	if a == "" {
		return b
	}
	if b == "" {
		return a
	}
	if a > b {
		return a
	}
	return b
}
