// Package export implements the backup codec: whole-library export to JSON
// or CSV and the validating import path back. Exports carry only content
// (deck names, words, translations, last ratings); IDs and timestamps are
// re-minted on import, so an export/import round trip preserves content
// while producing fresh entities.
package export

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/wordgym/wordgym-api/internal/domain"
)

// Version identifies the export envelope format.
const Version = "1.0"

// Envelope is the JSON export document.
type Envelope struct {
	Version    string       `json:"version"`
	ExportedAt int64        `json:"exportedAt"`
	Decks      []DeckExport `json:"decks"`
}

// DeckExport is one deck's content in an export.
type DeckExport struct {
	Name  string       `json:"name"`
	Cards []CardExport `json:"cards"`
}

// CardExport is one card's content in an export.
type CardExport struct {
	Word        string        `json:"word"`
	Translation string        `json:"translation"`
	LastRating  domain.Rating `json:"lastRating,omitempty"`
}

// ImportResult reports the outcome of an import. Invalid rows are skipped
// and recorded; the import succeeded only when Errors is empty.
type ImportResult struct {
	Decks         []domain.Deck
	CardsImported int
	Errors        []string
}

// OK reports whether every row imported cleanly.
func (r *ImportResult) OK() bool {
	return len(r.Errors) == 0
}

// ToJSON serializes decks into the versioned JSON envelope.
func ToJSON(decks []domain.Deck, now time.Time) ([]byte, error) {
	env := Envelope{
		Version:    Version,
		ExportedAt: now.UnixMilli(),
		Decks:      make([]DeckExport, 0, len(decks)),
	}
	for i := range decks {
		d := DeckExport{
			Name:  decks[i].Name,
			Cards: make([]CardExport, 0, len(decks[i].Cards)),
		}
		for _, c := range decks[i].Cards {
			d.Cards = append(d.Cards, CardExport{
				Word:        c.Word,
				Translation: c.Translation,
				LastRating:  c.LastRating,
			})
		}
		env.Decks = append(env.Decks, d)
	}
	return json.MarshalIndent(env, "", "  ")
}

// FromJSON parses a JSON export envelope and rebuilds decks from it. Each
// deck and card is validated against domain rules; bad entries are skipped
// and recorded on the result.
func FromJSON(data []byte) (*ImportResult, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("parsing export document: %w", err)
	}
	if env.Version != Version {
		return nil, fmt.Errorf("unsupported export version %q", env.Version)
	}

	result := &ImportResult{Decks: []domain.Deck{}}
	for _, de := range env.Decks {
		deck, err := domain.NewDeck(de.Name)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("deck %q: %v", de.Name, err))
			continue
		}
		for _, ce := range de.Cards {
			card, err := buildCard(ce)
			if err != nil {
				result.Errors = append(result.Errors,
					fmt.Sprintf("deck %q, card %q: %v", de.Name, ce.Word, err))
				continue
			}
			deck.Cards = append(deck.Cards, *card)
			result.CardsImported++
		}
		result.Decks = append(result.Decks, *deck)
	}
	return result, nil
}

// buildCard re-mints a card from exported content. The last rating is kept
// when valid but the review schedule starts over: the card is due
// immediately after import.
func buildCard(ce CardExport) (*domain.Card, error) {
	card, err := domain.NewCard(ce.Word, ce.Translation)
	if err != nil {
		return nil, err
	}
	if ce.LastRating != "" {
		if !ce.LastRating.Valid() {
			return nil, fmt.Errorf("%w: %q", domain.ErrInvalidRating, ce.LastRating)
		}
		card.LastRating = ce.LastRating
	}
	return card, nil
}

// Filename returns the suggested file name for an export started at now,
// e.g. "wordgym-export-2026-08-29.json". format is the file extension
// without the dot.
func Filename(format string, now time.Time) string {
	return fmt.Sprintf("wordgym-export-%s.%s", now.Format(domain.DateLayout), format)
}
