package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/wordgym/wordgym-api/internal/domain"
)

// csvHeader is the fixed column layout of a CSV export.
var csvHeader = []string{"deck_name", "word", "translation", "last_rating"}

// ToCSV serializes decks as RFC 4180 CSV, one row per card. Decks without
// cards produce no rows and are therefore lost in a CSV round trip; use
// the JSON envelope to preserve empty decks.
func ToCSV(decks []domain.Deck) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(csvHeader); err != nil {
		return nil, fmt.Errorf("writing header: %w", err)
	}
	for i := range decks {
		for _, c := range decks[i].Cards {
			row := []string{decks[i].Name, c.Word, c.Translation, string(c.LastRating)}
			if err := w.Write(row); err != nil {
				return nil, fmt.Errorf("writing row: %w", err)
			}
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// FromCSV parses a CSV export and rebuilds decks from it, grouping rows by
// deck name in order of first appearance. Invalid rows are skipped and
// recorded on the result.
func FromCSV(data []byte) (*ImportResult, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = len(csvHeader)

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	for i, col := range csvHeader {
		if header[i] != col {
			return nil, fmt.Errorf("unexpected header column %q, want %q", header[i], col)
		}
	}

	result := &ImportResult{Decks: []domain.Deck{}}
	index := map[string]int{}
	line := 1

	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("line %d: %v", line, err))
			continue
		}

		deckName, word, translation, rating := record[0], record[1], record[2], record[3]

		i, ok := index[deckName]
		if !ok {
			deck, err := domain.NewDeck(deckName)
			if err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("line %d: %v", line, err))
				continue
			}
			i = len(result.Decks)
			index[deckName] = i
			result.Decks = append(result.Decks, *deck)
		}

		card, err := buildCard(CardExport{
			Word:        word,
			Translation: translation,
			LastRating:  domain.Rating(rating),
		})
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("line %d: %v", line, err))
			continue
		}
		result.Decks[i].Cards = append(result.Decks[i].Cards, *card)
		result.CardsImported++
	}

	return result, nil
}
