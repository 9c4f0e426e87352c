package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Maximum lengths for card text fields, applied after trimming.
const MaxCardTextLength = 500

// Card-specific validation errors.
var (
	// ErrCardIDEmpty is returned when a card ID is empty.
	ErrCardIDEmpty = fmt.Errorf("%w: card ID cannot be empty", ErrValidation)

	// ErrCardWordEmpty is returned when a card's word is empty after trimming.
	ErrCardWordEmpty = fmt.Errorf("%w: word cannot be empty", ErrValidation)

	// ErrCardWordTooLong is returned when a card's word exceeds the length limit.
	ErrCardWordTooLong = fmt.Errorf("%w: word must be %d characters or less", ErrValidation, MaxCardTextLength)

	// ErrCardTranslationEmpty is returned when a card's translation is empty after trimming.
	ErrCardTranslationEmpty = fmt.Errorf("%w: translation cannot be empty", ErrValidation)

	// ErrCardTranslationTooLong is returned when a card's translation exceeds the length limit.
	ErrCardTranslationTooLong = fmt.Errorf("%w: translation must be %d characters or less", ErrValidation, MaxCardTextLength)
)

// Card represents a single word/translation pair with review metadata.
// NextReviewAt is a device-local Unix timestamp in seconds and is not part
// of the wire contract; the remote store only carries the human label.
type Card struct {
	ID              string `json:"id"`
	Word            string `json:"word"`
	Translation     string `json:"translation"`
	LastRating      Rating `json:"lastRating,omitempty"`
	NextReviewLabel string `json:"nextReviewLabel,omitempty"`
	NextReviewAt    int64  `json:"-"`
	UpdatedAt       int64  `json:"updatedAt,omitempty"`
}

// NewCard creates a new Card with the given word and translation.
// Both fields are trimmed before validation. Returns a validation error
// if either field is empty or too long.
func NewCard(word, translation string) (*Card, error) {
	card := &Card{
		ID:          uuid.NewString(),
		Word:        strings.TrimSpace(word),
		Translation: strings.TrimSpace(translation),
		UpdatedAt:   NowMillis(),
	}

	if err := card.Validate(); err != nil {
		return nil, err
	}

	return card, nil
}

// Validate checks if the Card has valid data.
// Returns an error if any field fails validation.
func (c *Card) Validate() error {
	if c.ID == "" {
		return ErrCardIDEmpty
	}
	if err := ValidateCardText(c.Word, c.Translation); err != nil {
		return err
	}
	if c.LastRating != "" && !c.LastRating.Valid() {
		return ErrInvalidRating
	}
	return nil
}

// ValidateCardText validates a word/translation pair against the card
// content rules: non-empty after trimming, at most MaxCardTextLength runes.
func ValidateCardText(word, translation string) error {
	word = strings.TrimSpace(word)
	translation = strings.TrimSpace(translation)

	if word == "" {
		return ErrCardWordEmpty
	}
	if len([]rune(word)) > MaxCardTextLength {
		return ErrCardWordTooLong
	}
	if translation == "" {
		return ErrCardTranslationEmpty
	}
	if len([]rune(translation)) > MaxCardTextLength {
		return ErrCardTranslationTooLong
	}
	return nil
}

// IsValidationError reports whether err is any kind of domain validation error.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrValidation) || errors.Is(err, ErrInvalidRating)
}

// NowMillis returns the current time as a Unix timestamp in milliseconds.
// Deck and streak timestamps use this resolution on the wire.
func NowMillis() int64 {
	return time.Now().UnixMilli()
}
