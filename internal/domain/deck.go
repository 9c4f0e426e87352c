package domain

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// MaxDeckNameLength is the maximum deck name length, applied after trimming.
const MaxDeckNameLength = 100

// Deck-specific validation errors.
var (
	// ErrDeckIDEmpty is returned when a deck ID is empty.
	ErrDeckIDEmpty = fmt.Errorf("%w: deck ID cannot be empty", ErrValidation)

	// ErrDeckNameEmpty is returned when a deck name is empty after trimming.
	ErrDeckNameEmpty = fmt.Errorf("%w: deck name cannot be empty", ErrValidation)

	// ErrDeckNameTooLong is returned when a deck name exceeds the length limit.
	ErrDeckNameTooLong = fmt.Errorf("%w: deck name must be %d characters or less", ErrValidation, MaxDeckNameLength)
)

// Deck represents a named collection of flashcards. Cards are kept in
// insertion order, newest first. UpdatedAt is a Unix millisecond timestamp
// and is the sole authority for merge ordering: every mutation to a deck or
// its cards must bump it to the mutation time.
type Deck struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Cards      []Card `json:"cards"`
	IsFavorite bool   `json:"isFavorite"`
	CreatedAt  int64  `json:"createdAt,omitempty"`
	UpdatedAt  int64  `json:"updatedAt,omitempty"`
}

// NewDeck creates a new empty Deck with the given name.
// The name is trimmed before validation. Returns a validation error if the
// name is empty or too long.
func NewDeck(name string) (*Deck, error) {
	now := NowMillis()
	deck := &Deck{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(name),
		Cards:     []Card{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := deck.Validate(); err != nil {
		return nil, err
	}

	return deck, nil
}

// Validate checks if the Deck has valid data.
// Returns an error if any field fails validation.
func (d *Deck) Validate() error {
	if d.ID == "" {
		return ErrDeckIDEmpty
	}
	if err := ValidateDeckName(d.Name); err != nil {
		return err
	}
	for i := range d.Cards {
		if err := d.Cards[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}

// ValidateDeckName validates a deck name: non-empty after trimming,
// at most MaxDeckNameLength runes.
func ValidateDeckName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrDeckNameEmpty
	}
	if len([]rune(name)) > MaxDeckNameLength {
		return ErrDeckNameTooLong
	}
	return nil
}

// Touch bumps the deck's UpdatedAt to now.
func (d *Deck) Touch() {
	d.UpdatedAt = NowMillis()
}

// FindCard returns the index of the card with the given ID, or -1.
func (d *Deck) FindCard(cardID string) int {
	for i := range d.Cards {
		if d.Cards[i].ID == cardID {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy of the deck. The Local Store hands clones to
// callers so the mirror is never aliased by outside code.
func (d *Deck) Clone() *Deck {
	out := *d
	out.Cards = make([]Card, len(d.Cards))
	copy(out.Cards, d.Cards)
	return &out
}
