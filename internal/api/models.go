package api

import (
	"github.com/google/uuid"
	"github.com/wordgym/wordgym-api/internal/domain"
)

// Auth payloads

// RegisterRequest is the payload for POST /api/auth/register.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=12,max=72"`
	Name     string `json:"name,omitempty" validate:"omitempty,max=100"`
}

// LoginRequest is the payload for POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest is the payload for POST /api/auth/refresh.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// AuthResponse carries a fresh token pair after register, login or refresh.
type AuthResponse struct {
	UserID       uuid.UUID `json:"userId"`
	Token        string    `json:"token"`
	RefreshToken string    `json:"refreshToken"`
}

// Deck payloads

// CreateDeckRequest is the payload for POST /api/decks.
type CreateDeckRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

// UpdateDeckRequest is the payload for PUT /api/decks/{id}.
type UpdateDeckRequest struct {
	Name       *string `json:"name,omitempty" validate:"omitempty,max=100"`
	IsFavorite *bool   `json:"isFavorite,omitempty"`
}

// CreateCardRequest is the payload for POST /api/decks/{id}/cards.
type CreateCardRequest struct {
	Word        string `json:"word" validate:"required,max=500"`
	Translation string `json:"translation" validate:"required,max=500"`
}

// UpdateCardRequest is the payload for PUT /api/decks/{deckID}/cards/{cardID}.
type UpdateCardRequest struct {
	Word        string `json:"word" validate:"required,max=500"`
	Translation string `json:"translation" validate:"required,max=500"`
}

// SyncDecksRequest is the payload for POST /api/decks/sync: the device's
// full deck set.
type SyncDecksRequest struct {
	Decks []domain.Deck `json:"decks"`
}

// DecksResponse wraps a deck list.
type DecksResponse struct {
	Decks []domain.Deck `json:"decks"`
}

// DeckResponse wraps a single deck.
type DeckResponse struct {
	Deck domain.Deck `json:"deck"`
}

// CardResponse wraps a single card.
type CardResponse struct {
	Card domain.Card `json:"card"`
}

// Streak payloads

// SyncStreakRequest is the payload for POST /api/streak/sync.
type SyncStreakRequest struct {
	Streak domain.StreakData `json:"streak"`
}

// StreakResponse wraps a streak record.
type StreakResponse struct {
	Streak domain.StreakData `json:"streak"`
}

// User payloads

// SyncUserRequest is the payload for POST /api/user/sync: profile details
// pushed from the device.
type SyncUserRequest struct {
	Email    string `json:"email" validate:"omitempty,email"`
	Name     string `json:"name,omitempty" validate:"omitempty,max=100"`
	ImageURL string `json:"imageUrl,omitempty" validate:"omitempty,url,max=500"`
}

// UserResponse wraps the user's own profile.
type UserResponse struct {
	User domain.User `json:"user"`
}
