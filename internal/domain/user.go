package domain

import (
	"errors"
	"strings"

	"github.com/google/uuid"
)

// User-specific validation errors.
var (
	ErrEmptyUserID         = errors.New("user ID cannot be empty")
	ErrEmptyEmail          = errors.New("email cannot be empty")
	ErrPasswordTooShort    = errors.New("password must be at least 12 characters long")
	ErrPasswordTooLong     = errors.New("password must be at most 72 characters long")
	ErrEmptyPassword       = errors.New("password cannot be empty")
	ErrEmptyHashedPassword = errors.New("hashed password cannot be empty")
)

// User represents a registered account on the remote store. Each user owns
// a collection of decks and a streak singleton; deleting the user cascades
// to both.
type User struct {
	ID             uuid.UUID `json:"id"`
	Email          string    `json:"email"`
	Name           string    `json:"name,omitempty"`
	ImageURL       string    `json:"imageUrl,omitempty"`
	Password       string    `json:"-"` // Plaintext, held only during registration/updates
	HashedPassword string    `json:"-"` // Never expose the hash in JSON
	CreatedAt      int64     `json:"createdAt"`
	LastLoginAt    int64     `json:"lastLoginAt,omitempty"`
}

// NewUser creates a new User with the given email and password.
// It generates a new UUID for the user ID and sets the creation timestamp.
// Returns an error if validation fails.
//
// The plaintext password is only carried on the struct; the caller is
// responsible for hashing it before storage.
func NewUser(email, password string) (*User, error) {
	now := NowMillis()
	user := &User{
		ID:          uuid.New(),
		Email:       strings.TrimSpace(email),
		Password:    password,
		CreatedAt:   now,
		LastLoginAt: now,
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}

	return user, nil
}

// Validate checks if the User has valid data.
// Returns an error if any field fails validation.
func (u *User) Validate() error {
	if u.ID == uuid.Nil {
		return ErrEmptyUserID
	}

	if u.Email == "" {
		return ErrEmptyEmail
	}
	if !validEmailFormat(u.Email) {
		return ErrInvalidEmail
	}

	if u.Password != "" {
		if err := ValidatePassword(u.Password); err != nil {
			return err
		}
	} else if u.HashedPassword == "" {
		return ErrEmptyPassword
	}

	return nil
}

// ValidatePassword checks a plaintext password against the length rules.
func ValidatePassword(password string) error {
	if password == "" {
		return ErrEmptyPassword
	}
	if len(password) < 12 {
		return ErrPasswordTooShort
	}
	// bcrypt's practical input limit
	if len(password) > 72 {
		return ErrPasswordTooLong
	}
	return nil
}

// validEmailFormat performs basic structural validation of an email
// address: a local part, an @, and a domain containing an interior dot.
func validEmailFormat(email string) bool {
	at := strings.IndexByte(email, '@')
	if at <= 0 || at == len(email)-1 {
		return false
	}
	domain := email[at+1:]
	dot := strings.IndexByte(domain, '.')
	return dot > 0 && dot < len(domain)-1
}
