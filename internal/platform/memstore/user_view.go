package memstore

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/wordgym/wordgym-api/internal/domain"
	"github.com/wordgym/wordgym-api/internal/store"
)

type userView struct{ s *Store }

var _ store.UserStore = (*userView)(nil)

func (v *userView) WithTx(tx *sql.Tx) store.UserStore { return v }

// Create hashes with bcrypt.MinCost: memory mode is for tests and degraded
// operation, not for protecting real credentials.
func (v *userView) Create(ctx context.Context, user *domain.User) error {
	if err := user.Validate(); err != nil {
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.MinCost)
	if err != nil {
		return err
	}
	user.HashedPassword = string(hashed)
	user.Password = ""
	if user.CreatedAt == 0 {
		user.CreatedAt = time.Now().UnixMilli()
	}

	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	if _, exists := v.s.byEmail[user.Email]; exists {
		return store.ErrEmailExists
	}
	v.s.users[user.ID] = *user
	v.s.byEmail[user.Email] = user.ID
	return nil
}

func (v *userView) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()

	user, ok := v.s.users[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	return &user, nil
}

func (v *userView) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()

	id, ok := v.s.byEmail[email]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	user := v.s.users[id]
	return &user, nil
}

func (v *userView) Update(ctx context.Context, user *domain.User) error {
	if user.Password != "" {
		if err := domain.ValidatePassword(user.Password); err != nil {
			return err
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.MinCost)
		if err != nil {
			return err
		}
		user.HashedPassword = string(hashed)
		user.Password = ""
	}

	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	existing, ok := v.s.users[user.ID]
	if !ok {
		return store.ErrUserNotFound
	}
	if existing.Email != user.Email {
		if _, taken := v.s.byEmail[user.Email]; taken {
			return store.ErrEmailExists
		}
		delete(v.s.byEmail, existing.Email)
		v.s.byEmail[user.Email] = user.ID
	}
	v.s.users[user.ID] = *user
	return nil
}

func (v *userView) Delete(ctx context.Context, id uuid.UUID) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	user, ok := v.s.users[id]
	if !ok {
		return store.ErrUserNotFound
	}
	delete(v.s.byEmail, user.Email)
	delete(v.s.users, id)
	return nil
}
