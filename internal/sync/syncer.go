package sync

import (
	"context"
	"log/slog"
	stdsync "sync"
	"sync/atomic"
	"time"

	"github.com/wordgym/wordgym-api/internal/domain"
	"github.com/wordgym/wordgym-api/internal/local"
)

// State is the observable sync status. LastError is empty after a
// successful run.
type State struct {
	IsSyncing  bool   `json:"isSyncing"`
	LastSyncAt int64  `json:"lastSyncAt,omitempty"`
	LastError  string `json:"lastError,omitempty"`
}

// StateListener is invoked on every sync state change with a copy of the
// new state.
type StateListener func(State)

// Syncer reconciles the local store with the remote API. At most one sync
// runs at a time per Syncer; concurrent requests fail fast with
// ErrSyncInProgress. A failed run leaves the local store untouched.
type Syncer struct {
	local  *local.Store
	client Client
	logger *slog.Logger
	now    func() time.Time

	inFlight atomic.Bool

	mu        stdsync.Mutex
	state     State
	listeners map[int]StateListener
	nextID    int
}

// NewSyncer creates a Syncer over the given local store and remote client.
func NewSyncer(localStore *local.Store, client Client, log *slog.Logger) *Syncer {
	if localStore == nil {
		panic("local store cannot be nil")
	}
	if client == nil {
		panic("client cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}

	return &Syncer{
		local:     localStore,
		client:    client,
		logger:    log.With(slog.String("component", "syncer")),
		now:       time.Now,
		listeners: make(map[int]StateListener),
	}
}

// State returns a copy of the current sync state.
func (s *Syncer) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe registers a state listener and returns a function that
// removes it. Listeners run synchronously on the syncing goroutine.
func (s *Syncer) Subscribe(fn StateListener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.listeners[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

func (s *Syncer) setState(mutate func(*State)) {
	s.mu.Lock()
	mutate(&s.state)
	snapshot := s.state
	listeners := make([]StateListener, 0, len(s.listeners))
	for _, fn := range s.listeners {
		listeners = append(listeners, fn)
	}
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(snapshot)
	}
}

// Sync pushes the local deck set and streak to the remote API, which
// merges them and returns the merged state; that state then replaces the
// local store in one atomic commit. If another sync is already running,
// ErrSyncInProgress is returned immediately.
func (s *Syncer) Sync(ctx context.Context) error {
	if !s.inFlight.CompareAndSwap(false, true) {
		return ErrSyncInProgress
	}
	defer s.inFlight.Store(false)

	s.setState(func(st *State) {
		st.IsSyncing = true
		st.LastError = ""
	})

	err := s.run(ctx)
	if err != nil {
		s.logger.Warn("sync failed", slog.String("error", err.Error()))
		s.setState(func(st *State) {
			st.IsSyncing = false
			st.LastError = err.Error()
		})
		return err
	}

	s.setState(func(st *State) {
		st.IsSyncing = false
		st.LastSyncAt = s.now().UnixMilli()
		st.LastError = ""
	})
	s.logger.Info("sync completed")
	return nil
}

func (s *Syncer) run(ctx context.Context) error {
	mergedDecks, err := s.client.PushDecks(ctx, s.local.GetAllDecks())
	if err != nil {
		return newSyncError("push decks", err)
	}

	mergedStreak, err := s.client.PushStreak(ctx, s.local.Streak())
	if err != nil {
		return newSyncError("push streak", err)
	}

	if err := s.local.ReplaceAll(ctx, mergedDecks, mergedStreak); err != nil {
		return newSyncError("commit", err)
	}
	return nil
}

// SyncUser pushes the user's profile details to the remote API. Profile
// data is not part of the deck/streak merge and may be synced
// independently.
func (s *Syncer) SyncUser(ctx context.Context, user domain.User) error {
	if err := s.client.SyncUser(ctx, user); err != nil {
		return newSyncError("push user", err)
	}
	return nil
}

// DeleteAccount removes the remote account and then clears the local
// store. Deletion is refused while a sync is in flight.
func (s *Syncer) DeleteAccount(ctx context.Context) error {
	if !s.inFlight.CompareAndSwap(false, true) {
		return ErrSyncInProgress
	}
	defer s.inFlight.Store(false)

	if err := s.client.DeleteAccount(ctx); err != nil {
		return newSyncError("delete account", err)
	}
	if err := s.local.ReplaceAll(ctx, nil, domain.StreakData{}); err != nil {
		return newSyncError("clear local state", err)
	}

	s.setState(func(st *State) {
		st.LastSyncAt = 0
		st.LastError = ""
	})
	return nil
}
