package sync

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wordgym/wordgym-api/internal/domain"
	"github.com/wordgym/wordgym-api/internal/local"
	"github.com/wordgym/wordgym-api/internal/platform/memstore"
)

// fakeClient merges server-side the same way the real API does, or fails
// on demand.
type fakeClient struct {
	remoteDecks  []domain.Deck
	remoteStreak domain.StreakData
	now          int64

	failPushDecks  error
	failPushStreak error
	pushDeckCalls  int
	release        chan struct{} // when set, PushDecks blocks until closed
}

var _ Client = (*fakeClient)(nil)

func (f *fakeClient) FetchDecks(ctx context.Context) ([]domain.Deck, error) {
	return f.remoteDecks, nil
}

func (f *fakeClient) PushDecks(ctx context.Context, decks []domain.Deck) ([]domain.Deck, error) {
	f.pushDeckCalls++
	if f.release != nil {
		<-f.release
	}
	if f.failPushDecks != nil {
		return nil, f.failPushDecks
	}
	result := MergeDecks(decks, f.remoteDecks, f.now)
	f.remoteDecks = result.Decks
	return result.Decks, nil
}

func (f *fakeClient) FetchStreak(ctx context.Context) (domain.StreakData, error) {
	return f.remoteStreak, nil
}

func (f *fakeClient) PushStreak(ctx context.Context, streak domain.StreakData) (domain.StreakData, error) {
	if f.failPushStreak != nil {
		return domain.StreakData{}, f.failPushStreak
	}
	f.remoteStreak = MergeStreaks(streak, f.remoteStreak, f.now)
	return f.remoteStreak, nil
}

func (f *fakeClient) SyncUser(ctx context.Context, user domain.User) error { return nil }

func (f *fakeClient) DeleteAccount(ctx context.Context) error { return nil }

func newLocalStore(t *testing.T) *local.Store {
	t.Helper()

	mem := memstore.New()
	s, err := local.New(context.Background(), local.Backend{
		Decks:    mem.Decks(),
		Streaks:  mem.Streaks(),
		Sessions: mem.Sessions(),
		Runner:   mem.Runner(),
	}, uuid.New(), nil)
	require.NoError(t, err)
	return s
}

func TestSyncCommitsMergedState(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	localStore := newLocalStore(t)
	_, err := localStore.AddDeck(ctx, "Local Deck")
	require.NoError(t, err)

	remote := domain.Deck{ID: "remote-1", Name: "Remote Deck", Cards: []domain.Card{}, CreatedAt: 1, UpdatedAt: 1}
	client := &fakeClient{
		remoteDecks:  []domain.Deck{remote},
		remoteStreak: domain.StreakData{CurrentStreak: 2, BestStreak: 6, LastStudyDate: "2026-08-25"},
		now:          50_000,
	}

	syncer := NewSyncer(localStore, client, nil)
	require.NoError(t, syncer.Sync(ctx))

	decks := localStore.GetAllDecks()
	require.Len(t, decks, 2)
	assert.Equal(t, 6, localStore.Streak().BestStreak)

	state := syncer.State()
	assert.False(t, state.IsSyncing)
	assert.NotZero(t, state.LastSyncAt)
	assert.Empty(t, state.LastError)
}

func TestSyncFailureLeavesLocalUntouched(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	localStore := newLocalStore(t)
	deck, err := localStore.AddDeck(ctx, "Only Deck")
	require.NoError(t, err)

	client := &fakeClient{failPushDecks: errors.New("network down")}
	syncer := NewSyncer(localStore, client, nil)

	err = syncer.Sync(ctx)
	require.Error(t, err)

	var syncErr *SyncError
	require.ErrorAs(t, err, &syncErr)
	assert.Equal(t, "push decks", syncErr.Op)

	decks := localStore.GetAllDecks()
	require.Len(t, decks, 1)
	assert.Equal(t, deck.ID, decks[0].ID)

	state := syncer.State()
	assert.False(t, state.IsSyncing)
	assert.Contains(t, state.LastError, "network down")
	assert.Zero(t, state.LastSyncAt)
}

func TestSyncStreakFailureLeavesLocalUntouched(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	localStore := newLocalStore(t)
	require.NoError(t, localStore.RecordStudySession(ctx, 3))

	client := &fakeClient{failPushStreak: errors.New("boom")}
	syncer := NewSyncer(localStore, client, nil)

	err := syncer.Sync(ctx)
	var syncErr *SyncError
	require.ErrorAs(t, err, &syncErr)
	assert.Equal(t, "push streak", syncErr.Op)
	assert.Equal(t, 1, localStore.Streak().CurrentStreak)
}

func TestSyncSingleFlight(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	localStore := newLocalStore(t)

	release := make(chan struct{})
	client := &fakeClient{release: release, now: 50_000}
	syncer := NewSyncer(localStore, client, nil)

	firstDone := make(chan error, 1)
	go func() { firstDone <- syncer.Sync(ctx) }()

	// Wait until the first sync is inside PushDecks.
	require.Eventually(t, func() bool {
		return syncer.State().IsSyncing
	}, time.Second, 5*time.Millisecond)

	assert.ErrorIs(t, syncer.Sync(ctx), ErrSyncInProgress)

	close(release)
	require.NoError(t, <-firstDone)
	assert.Equal(t, 1, client.pushDeckCalls)

	// A new sync is allowed once the first completes.
	require.NoError(t, syncer.Sync(ctx))
}

func TestSyncStateListener(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	localStore := newLocalStore(t)
	client := &fakeClient{now: 50_000}
	syncer := NewSyncer(localStore, client, nil)

	var states []State
	unsubscribe := syncer.Subscribe(func(st State) { states = append(states, st) })
	defer unsubscribe()

	require.NoError(t, syncer.Sync(ctx))

	require.Len(t, states, 2)
	assert.True(t, states[0].IsSyncing)
	assert.False(t, states[1].IsSyncing)
	assert.NotZero(t, states[1].LastSyncAt)
}

func TestDeleteAccountClearsLocalState(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	localStore := newLocalStore(t)
	_, err := localStore.AddDeck(ctx, "Doomed")
	require.NoError(t, err)
	require.NoError(t, localStore.RecordStudySession(ctx, 2))

	syncer := NewSyncer(localStore, &fakeClient{}, nil)
	require.NoError(t, syncer.DeleteAccount(ctx))

	assert.Empty(t, localStore.GetAllDecks())
	assert.Zero(t, localStore.Streak().CurrentStreak)
}
