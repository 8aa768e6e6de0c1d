package notification

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/katatrina/blood-notify/internal/event"
	"github.com/katatrina/blood-notify/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	waitFor = 2 * time.Second
	tick    = 5 * time.Millisecond
)

// fakeBackend serves per-user notification lists. Mark-read and delete
// calls go through the embedded mock.
type fakeBackend struct {
	mock.Mock

	mu       sync.Mutex
	lists    map[string][]Notification
	fetchErr error
	fetches  int
	gate     chan struct{}
	started  chan string
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{lists: make(map[string][]Notification)}
}

func (f *fakeBackend) ListNotificationsByUser(_ context.Context, userID string) ([]Notification, error) {
	f.mu.Lock()
	f.fetches++
	list := slices.Clone(f.lists[userID])
	err := f.fetchErr
	gate, started := f.gate, f.started
	f.mu.Unlock()

	if started != nil {
		started <- userID
	}
	if gate != nil {
		<-gate
	}
	return list, err
}

func (f *fakeBackend) MarkNotificationRead(ctx context.Context, id string) error {
	return f.Called(ctx, id).Error(0)
}

func (f *fakeBackend) DeleteNotification(ctx context.Context, id string) error {
	return f.Called(ctx, id).Error(0)
}

func (f *fakeBackend) set(userID string, list []Notification) {
	f.mu.Lock()
	f.lists[userID] = list
	f.mu.Unlock()
}

func (f *fakeBackend) hold() (release func()) {
	gate := make(chan struct{})
	f.mu.Lock()
	f.gate = gate
	f.started = make(chan string, 16)
	f.mu.Unlock()
	return func() {
		f.mu.Lock()
		f.gate = nil
		f.mu.Unlock()
		close(gate)
	}
}

func (f *fakeBackend) startedFor() <-chan string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.started
}

func (f *fakeBackend) fetchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetches
}

func notificationsFor(userID string, n int, status ReadStatus) []Notification {
	list := make([]Notification, 0, n)
	for i := range n {
		list = append(list, Notification{
			ID:        fmt.Sprintf("%s-n%d", userID, i),
			Type:      TypeGeneral,
			Status:    status,
			IsRead:    status == StatusRead,
			Message:   "hello",
			User:      Recipient{ID: userID},
			CreatedAt: time.Now().Add(-time.Duration(i) * time.Minute),
		})
	}
	return list
}

type harness struct {
	sync    *Synchronizer
	backend *fakeBackend
	store   *session.Store
	refresh *event.RefreshSignal
	synced  *event.Bus[Synced]
}

func newHarness(t *testing.T, interval time.Duration) *harness {
	t.Helper()

	storage, err := session.NewFileStorage(t.TempDir())
	require.NoError(t, err)

	h := &harness{
		backend: newFakeBackend(),
		store:   session.NewStore(storage),
		refresh: event.NewRefreshSignal(),
		synced:  event.NewBus[Synced]("notificationsSynced"),
	}
	h.sync, err = NewSynchronizer(h.backend, h.store, h.refresh, h.synced, interval)
	require.NoError(t, err)
	t.Cleanup(func() { _ = h.sync.Close() })
	return h
}

func (h *harness) signIn(t *testing.T, userID string) {
	t.Helper()
	require.NoError(t, h.store.SetFromBackend(context.Background(), &session.UserProfile{ID: userID, Role: session.RoleUser}))
}

func (h *harness) waitSynced(t *testing.T, unread int) Snapshot {
	t.Helper()
	require.Eventually(t, func() bool {
		snap := h.sync.Snapshot()
		return snap.State == StateSynced && snap.Unread == unread && !snap.LastSynced.IsZero()
	}, waitFor, tick)
	return h.sync.Snapshot()
}

func TestSynchronizer_InitialFetch(t *testing.T) {
	h := newHarness(t, time.Hour)
	h.backend.set("A", notificationsFor("A", 3, StatusUnread))
	h.signIn(t, "A")

	synced := make(chan Synced, 4)
	h.synced.Subscribe(func(s Synced) { synced <- s })

	h.sync.Start()

	snap := h.waitSynced(t, 3)
	assert.Equal(t, "A", snap.UserID)
	assert.Len(t, snap.Notifications, 3)
	assert.False(t, snap.Open)

	select {
	case s := <-synced:
		assert.Equal(t, "A", s.UserID)
		assert.Equal(t, 3, s.Unread)
	case <-time.After(waitFor):
		t.Fatal("no sync event published")
	}
}

func TestSynchronizer_IdleWithoutUser(t *testing.T) {
	h := newHarness(t, 10*time.Millisecond)
	h.sync.Start()

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, StateIdle, h.sync.Snapshot().State)
	assert.Zero(t, h.backend.fetchCount())
	assert.ErrorIs(t, h.sync.Refresh(), ErrNoUser)
}

func TestSynchronizer_Polls(t *testing.T) {
	h := newHarness(t, 20*time.Millisecond)
	h.backend.set("A", notificationsFor("A", 1, StatusUnread))
	h.signIn(t, "A")
	h.sync.Start()

	require.Eventually(t, func() bool { return h.backend.fetchCount() >= 3 }, waitFor, tick)

	// Server state wins on the next poll.
	h.backend.set("A", notificationsFor("A", 2, StatusUnread))
	h.waitSynced(t, 2)
}

func TestSynchronizer_UserSwitchClearsCacheBeforeFetch(t *testing.T) {
	h := newHarness(t, time.Hour)
	h.backend.set("A", notificationsFor("A", 3, StatusUnread))
	h.backend.set("B", notificationsFor("B", 1, StatusUnread))
	h.signIn(t, "A")
	h.sync.Start()
	h.waitSynced(t, 3)

	release := h.backend.hold()
	h.signIn(t, "B")

	// The reset happens inside SetFromBackend, before B's fetch resolves.
	snap := h.sync.Snapshot()
	assert.Equal(t, "B", snap.UserID)
	assert.Empty(t, snap.Notifications)
	assert.Zero(t, snap.Unread)
	assert.Equal(t, StateSyncing, snap.State)

	select {
	case id := <-h.backend.startedFor():
		assert.Equal(t, "B", id)
	case <-time.After(waitFor):
		t.Fatal("fetch for B never started")
	}
	assert.Empty(t, h.sync.Snapshot().Notifications)

	release()
	snap = h.waitSynced(t, 1)
	for _, n := range snap.Notifications {
		assert.Equal(t, "B", n.User.ID)
	}
}

func TestSynchronizer_StaleFetchIsDropped(t *testing.T) {
	h := newHarness(t, time.Hour)
	h.backend.set("A", notificationsFor("A", 3, StatusUnread))
	h.backend.set("B", notificationsFor("B", 2, StatusUnread))
	h.signIn(t, "A")
	h.sync.Start()
	h.waitSynced(t, 3)

	release := h.backend.hold()
	done := make(chan struct{})
	go func() {
		h.sync.Sync(context.Background())
		close(done)
	}()
	<-h.backend.startedFor()

	// B's scheduled fetch is skipped because A's is still in flight; the
	// running cycle picks B up once A's result is dropped.
	h.signIn(t, "B")
	release()
	<-done

	snap := h.waitSynced(t, 2)
	assert.Equal(t, "B", snap.UserID)
	for _, n := range snap.Notifications {
		assert.Equal(t, "B", n.User.ID)
	}
}

func TestSynchronizer_SignOutStopsPolling(t *testing.T) {
	h := newHarness(t, 10*time.Millisecond)
	h.backend.set("A", notificationsFor("A", 2, StatusUnread))
	h.signIn(t, "A")
	h.sync.Start()
	h.waitSynced(t, 2)

	require.NoError(t, h.store.Clear(context.Background()))

	snap := h.sync.Snapshot()
	assert.Equal(t, StateIdle, snap.State)
	assert.Empty(t, snap.Notifications)
	assert.Zero(t, snap.Unread)

	// Allow a tick that was already running to drain.
	time.Sleep(30 * time.Millisecond)
	count := h.backend.fetchCount()
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, count, h.backend.fetchCount())
	assert.Equal(t, StateIdle, h.sync.Snapshot().State)
}

func TestSynchronizer_DiscardsForeignEntries(t *testing.T) {
	h := newHarness(t, time.Hour)
	list := append(notificationsFor("A", 2, StatusUnread), notificationsFor("X", 1, StatusUnread)...)
	list = append(list, Notification{ID: "orphan", Type: TypeGeneral, Status: StatusUnread})
	h.backend.set("A", list)
	h.signIn(t, "A")
	h.sync.Start()

	snap := h.waitSynced(t, 2)
	require.Len(t, snap.Notifications, 2)
	for _, n := range snap.Notifications {
		assert.Equal(t, "A", n.User.ID)
	}
}

func TestSynchronizer_ConcurrentSignInsEndOnLastUser(t *testing.T) {
	h := newHarness(t, time.Hour)
	h.backend.set("A", notificationsFor("A", 2, StatusUnread))
	h.backend.set("B", notificationsFor("B", 1, StatusUnread))
	h.sync.Start()

	entered := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	h.store.Subscribe(func(session.Change) {
		once.Do(func() {
			close(entered)
			<-release
		})
	})

	ctx := context.Background()
	doneA := make(chan error, 1)
	go func() {
		doneA <- h.store.SetFromBackend(ctx, &session.UserProfile{ID: "A", Role: session.RoleUser})
	}()
	<-entered

	doneB := make(chan error, 1)
	go func() {
		doneB <- h.store.SetFromBackend(ctx, &session.UserProfile{ID: "B", Role: session.RoleUser})
	}()
	time.Sleep(20 * time.Millisecond)
	close(release)
	require.NoError(t, <-doneA)
	require.NoError(t, <-doneB)

	require.Equal(t, "B", h.store.Get().ID)
	snap := h.waitSynced(t, 1)
	assert.Equal(t, "B", snap.UserID)
	require.Len(t, snap.Notifications, 1)
	assert.Equal(t, "B-n0", snap.Notifications[0].ID)
}

func TestSynchronizer_LateChangeEventFollowsCurrentSession(t *testing.T) {
	h := newHarness(t, time.Hour)
	h.backend.set("A", notificationsFor("A", 2, StatusUnread))
	h.backend.set("B", notificationsFor("B", 1, StatusUnread))
	h.signIn(t, "B")
	h.sync.Start()
	h.waitSynced(t, 1)

	// An event naming A arrives after B already signed in.
	h.sync.onSessionChange(session.Change{Current: &session.UserProfile{ID: "A"}})

	snap := h.waitSynced(t, 1)
	assert.Equal(t, "B", snap.UserID)
	for _, n := range snap.Notifications {
		assert.Equal(t, "B", n.User.ID)
	}
}

func TestSynchronizer_FetchFailureEmptiesCache(t *testing.T) {
	h := newHarness(t, time.Hour)
	h.backend.set("A", notificationsFor("A", 2, StatusUnread))
	h.signIn(t, "A")
	h.sync.Start()
	h.waitSynced(t, 2)

	h.backend.mu.Lock()
	h.backend.fetchErr = errors.New("connection refused")
	h.backend.mu.Unlock()

	before := h.backend.fetchCount()
	require.NoError(t, h.sync.Refresh())
	require.Eventually(t, func() bool {
		return h.backend.fetchCount() > before && len(h.sync.Snapshot().Notifications) == 0
	}, waitFor, tick)

	snap := h.sync.Snapshot()
	assert.Zero(t, snap.Unread)
	assert.Equal(t, StateSynced, snap.State)
}

func TestSynchronizer_SkipsWhileInFlight(t *testing.T) {
	h := newHarness(t, time.Hour)
	h.backend.set("A", notificationsFor("A", 1, StatusUnread))
	h.signIn(t, "A")
	h.sync.Start()
	h.waitSynced(t, 1)

	release := h.backend.hold()
	done := make(chan struct{})
	go func() {
		h.sync.Sync(context.Background())
		close(done)
	}()
	<-h.backend.startedFor()

	count := h.backend.fetchCount()
	h.sync.Sync(context.Background())
	assert.Equal(t, count, h.backend.fetchCount())

	release()
	<-done
}

func TestSynchronizer_RefreshSignal(t *testing.T) {
	h := newHarness(t, time.Hour)
	h.backend.set("A", notificationsFor("A", 1, StatusUnread))
	h.signIn(t, "A")

	assert.False(t, h.refresh.Registered())
	h.sync.Start()
	assert.True(t, h.refresh.Registered())
	h.waitSynced(t, 1)

	h.backend.set("A", notificationsFor("A", 4, StatusUnread))
	assert.True(t, h.refresh.Trigger())
	h.waitSynced(t, 4)

	require.NoError(t, h.sync.Close())
	assert.False(t, h.refresh.Registered())
	assert.False(t, h.refresh.Trigger())
}

func TestSynchronizer_RefreshSlotNotClearedByStaleInstance(t *testing.T) {
	first := newHarness(t, time.Hour)
	first.sync.Start()

	second, err := NewSynchronizer(first.backend, first.store, first.refresh, first.synced, time.Hour)
	require.NoError(t, err)
	t.Cleanup(func() { _ = second.Close() })
	second.Start()

	require.NoError(t, first.sync.Close())
	assert.True(t, first.refresh.Registered())
}

func TestSynchronizer_CloseDropsLateFetch(t *testing.T) {
	h := newHarness(t, time.Hour)
	h.backend.set("A", notificationsFor("A", 2, StatusUnread))
	h.signIn(t, "A")
	h.sync.Start()
	before := h.waitSynced(t, 2)

	release := h.backend.hold()
	h.backend.set("A", notificationsFor("A", 5, StatusUnread))
	done := make(chan struct{})
	go func() {
		h.sync.Sync(context.Background())
		close(done)
	}()
	<-h.backend.startedFor()

	require.NoError(t, h.sync.Close())
	release()
	<-done

	after := h.sync.Snapshot()
	assert.Equal(t, before.Unread, after.Unread)
	assert.Equal(t, before.Notifications, after.Notifications)
	assert.Equal(t, before.LastSynced, after.LastSynced)

	// Session changes after teardown are ignored too.
	h.signIn(t, "B")
	assert.Equal(t, "A", h.sync.Snapshot().UserID)
}

func TestSynchronizer_OpenMarksAllRead(t *testing.T) {
	h := newHarness(t, time.Hour)
	h.backend.set("A", notificationsFor("A", 3, StatusUnread))
	h.backend.On("MarkNotificationRead", mock.Anything, mock.Anything).Return(errors.New("503"))
	h.signIn(t, "A")
	h.sync.Start()
	h.waitSynced(t, 3)

	err := h.sync.Open(context.Background())
	assert.Error(t, err)
	h.backend.AssertNumberOfCalls(t, "MarkNotificationRead", 3)
	for _, id := range []string{"A-n0", "A-n1", "A-n2"} {
		h.backend.AssertCalled(t, "MarkNotificationRead", mock.Anything, id)
	}

	snap := h.sync.Snapshot()
	assert.True(t, snap.Open)
	assert.Zero(t, snap.Unread)
	require.Len(t, snap.Notifications, 3)
	for _, n := range snap.Notifications {
		assert.Equal(t, StatusRead, n.Status)
		assert.True(t, n.IsRead)
	}

	// Opening an open panel does nothing.
	require.NoError(t, h.sync.Open(context.Background()))
	h.backend.AssertNumberOfCalls(t, "MarkNotificationRead", 3)
}

func TestSynchronizer_MarkOnlyUnread(t *testing.T) {
	h := newHarness(t, time.Hour)
	list := append(notificationsFor("A", 2, StatusUnread), Notification{ID: "old", Status: StatusRead, IsRead: true, User: Recipient{ID: "A"}})
	h.backend.set("A", list)
	h.backend.On("MarkNotificationRead", mock.Anything, mock.Anything).Return(nil)
	h.signIn(t, "A")
	h.sync.Start()
	h.waitSynced(t, 2)

	require.NoError(t, h.sync.MarkAllRead(context.Background()))
	h.backend.AssertNumberOfCalls(t, "MarkNotificationRead", 2)
	h.backend.AssertNotCalled(t, "MarkNotificationRead", mock.Anything, "old")
}

func TestSynchronizer_MarkAllReadKeepsEntriesFetchedMeanwhile(t *testing.T) {
	h := newHarness(t, time.Hour)
	h.backend.set("A", notificationsFor("A", 1, StatusUnread))
	h.signIn(t, "A")
	h.sync.Start()
	h.waitSynced(t, 1)

	fresh := Notification{ID: "fresh", Type: TypeGeneral, Status: StatusUnread, User: Recipient{ID: "A"}}
	h.backend.On("MarkNotificationRead", mock.Anything, "A-n0").Run(func(mock.Arguments) {
		h.backend.set("A", append(notificationsFor("A", 1, StatusUnread), fresh))
		deadline := time.Now().Add(waitFor)
		for time.Now().Before(deadline) && len(h.sync.Snapshot().Notifications) < 2 {
			h.sync.Sync(context.Background())
			time.Sleep(tick)
		}
	}).Return(nil)

	require.NoError(t, h.sync.MarkAllRead(context.Background()))
	h.backend.AssertNotCalled(t, "MarkNotificationRead", mock.Anything, "fresh")

	snap := h.sync.Snapshot()
	require.Len(t, snap.Notifications, 2)
	assert.Equal(t, 1, snap.Unread)
	for _, n := range snap.Notifications {
		if n.ID == "fresh" {
			assert.True(t, n.Unread())
		} else {
			assert.Equal(t, StatusRead, n.Status)
		}
	}
}

func TestSynchronizer_MarkAllReadIdempotent(t *testing.T) {
	h := newHarness(t, time.Hour)
	h.backend.set("A", notificationsFor("A", 2, StatusRead))
	h.signIn(t, "A")
	h.sync.Start()
	before := h.waitSynced(t, 0)

	require.NoError(t, h.sync.MarkAllRead(context.Background()))
	h.backend.AssertNotCalled(t, "MarkNotificationRead", mock.Anything, mock.Anything)

	after := h.sync.Snapshot()
	assert.Equal(t, before, after)
}

func TestSynchronizer_Toggle(t *testing.T) {
	h := newHarness(t, time.Hour)
	h.backend.set("A", notificationsFor("A", 1, StatusRead))
	h.signIn(t, "A")
	h.sync.Start()
	h.waitSynced(t, 0)

	open, err := h.sync.Toggle(context.Background())
	require.NoError(t, err)
	assert.True(t, open)
	assert.True(t, h.sync.Snapshot().Open)

	open, err = h.sync.Toggle(context.Background())
	require.NoError(t, err)
	assert.False(t, open)
	assert.False(t, h.sync.Snapshot().Open)
}

func TestSynchronizer_ClearAll(t *testing.T) {
	h := newHarness(t, time.Hour)
	h.backend.set("A", notificationsFor("A", 4, StatusUnread))
	h.backend.On("DeleteNotification", mock.Anything, mock.Anything).Return(errors.New("timeout"))
	h.backend.On("MarkNotificationRead", mock.Anything, mock.Anything).Return(nil)
	h.signIn(t, "A")
	h.sync.Start()
	h.waitSynced(t, 4)
	require.NoError(t, h.sync.Open(context.Background()))

	err := h.sync.ClearAll(context.Background())
	assert.Error(t, err)
	h.backend.AssertNumberOfCalls(t, "DeleteNotification", 4)

	snap := h.sync.Snapshot()
	assert.Empty(t, snap.Notifications)
	assert.Zero(t, snap.Unread)
	assert.False(t, snap.Open)
}

func TestSynchronizer_ClearAllWithoutUser(t *testing.T) {
	h := newHarness(t, time.Hour)
	h.sync.Start()

	require.NoError(t, h.sync.ClearAll(context.Background()))
	h.backend.AssertNotCalled(t, "DeleteNotification", mock.Anything, mock.Anything)
}
