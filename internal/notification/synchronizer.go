package notification

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/katatrina/blood-notify/internal/event"
	"github.com/katatrina/blood-notify/internal/session"
	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/pool"
)

const DefaultPollInterval = 5 * time.Second

var ErrNoUser = errors.New("no user signed in")

type State string

const (
	StateIdle    State = "IDLE"
	StateSyncing State = "SYNCING"
	StateSynced  State = "SYNCED"
)

// Backend is the part of the REST facade the synchronizer uses.
type Backend interface {
	ListNotificationsByUser(ctx context.Context, userID string) ([]Notification, error)
	MarkNotificationRead(ctx context.Context, id string) error
	DeleteNotification(ctx context.Context, id string) error
}

// Sessions is the view of the session store the synchronizer observes.
type Sessions interface {
	Get() *session.UserProfile
	Subscribe(fn func(session.Change)) *event.Subscription
}

// Synced is published after every successful fetch.
type Synced struct {
	UserID        string         `json:"userId"`
	Notifications []Notification `json:"notifications"`
	Unread        int            `json:"unread"`
	At            time.Time      `json:"at"`
}

// Snapshot is a copy of the synchronizer state.
type Snapshot struct {
	State         State          `json:"state"`
	UserID        string         `json:"userId,omitempty"`
	Open          bool           `json:"open"`
	Unread        int            `json:"unread"`
	Notifications []Notification `json:"notifications"`
	LastSynced    time.Time      `json:"lastSynced"`
}

// Synchronizer keeps a polled copy of the current user's notifications.
type Synchronizer struct {
	backend  Backend
	sessions Sessions
	refresh  *event.RefreshSignal
	synced   *event.Bus[Synced]
	interval time.Duration

	scheduler gocron.Scheduler
	ctx       context.Context
	cancel    context.CancelFunc

	// jobMu serializes polling job replacement.
	jobMu sync.Mutex
	job   gocron.Job

	mu            sync.Mutex
	generation    uint64
	closed        bool
	userID        string
	state         State
	notifications []Notification
	unread        int
	open          bool
	lastSynced    time.Time

	inFlight   atomic.Bool
	sub        *event.Subscription
	deregister func()
}

// NewSynchronizer creates a synchronizer. Nothing is fetched until Start.
func NewSynchronizer(backend Backend, sessions Sessions, refresh *event.RefreshSignal, synced *event.Bus[Synced], interval time.Duration) (*Synchronizer, error) {
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Synchronizer{
		backend:   backend,
		sessions:  sessions,
		refresh:   refresh,
		synced:    synced,
		interval:  interval,
		scheduler: scheduler,
		ctx:       ctx,
		cancel:    cancel,
		state:     StateIdle,
	}, nil
}

// Start begins observing the session, registers as the refresh target and
// starts polling if a user is already signed in.
func (s *Synchronizer) Start() {
	s.scheduler.Start()
	s.deregister = s.refresh.Register(func() {
		if err := s.Refresh(); err != nil {
			log.Debug().Err(err).Msg("refresh ignored")
		}
	})
	s.sub = s.sessions.Subscribe(s.onSessionChange)
	s.switchUser()
}

// Close stops polling and detaches from the session and refresh signal.
// Fetches still in flight are discarded when they complete.
func (s *Synchronizer) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.generation++
	s.mu.Unlock()

	s.sub.Unsubscribe()
	if s.deregister != nil {
		s.deregister()
	}
	s.cancel()

	s.jobMu.Lock()
	s.job = nil
	s.jobMu.Unlock()
	return s.scheduler.Shutdown()
}

func (s *Synchronizer) onSessionChange(c session.Change) {
	if !c.UserChanged() {
		return
	}
	s.switchUser()
}

// switchUser drops everything cached for the previous user before the
// first fetch for whoever is signed in now is scheduled. The user is read
// from the session under jobMu, never from the change event.
func (s *Synchronizer) switchUser() {
	s.jobMu.Lock()
	defer s.jobMu.Unlock()

	userID := userIDOf(s.sessions.Get())

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.generation++
	s.userID = userID
	s.notifications = nil
	s.unread = 0
	s.open = false
	s.lastSynced = time.Time{}
	s.state = StateIdle
	if userID != "" {
		s.state = StateSyncing
	}
	s.mu.Unlock()

	if s.job != nil {
		if err := s.scheduler.RemoveJob(s.job.ID()); err != nil {
			log.Warn().Err(err).Msg("failed to remove notification polling job")
		}
		s.job = nil
	}

	if userID == "" {
		log.Debug().Msg("notification polling stopped, no user")
		return
	}

	job, err := s.scheduler.NewJob(
		gocron.DurationJob(s.interval),
		gocron.NewTask(func() {
			s.Sync(s.ctx)
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
		gocron.WithName("notifications:"+userID),
	)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("failed to schedule notification polling")
		return
	}
	s.job = job

	log.Info().
		Str("user_id", userID).
		Dur("interval", s.interval).
		Msg("notification polling started")
}

// Refresh runs one fetch cycle now instead of waiting for the next tick.
func (s *Synchronizer) Refresh() error {
	s.jobMu.Lock()
	job := s.job
	s.jobMu.Unlock()

	if job == nil {
		return ErrNoUser
	}
	return job.RunNow()
}

// Sync runs one fetch cycle. A call made while another fetch is in flight
// returns immediately. Fetch errors empty the cache and are not returned.
func (s *Synchronizer) Sync(ctx context.Context) {
	if !s.inFlight.CompareAndSwap(false, true) {
		log.Debug().Msg("notification fetch already in flight, skipping")
		return
	}
	defer s.inFlight.Store(false)

	for {
		s.mu.Lock()
		if s.closed || s.userID == "" {
			s.mu.Unlock()
			return
		}
		generation, userID := s.generation, s.userID
		s.state = StateSyncing
		s.mu.Unlock()

		list, err := s.backend.ListNotificationsByUser(ctx, userID)
		if s.apply(generation, userID, list, err) {
			return
		}
		// The user changed while the fetch was in flight. Fetch again for
		// whoever is signed in now.
	}
}

// apply stores a fetch result. It reports false when the result belongs
// to an older generation and was dropped.
func (s *Synchronizer) apply(generation uint64, userID string, list []Notification, fetchErr error) bool {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return true
	}
	if generation != s.generation {
		s.mu.Unlock()
		log.Debug().Str("user_id", userID).Msg("dropping stale notification fetch")
		return false
	}

	if fetchErr != nil {
		s.notifications = nil
		s.unread = 0
		s.state = StateSynced
		s.mu.Unlock()
		log.Warn().Err(fetchErr).Str("user_id", userID).Msg("failed to fetch notifications")
		return true
	}

	owned := make([]Notification, 0, len(list))
	for _, n := range list {
		if n.User.ID != userID {
			log.Warn().
				Str("user_id", userID).
				Str("notification_id", n.ID).
				Str("owner_id", n.User.ID).
				Msg("discarding notification not addressed to the current user")
			continue
		}
		owned = append(owned, n)
	}

	s.notifications = owned
	s.unread = countUnread(owned)
	s.state = StateSynced
	s.lastSynced = time.Now()
	synced := Synced{
		UserID:        userID,
		Notifications: slices.Clone(owned),
		Unread:        s.unread,
		At:            s.lastSynced,
	}
	s.mu.Unlock()

	if s.synced != nil {
		s.synced.Publish(synced)
	}
	return true
}

// Open moves the panel to open. Opening with unread entries marks them all
// read, see MarkAllRead.
func (s *Synchronizer) Open(ctx context.Context) error {
	s.mu.Lock()
	if s.open {
		s.mu.Unlock()
		return nil
	}
	s.open = true
	s.mu.Unlock()

	return s.MarkAllRead(ctx)
}

// ClosePanel moves the panel to closed.
func (s *Synchronizer) ClosePanel() {
	s.mu.Lock()
	s.open = false
	s.mu.Unlock()
}

// Toggle flips the panel and reports whether it is now open.
func (s *Synchronizer) Toggle(ctx context.Context) (bool, error) {
	s.mu.Lock()
	open := s.open
	s.mu.Unlock()

	if open {
		s.ClosePanel()
		return false, nil
	}
	return true, s.Open(ctx)
}

// MarkAllRead sends one mark-read request per unread entry concurrently.
// Once every request settles, the cache is marked read regardless of
// individual failures and the joined error is returned. Nothing happens
// when there is nothing unread.
func (s *Synchronizer) MarkAllRead(ctx context.Context) error {
	s.mu.Lock()
	if s.userID == "" || s.unread == 0 {
		s.mu.Unlock()
		return nil
	}
	generation := s.generation
	var ids []string
	for _, n := range s.notifications {
		if n.Unread() {
			ids = append(ids, n.ID)
		}
	}
	s.mu.Unlock()

	err := s.fanOut(ids, func(id string) error {
		return s.backend.MarkNotificationRead(ctx, id)
	})

	// A poll may have replaced the cache during the fan-out. Only entries
	// that were sent are flipped.
	s.mu.Lock()
	if generation == s.generation {
		for i := range s.notifications {
			if slices.Contains(ids, s.notifications[i].ID) {
				s.notifications[i].Status = StatusRead
				s.notifications[i].IsRead = true
			}
		}
		s.unread = countUnread(s.notifications)
	}
	s.mu.Unlock()

	if err != nil {
		return fmt.Errorf("failed to mark notifications as read: %w", err)
	}
	return nil
}

// ClearAll deletes every cached entry concurrently, then empties the cache
// and closes the panel whatever the outcome.
func (s *Synchronizer) ClearAll(ctx context.Context) error {
	s.mu.Lock()
	if s.userID == "" {
		s.mu.Unlock()
		return nil
	}
	generation := s.generation
	ids := make([]string, 0, len(s.notifications))
	for _, n := range s.notifications {
		ids = append(ids, n.ID)
	}
	s.mu.Unlock()

	err := s.fanOut(ids, func(id string) error {
		return s.backend.DeleteNotification(ctx, id)
	})

	s.mu.Lock()
	if generation == s.generation {
		s.notifications = nil
		s.unread = 0
		s.open = false
	}
	s.mu.Unlock()

	if err != nil {
		return fmt.Errorf("failed to clear notifications: %w", err)
	}
	return nil
}

func (s *Synchronizer) fanOut(ids []string, fn func(id string) error) error {
	p := pool.New().WithErrors()
	for _, id := range ids {
		p.Go(func() error {
			if err := fn(id); err != nil {
				return fmt.Errorf("notification %s: %w", id, err)
			}
			return nil
		})
	}
	return p.Wait()
}

// Snapshot returns a copy of the current state.
func (s *Synchronizer) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Snapshot{
		State:         s.state,
		UserID:        s.userID,
		Open:          s.open,
		Unread:        s.unread,
		Notifications: slices.Clone(s.notifications),
		LastSynced:    s.lastSynced,
	}
}

func countUnread(list []Notification) int {
	unread := 0
	for _, n := range list {
		if n.Unread() {
			unread++
		}
	}
	return unread
}

func userIDOf(p *session.UserProfile) string {
	if p == nil {
		return ""
	}
	return p.ID
}
