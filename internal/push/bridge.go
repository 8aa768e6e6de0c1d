package push

import (
	"context"
	"errors"
	"sync"

	"github.com/katatrina/blood-notify/internal/event"
	"github.com/katatrina/blood-notify/internal/session"
	"github.com/rs/zerolog/log"
)

var (
	ErrUnsupported      = errors.New("push notifications are not supported on this platform")
	ErrPermissionDenied = errors.New("notification permission denied")
	ErrNoUser           = errors.New("no user logged in")
)

// Backend is the part of the REST facade the bridge uses.
type Backend interface {
	RegisterPushToken(ctx context.Context, reg DeviceRegistration) error
	RemovePushToken(ctx context.Context, userID, token string) error
	GetPreferences(ctx context.Context, userID string) (*Preferences, error)
	UpdatePreferences(ctx context.Context, userID string, patch PreferencesPatch) error
	SendTestPush(ctx context.Context, userID, title, message string) error
}

// Sessions is the view of the session store the bridge observes.
type Sessions interface {
	Get() *session.UserProfile
	Subscribe(fn func(session.Change)) *event.Subscription
}

// State is a copy of what the bridge currently knows.
type State struct {
	PermissionGranted bool         `json:"permissionGranted"`
	Token             string       `json:"token,omitempty"`
	Preferences       *Preferences `json:"preferences,omitempty"`
	Loading           bool         `json:"loading"`
	Error             string       `json:"error,omitempty"`
}

// Bridge registers this device for push with the backend and republishes
// foreground pushes on the foreground bus.
type Bridge struct {
	platform   Platform
	backend    Backend
	sessions   Sessions
	foreground *event.Bus[Foreground]
	deviceInfo string

	ctx    context.Context
	cancel context.CancelFunc
	sub    *event.Subscription

	mu          sync.Mutex
	// epoch advances on every user change. Results of calls started under
	// an older epoch are dropped.
	epoch       uint64
	granted     bool
	token       string
	preferences *Preferences
	loading     int
	lastErr     error

	// listenMu guards the foreground subscription.
	listenMu    sync.Mutex
	listenUser  string
	unsubscribe func()
}

func NewBridge(platform Platform, backend Backend, sessions Sessions, foreground *event.Bus[Foreground], deviceInfo string) *Bridge {
	ctx, cancel := context.WithCancel(context.Background())
	return &Bridge{
		platform:   platform,
		backend:    backend,
		sessions:   sessions,
		foreground: foreground,
		deviceInfo: deviceInfo,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Start follows the session: a signed-in user gets the bridge initialized,
// signing out tears the foreground subscription down.
func (b *Bridge) Start() {
	b.sub = b.sessions.Subscribe(b.onSessionChange)
	if b.sessions.Get() != nil {
		go b.Initialize(b.ctx)
	}
}

func (b *Bridge) Close() {
	b.sub.Unsubscribe()
	b.cancel()
	b.stopForeground()
}

func (b *Bridge) onSessionChange(c session.Change) {
	if !c.UserChanged() {
		return
	}

	b.stopForeground()
	b.mu.Lock()
	b.epoch++
	b.granted = false
	b.token = ""
	b.preferences = nil
	b.lastErr = nil
	b.mu.Unlock()

	if c.Current != nil {
		go b.Initialize(b.ctx)
	}
}

// Initialize registers the device when permission was granted earlier and
// loads the user's preferences.
func (b *Bridge) Initialize(ctx context.Context) {
	epoch := b.currentEpoch()
	user := b.sessions.Get()
	if user == nil {
		return
	}
	done := b.begin()
	defer done()

	if b.platform.Supported() && b.platform.Permission() == PermissionGranted {
		b.whileCurrent(epoch, func() { b.granted = true })

		if token, err := b.platform.Token(ctx); err != nil {
			b.failFor(epoch, err)
		} else if b.whileCurrent(epoch, func() { b.token = token }) {
			if err = b.register(ctx, user.ID, token); err != nil {
				b.failFor(epoch, err)
			} else {
				log.Info().Str("user_id", user.ID).Msg("push notifications initialized")
			}
		}
	}

	prefs, err := b.backend.GetPreferences(ctx, user.ID)
	if err != nil {
		b.failFor(epoch, err)
	} else if prefs != nil {
		if !b.whileCurrent(epoch, func() { b.preferences = prefs }) {
			log.Debug().Str("user_id", user.ID).Msg("dropping preferences of a signed-out user")
		}
	}

	b.syncForeground()
}

// RequestPermission asks the platform for permission and registers the
// device token. Failures are recorded in State().Error.
func (b *Bridge) RequestPermission(ctx context.Context) bool {
	epoch := b.currentEpoch()
	user := b.sessions.Get()
	if user == nil {
		b.fail(ErrNoUser)
		return false
	}
	done := b.begin()
	defer done()

	if !b.platform.Supported() {
		b.fail(ErrUnsupported)
		return false
	}

	permission, err := b.platform.RequestPermission(ctx)
	if err != nil {
		b.fail(err)
		return false
	}
	if permission != PermissionGranted {
		b.mu.Lock()
		b.granted = false
		b.mu.Unlock()
		b.fail(ErrPermissionDenied)
		return false
	}

	token, err := b.platform.Token(ctx)
	if err != nil {
		b.fail(err)
		return false
	}
	if !b.whileCurrent(epoch, func() {
		b.granted = true
		b.token = token
	}) {
		return false
	}
	b.syncForeground()

	if err = b.register(ctx, user.ID, token); err != nil {
		b.fail(err)
		return false
	}
	log.Info().Str("user_id", user.ID).Msg("push permission granted and token registered")
	return true
}

// UpdatePreferences sends patch to the backend and merges it locally on
// success. On failure nothing local changes.
func (b *Bridge) UpdatePreferences(ctx context.Context, patch PreferencesPatch) bool {
	epoch := b.currentEpoch()
	user := b.sessions.Get()
	if user == nil {
		b.fail(ErrNoUser)
		return false
	}
	done := b.begin()
	defer done()

	if err := b.backend.UpdatePreferences(ctx, user.ID, patch); err != nil {
		b.fail(err)
		return false
	}

	return b.whileCurrent(epoch, func() {
		current := DefaultPreferences()
		if b.preferences != nil {
			current = *b.preferences
		}
		merged := patch.Apply(current)
		b.preferences = &merged
	})
}

// SendTest asks the backend to push a test message to this user's devices.
func (b *Bridge) SendTest(ctx context.Context, title, body string) bool {
	user := b.sessions.Get()
	if user == nil {
		b.fail(ErrNoUser)
		return false
	}
	done := b.begin()
	defer done()

	if err := b.backend.SendTestPush(ctx, user.ID, title, body); err != nil {
		b.fail(err)
		return false
	}
	return true
}

// DisableNotifications removes the token from the backend and forgets it.
// Without a token it does nothing.
func (b *Bridge) DisableNotifications(ctx context.Context) {
	user := b.sessions.Get()
	b.mu.Lock()
	token := b.token
	b.mu.Unlock()
	if user == nil || token == "" {
		return
	}

	if err := b.backend.RemovePushToken(ctx, user.ID, token); err != nil {
		b.fail(err)
	}

	b.mu.Lock()
	b.token = ""
	b.granted = false
	b.mu.Unlock()
	b.syncForeground()
	log.Info().Str("user_id", user.ID).Msg("push notifications disabled")
}

func (b *Bridge) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()

	s := State{
		PermissionGranted: b.granted,
		Token:             b.token,
		Loading:           b.loading > 0,
	}
	if b.preferences != nil {
		prefs := *b.preferences
		s.Preferences = &prefs
	}
	if b.lastErr != nil {
		s.Error = b.lastErr.Error()
	}
	return s
}

// Err returns the last recorded failure.
func (b *Bridge) Err() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastErr
}

func (b *Bridge) register(ctx context.Context, userID, token string) error {
	return b.backend.RegisterPushToken(ctx, DeviceRegistration{
		Token:      token,
		UserID:     userID,
		DeviceInfo: b.deviceInfo,
	})
}

// begin marks an operation in progress and clears the previous error.
func (b *Bridge) begin() (done func()) {
	b.mu.Lock()
	b.loading++
	b.lastErr = nil
	b.mu.Unlock()
	return func() {
		b.mu.Lock()
		b.loading--
		b.mu.Unlock()
	}
}

func (b *Bridge) fail(err error) {
	log.Warn().Err(err).Msg("push bridge operation failed")
	b.mu.Lock()
	b.lastErr = err
	b.mu.Unlock()
}

// failFor records err unless the user changed since epoch.
func (b *Bridge) failFor(epoch uint64, err error) {
	log.Warn().Err(err).Msg("push bridge operation failed")
	b.whileCurrent(epoch, func() { b.lastErr = err })
}

func (b *Bridge) currentEpoch() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.epoch
}

// whileCurrent runs fn under b.mu and reports true, unless the user changed
// since epoch.
func (b *Bridge) whileCurrent(epoch uint64, fn func()) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if epoch != b.epoch {
		return false
	}
	fn()
	return true
}

// syncForeground keeps exactly one foreground subscription while
// permission is granted and a user is signed in.
func (b *Bridge) syncForeground() {
	user := b.sessions.Get()
	b.mu.Lock()
	granted := b.granted
	b.mu.Unlock()

	b.listenMu.Lock()
	defer b.listenMu.Unlock()

	want := ""
	if granted && user != nil && b.ctx.Err() == nil {
		want = user.ID
	}
	if want == b.listenUser {
		return
	}

	if b.unsubscribe != nil {
		b.unsubscribe()
		b.unsubscribe = nil
	}
	b.listenUser = ""
	if want == "" {
		return
	}

	unsubscribe, err := b.platform.Subscribe(want, func(m Message) {
		b.foreground.Publish(NewForeground(m))
	})
	if err != nil {
		b.fail(err)
		return
	}
	b.unsubscribe = unsubscribe
	b.listenUser = want
}

func (b *Bridge) stopForeground() {
	b.listenMu.Lock()
	defer b.listenMu.Unlock()

	if b.unsubscribe != nil {
		b.unsubscribe()
		b.unsubscribe = nil
	}
	b.listenUser = ""
}
