package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/katatrina/blood-notify/internal/event"
	"github.com/rs/zerolog/log"
)

// StorageKey is the well-known key the profile is persisted under.
const StorageKey = "userData"

var ErrNoProfile = errors.New("profile is required")

// Change is published whenever the current profile is replaced or cleared.
type Change struct {
	Previous *UserProfile
	Current  *UserProfile
}

// UserChanged reports whether the change switched to a different user id,
// including nil -> user and user -> nil.
func (c Change) UserChanged() bool {
	return userID(c.Previous) != userID(c.Current)
}

func userID(p *UserProfile) string {
	if p == nil {
		return ""
	}
	return p.ID
}

// Store is the single source of truth for who is signed in.
type Store struct {
	// writeMu orders replacements so storage, memory and observers all see
	// them in the same sequence.
	writeMu sync.Mutex

	mu      sync.RWMutex
	current *UserProfile
	storage Storage
	changes *event.Bus[Change]
}

func NewStore(storage Storage) *Store {
	return &Store{
		storage: storage,
		changes: event.NewBus[Change]("session"),
	}
}

// Load restores the persisted profile. Unreadable or corrupt data leaves
// the session empty.
func (s *Store) Load(ctx context.Context) *UserProfile {
	data, err := s.storage.Get(ctx, StorageKey)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			log.Warn().Err(err).Msg("failed to read persisted session")
		}
		return nil
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	profile, migrated, err := ParseProfile(data)
	if err != nil {
		log.Warn().Err(err).Msg("persisted session is corrupt, ignoring it")
		return nil
	}
	if migrated {
		if err = s.persist(ctx, profile); err != nil {
			log.Warn().Err(err).Msg("failed to rewrite migrated session")
		} else {
			log.Info().Str("user_id", profile.ID).Msg("migrated legacy session shape")
		}
	}

	s.replace(profile)
	return profile.Clone()
}

// Get returns the current profile or nil.
func (s *Store) Get() *UserProfile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Clone()
}

// SetFromBackend replaces the current profile, persists it and notifies
// observers. Observers are notified even when persisting fails.
func (s *Store) SetFromBackend(ctx context.Context, profile *UserProfile) error {
	if profile == nil {
		return ErrNoProfile
	}
	profile = profile.Clone()

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	persistErr := s.persist(ctx, profile)
	s.replace(profile)
	return persistErr
}

// Clear removes the profile from storage and memory and notifies observers.
func (s *Store) Clear(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	err := s.storage.Delete(ctx, StorageKey)
	s.replace(nil)
	return err
}

// Subscribe registers fn for profile changes. fn runs synchronously inside
// the call that changed the profile, and changes are delivered one at a
// time in the order they were made. fn must not change the profile itself.
func (s *Store) Subscribe(fn func(Change)) *event.Subscription {
	return s.changes.Subscribe(fn)
}

func (s *Store) persist(ctx context.Context, profile *UserProfile) error {
	data, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("failed to encode profile: %w", err)
	}
	return s.storage.Set(ctx, StorageKey, data)
}

// replace must be called with writeMu held.
func (s *Store) replace(profile *UserProfile) {
	s.mu.Lock()
	previous := s.current
	s.current = profile
	s.mu.Unlock()

	s.changes.Publish(Change{Previous: previous.Clone(), Current: profile.Clone()})
}
