package bloodrequest

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/katatrina/blood-notify/internal/event"
	"github.com/katatrina/blood-notify/internal/session"
	"github.com/rs/zerolog/log"
)

var (
	ErrNoUser    = errors.New("no user signed in")
	ErrForbidden = errors.New("operation not permitted for this role")
)

// Backend is the part of the REST facade the request views use.
type Backend interface {
	ListBloodRequests(ctx context.Context) ([]BloodRequest, error)
	ListBloodRequestsByUser(ctx context.Context, userID string) ([]BloodRequest, error)
	UpdateBloodRequestStatus(ctx context.Context, id string, status Status) (*Patch, error)
	UpdateBloodRequestConfirmation(ctx context.Context, id string, confirmation ConfirmationStatus) (*Patch, error)
}

// ProfileSource yields the signed-in user.
type ProfileSource interface {
	Get() *session.UserProfile
}

// View is a listing of blood requests held independently of the
// notification cache. It stays consistent with peer views through the
// requestUpdated bus.
type View struct {
	backend  Backend
	profiles ProfileSource
	updates  *event.Bus[Updated]
	refresh  *event.RefreshSignal

	mu       sync.RWMutex
	requests []BloodRequest
	sub      *event.Subscription
}

func NewView(backend Backend, profiles ProfileSource, updates *event.Bus[Updated], refresh *event.RefreshSignal) *View {
	v := &View{
		backend:  backend,
		profiles: profiles,
		updates:  updates,
		refresh:  refresh,
	}
	v.sub = updates.Subscribe(v.onUpdated)
	return v
}

// Load fetches the requests visible to the signed-in user: admins see all,
// doctors their own, everyone else the ones they submitted.
func (v *View) Load(ctx context.Context) error {
	viewer := v.profiles.Get()
	if viewer == nil {
		v.setRequests(nil)
		return ErrNoUser
	}

	var (
		requests []BloodRequest
		err      error
	)
	switch viewer.Role {
	case session.RoleAdmin:
		requests, err = v.backend.ListBloodRequests(ctx)
	case session.RoleDoctor:
		requests, err = v.backend.ListBloodRequestsByUser(ctx, viewer.ID)
	default:
		requests, err = v.backend.ListBloodRequests(ctx)
		requests = slices.DeleteFunc(requests, func(r BloodRequest) bool {
			return r.User == nil || r.User.ID != viewer.ID
		})
	}
	if err != nil {
		v.setRequests(nil)
		return fmt.Errorf("failed to load blood requests: %w", err)
	}

	v.setRequests(requests)
	return nil
}

// Requests returns a copy of the local list.
func (v *View) Requests() []BloodRequest {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return slices.Clone(v.requests)
}

// Filter narrows the local list by status ("" or "all" keeps every
// status) and a case-insensitive term matched against patient name, blood
// type and id. Results are newest first.
func (v *View) Filter(status, term string) []BloodRequest {
	term = strings.ToLower(strings.TrimSpace(term))

	filtered := slices.DeleteFunc(v.Requests(), func(r BloodRequest) bool {
		if status != "" && status != "all" && string(r.Status) != status {
			return true
		}
		if term == "" {
			return false
		}
		return !strings.Contains(strings.ToLower(r.PatientName), term) &&
			!strings.Contains(strings.ToLower(r.BloodType), term) &&
			!strings.Contains(strings.ToLower(r.ID), term)
	})
	slices.SortStableFunc(filtered, func(a, b BloodRequest) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return filtered
}

// UpdateStatus changes a request's issue status. Admin only.
func (v *View) UpdateStatus(ctx context.Context, id string, status Status) (Patch, error) {
	if err := v.require(session.RoleAdmin); err != nil {
		return Patch{}, err
	}
	updated, err := v.backend.UpdateBloodRequestStatus(ctx, id, status)
	if err != nil {
		return Patch{}, fmt.Errorf("failed to update status: %w", err)
	}
	return v.propagate(updated, Patch{ID: id, Status: &status}), nil
}

// UpdateConfirmation records whether the doctor received the blood.
// Doctor only.
func (v *View) UpdateConfirmation(ctx context.Context, id string, confirmation ConfirmationStatus) (Patch, error) {
	if err := v.require(session.RoleDoctor); err != nil {
		return Patch{}, err
	}
	updated, err := v.backend.UpdateBloodRequestConfirmation(ctx, id, confirmation)
	if err != nil {
		return Patch{}, fmt.Errorf("failed to update confirmation: %w", err)
	}
	return v.propagate(updated, Patch{ID: id, ConfirmationStatus: &confirmation}), nil
}

// Close detaches the view from the update bus.
func (v *View) Close() {
	v.sub.Unsubscribe()
}

func (v *View) require(role session.Role) error {
	viewer := v.profiles.Get()
	if viewer == nil {
		return ErrNoUser
	}
	if viewer.Role != role {
		return ErrForbidden
	}
	return nil
}

// propagate merges the change locally, asks the notification synchronizer
// to resync and tells peer views. The fields the backend echoed back win
// over the fallback patch when it returned any.
func (v *View) propagate(updated *Patch, fallback Patch) Patch {
	patch := fallback
	if updated != nil {
		patch = *updated
		if patch.ID == "" {
			patch.ID = fallback.ID
		}
		if patch.Status == nil {
			patch.Status = fallback.Status
		}
		if patch.ConfirmationStatus == nil {
			patch.ConfirmationStatus = fallback.ConfirmationStatus
		}
	}
	v.merge(patch)

	if !v.refresh.Trigger() {
		log.Debug().Msg("no notification synchronizer registered for refresh")
	}
	v.updates.Publish(Updated{UpdatedRequest: patch})
	return patch
}

func (v *View) onUpdated(u Updated) {
	if u.UpdatedRequest.ID == "" {
		return
	}
	v.merge(u.UpdatedRequest)
}

func (v *View) merge(p Patch) {
	v.mu.Lock()
	defer v.mu.Unlock()

	for i := range v.requests {
		if v.requests[i].ID == p.ID {
			p.Apply(&v.requests[i])
		}
	}
}

func (v *View) setRequests(requests []BloodRequest) {
	v.mu.Lock()
	v.requests = requests
	v.mu.Unlock()
}
