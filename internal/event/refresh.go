package event

import "sync"

// RefreshSignal is the handle components use to ask the notification
// synchronizer for an immediate sync. At most one target is registered.
type RefreshSignal struct {
	mu    sync.Mutex
	fn    func()
	owner uint64
	next  uint64
}

func NewRefreshSignal() *RefreshSignal {
	return &RefreshSignal{}
}

// Register installs fn as the refresh target, replacing any previous one.
// The returned func clears the slot only while it still holds fn.
func (r *RefreshSignal) Register(fn func()) (deregister func()) {
	r.mu.Lock()
	r.next++
	token := r.next
	r.fn = fn
	r.owner = token
	r.mu.Unlock()

	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if r.owner == token {
			r.fn = nil
			r.owner = 0
		}
	}
}

// Trigger runs the registered target. It reports false when nothing is
// registered.
func (r *RefreshSignal) Trigger() bool {
	r.mu.Lock()
	fn := r.fn
	r.mu.Unlock()

	if fn == nil {
		return false
	}
	fn()
	return true
}

// Registered reports whether a target is installed.
func (r *RefreshSignal) Registered() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.fn != nil
}
