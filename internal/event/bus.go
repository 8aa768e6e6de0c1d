package event

import (
	"sync"

	"github.com/google/uuid"
)

// Bus is a typed, synchronous publish/subscribe channel. Handlers run on
// the publisher's goroutine in subscription order.
type Bus[T any] struct {
	name     string
	mu       sync.RWMutex
	handlers []*Subscription
	fns      map[string]func(T)
}

// Subscription is the handle returned by Subscribe.
type Subscription struct {
	ID     string
	remove func(id string)
	once   sync.Once
}

// Unsubscribe detaches the handler. It is safe to call more than once.
func (s *Subscription) Unsubscribe() {
	if s == nil {
		return
	}
	s.once.Do(func() { s.remove(s.ID) })
}

func NewBus[T any](name string) *Bus[T] {
	return &Bus[T]{
		name: name,
		fns:  make(map[string]func(T)),
	}
}

func (b *Bus[T]) Name() string {
	return b.name
}

// Subscribe registers fn for every value published after this call.
func (b *Bus[T]) Subscribe(fn func(T)) *Subscription {
	sub := &Subscription{ID: uuid.NewString(), remove: b.remove}

	b.mu.Lock()
	b.handlers = append(b.handlers, sub)
	b.fns[sub.ID] = fn
	b.mu.Unlock()

	return sub
}

// Publish delivers v to the current subscribers. A handler may
// unsubscribe itself or others while being called.
func (b *Bus[T]) Publish(v T) {
	b.mu.RLock()
	fns := make([]func(T), 0, len(b.handlers))
	for _, sub := range b.handlers {
		fns = append(fns, b.fns[sub.ID])
	}
	b.mu.RUnlock()

	for _, fn := range fns {
		fn(v)
	}
}

// Len reports the number of active subscriptions.
func (b *Bus[T]) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers)
}

func (b *Bus[T]) remove(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.fns, id)
	for i, sub := range b.handlers {
		if sub.ID == id {
			b.handlers = append(b.handlers[:i], b.handlers[i+1:]...)
			return
		}
	}
}
