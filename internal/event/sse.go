package event

import (
	"sync"

	"github.com/rs/zerolog/log"
)

// Stream is the in-process side of the SSE endpoint. Delivery to a client
// never blocks: a client whose buffer is full misses that event.
type Stream struct {
	clients map[string]map[chan Event]bool
	topics  map[chan Event][]string
	events  chan Event
	done    chan struct{}
	once    sync.Once
	mu      sync.Mutex
}

func NewStream(bufferSize int) *Stream {
	return &Stream{
		clients: make(map[string]map[chan Event]bool),
		topics:  make(map[chan Event][]string),
		events:  make(chan Event, max(bufferSize, 1)),
		done:    make(chan struct{}),
	}
}

// Register subscribes client to every given topic.
func (s *Stream) Register(client chan Event, topics ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, topic := range topics {
		if _, ok := s.clients[topic]; !ok {
			s.clients[topic] = make(map[chan Event]bool)
		}
		s.clients[topic][client] = true
	}
	s.topics[client] = append(s.topics[client], topics...)
	log.Debug().Strs("topics", topics).Msg("stream client registered")
}

// Unregister removes client from all of its topics and closes it.
func (s *Stream) Unregister(client chan Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	topics, ok := s.topics[client]
	if !ok {
		return
	}
	for _, topic := range topics {
		if clients, ok := s.clients[topic]; ok {
			delete(clients, client)
			if len(clients) == 0 {
				delete(s.clients, topic)
			}
		}
	}
	delete(s.topics, client)
	close(client)
	log.Debug().Strs("topics", topics).Msg("stream client unregistered")
}

// Broadcast queues event for delivery. Events sent after Close are dropped.
func (s *Stream) Broadcast(event Event) {
	select {
	case <-s.done:
	case s.events <- event:
	}
}

// Run delivers queued events until Close is called.
func (s *Stream) Run() {
	for {
		select {
		case <-s.done:
			return
		case event := <-s.events:
			s.deliver(event)
		}
	}
}

func (s *Stream) deliver(event Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for client := range s.clients[event.Topic] {
		select {
		case client <- event:
		default:
			log.Warn().Str("topic", event.Topic).Str("type", event.Type).Msg("stream client is slow, event dropped")
		}
	}
}

// Close stops Run and closes every remaining client.
func (s *Stream) Close() {
	s.once.Do(func() {
		close(s.done)

		s.mu.Lock()
		defer s.mu.Unlock()
		for client := range s.topics {
			close(client)
		}
		clear(s.topics)
		clear(s.clients)
	})
}
