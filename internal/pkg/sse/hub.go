package sse

import (
	"sync"
)

// Message is one server-sent event delivered to a user's open streams.
type Message struct {
	Name string
	Data any
}

// Hub fans messages out to every open stream of a user. Slow streams lose messages
// instead of blocking publishers.
type Hub struct {
	mu      sync.RWMutex
	streams map[string]map[chan Message]struct{}
	buffer  int

	// OnDrop, when set, is called for every message a full stream could not take.
	OnDrop func(userID string)
}

func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = 16
	}
	return &Hub{
		streams: make(map[string]map[chan Message]struct{}),
		buffer:  buffer,
	}
}

// Subscribe opens a stream for userID. The returned cancel func closes the channel and
// is safe to call more than once.
func (h *Hub) Subscribe(userID string) (<-chan Message, func()) {
	ch := make(chan Message, h.buffer)

	h.mu.Lock()
	if h.streams[userID] == nil {
		h.streams[userID] = make(map[chan Message]struct{})
	}
	h.streams[userID][ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.streams[userID], ch)
			if len(h.streams[userID]) == 0 {
				delete(h.streams, userID)
			}
			close(ch)
		})
	}
	return ch, cancel
}

func (h *Hub) Publish(userID string, msg Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch := range h.streams[userID] {
		select {
		case ch <- msg:
		default:
			if h.OnDrop != nil {
				h.OnDrop(userID)
			}
		}
	}
}

func (h *Hub) PublishToMany(userIDs []string, msg Message) {
	for _, userID := range userIDs {
		h.Publish(userID, msg)
	}
}

// Streams returns the number of open streams across all users.
func (h *Hub) Streams() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	total := 0
	for _, subs := range h.streams {
		total += len(subs)
	}
	return total
}
