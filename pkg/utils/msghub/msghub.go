package msghub

import (
	"sync"

	"github.com/pantry-lab/sousschef/pkg/domain/types"
)

// Message is a user-facing notification published by controllers and
// consumed at the view boundary. Controllers never render; they publish.
type Message struct {
	Level types.MessageLevel
	Text  string
}

// IsZero reports whether the message is the "clear current message" signal
func (m Message) IsZero() bool {
	return m.Level == "" && m.Text == ""
}

// Hub is a small in-process publish/subscribe channel for Messages. It
// replaces threading a message setter through every layer: controllers hold
// the hub, views subscribe at the boundary.
type Hub struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]func(Message)
	last   Message
}

func New() *Hub {
	return &Hub{
		subs: make(map[int]func(Message)),
	}
}

// Subscribe registers a receiver and returns its unsubscribe function.
// Receivers are invoked synchronously in publish order.
func (h *Hub) Subscribe(fn func(Message)) func() {
	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.subs[id] = fn
	h.mu.Unlock()

	return func() {
		h.mu.Lock()
		delete(h.subs, id)
		h.mu.Unlock()
	}
}

// Publish delivers the message to all current subscribers
func (h *Hub) Publish(msg Message) {
	h.mu.Lock()
	h.last = msg
	receivers := make([]func(Message), 0, len(h.subs))
	for _, fn := range h.subs {
		receivers = append(receivers, fn)
	}
	h.mu.Unlock()

	for _, fn := range receivers {
		fn(msg)
	}
}

// Success publishes a success-level message
func (h *Hub) Success(text string) {
	h.Publish(Message{Level: types.MessageSuccess, Text: text})
}

// Error publishes an error-level message
func (h *Hub) Error(text string) {
	h.Publish(Message{Level: types.MessageError, Text: text})
}

// Clear publishes the zero message, dismissing whatever is displayed
func (h *Hub) Clear() {
	h.Publish(Message{})
}

// Last returns the most recently published message
func (h *Hub) Last() Message {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.last
}
