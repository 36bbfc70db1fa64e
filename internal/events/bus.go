// internal/events/bus.go
package events

import (
	"sync"
)

// Bus is an in-process pub/sub used when no AMQP broker is
// configured, and by tests. Handlers run on the publisher's
// goroutine; reminder fan-out is best effort, so a topic with no
// subscribers is not an error.
type Bus struct {
	mu       sync.Mutex
	handlers map[string][]func(payload any) error
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[string][]func(payload any) error),
	}
}

// Subscribe adds a handler for a topic.
func (b *Bus) Subscribe(topic string, handler func(payload any) error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[topic] = append(b.handlers[topic], handler)
}

// Publish delivers payload to every subscriber of topic. The first
// handler error is returned after all handlers have run.
func (b *Bus) Publish(topic string, payload any) error {
	b.mu.Lock()
	handlers := b.handlers[topic]
	b.mu.Unlock()

	var first error
	for _, handler := range handlers {
		if err := handler(payload); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// ReminderSent implements Publisher on the reminders topic.
func (b *Bus) ReminderSent(ev ReminderEvent) error {
	return b.Publish(TopicReminders, ev)
}

var _ Publisher = (*Bus)(nil)
