package utilities

import "sync"

type EventHandler func(interface{})

// EventBus is a minimal in-process pub/sub used to decouple the practice and
// story services from the listeners that react to them (audio pregeneration,
// completion logging). Handlers run asynchronously.
type EventBus struct {
	handlers map[string][]EventHandler
	mu       sync.RWMutex
}

func NewEventBus() *EventBus {
	return &EventBus{
		handlers: make(map[string][]EventHandler),
	}
}

func (eb *EventBus) Subscribe(event string, handler EventHandler) {
	eb.mu.Lock()
	defer eb.mu.Unlock()
	eb.handlers[event] = append(eb.handlers[event], handler)
}

func (eb *EventBus) Publish(event string, data interface{}) {
	eb.mu.RLock()
	defer eb.mu.RUnlock()
	if handlers, found := eb.handlers[event]; found {
		for _, handler := range handlers {
			go handler(data)
		}
	}
}

// Global instance
var GlobalEventBus = NewEventBus()

// Event topics published across the backend.
const (
	EventStoryGenerated = "story_generated"
	EventListCompleted  = "list_completed"
)
