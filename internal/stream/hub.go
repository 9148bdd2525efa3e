// Package stream distributes emitted decisions to execution-layer
// subscribers.
package stream

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"reentry-engine/internal/models"
)

// HubConfig holds configuration for the decision hub.
type HubConfig struct {
	// SubscriberBufferSize is the size of each subscriber's channel buffer.
	SubscriberBufferSize int
	// SlowConsumerDropThreshold is the number of consecutive drops before
	// a subscriber is considered slow.
	SlowConsumerDropThreshold int
}

// DefaultHubConfig returns the default hub configuration.
func DefaultHubConfig() HubConfig {
	return HubConfig{
		SubscriberBufferSize:      100,
		SlowConsumerDropThreshold: 10,
	}
}

// Hub fans out decision messages to multiple subscribers. Publishing
// never blocks: a subscriber whose buffer is full drops the message, so
// a slow execution consumer cannot gate the decision path.
type Hub struct {
	config      HubConfig
	mu          sync.RWMutex
	subscribers map[string]*Subscriber

	published uint64
	dropped   uint64
}

// Subscriber represents one decision consumer.
type Subscriber struct {
	ID           string
	Channel      chan models.DecisionMessage
	DroppedCount int
	CreatedAt    time.Time
}

// NewHub creates a new decision hub with default configuration.
func NewHub() *Hub {
	return NewHubWithConfig(DefaultHubConfig())
}

// NewHubWithConfig creates a new decision hub with custom configuration.
func NewHubWithConfig(config HubConfig) *Hub {
	return &Hub{
		config:      config,
		subscribers: make(map[string]*Subscriber),
	}
}

// Subscribe registers a new consumer and returns its channel and ID.
func (h *Hub) Subscribe() (<-chan models.DecisionMessage, string) {
	sub := &Subscriber{
		ID:        uuid.NewString(),
		Channel:   make(chan models.DecisionMessage, h.config.SubscriberBufferSize),
		CreatedAt: time.Now(),
	}
	h.mu.Lock()
	h.subscribers[sub.ID] = sub
	h.mu.Unlock()
	return sub.Channel, sub.ID
}

// Unsubscribe removes a consumer and closes its channel.
func (h *Hub) Unsubscribe(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if sub, ok := h.subscribers[id]; ok {
		close(sub.Channel)
		delete(h.subscribers, id)
	}
}

// Publish fans a decision out to all subscribers without blocking.
func (h *Hub) Publish(msg models.DecisionMessage) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.published++
	for _, sub := range h.subscribers {
		select {
		case sub.Channel <- msg:
			sub.DroppedCount = 0
		default:
			sub.DroppedCount++
			h.dropped++
		}
	}
}

// Stats returns hub counters.
func (h *Hub) Stats() (published, dropped uint64, subscribers int) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.published, h.dropped, len(h.subscribers)
}

// SlowSubscribers returns the IDs of subscribers past the drop threshold.
func (h *Hub) SlowSubscribers() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	var out []string
	for id, sub := range h.subscribers {
		if sub.DroppedCount >= h.config.SlowConsumerDropThreshold {
			out = append(out, id)
		}
	}
	return out
}

// Close unsubscribes every consumer.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, sub := range h.subscribers {
		close(sub.Channel)
		delete(h.subscribers, id)
	}
}
