package sse

import (
	"sync"

	"github.com/cmlabs-hris/teams-worktime/internal/domain/attendance"
)

// EventSnapshotSynced is published after a snapshot is replaced.
const EventSnapshotSynced = "snapshot.synced"

const subscriberBuffer = 10

// Event represents an SSE event to be sent to subscribers
type Event struct {
	EmCode string
	Event  string
	Data   interface{}
}

// Hub fans events out to the open streams of each employee.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan Event]struct{}
}

func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[string]map[chan Event]struct{}),
	}
}

// Subscribe registers a stream for emCode and returns its channel and cleanup function
func (h *Hub) Subscribe(emCode string) (<-chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan Event, subscriberBuffer)

	if h.subscribers[emCode] == nil {
		h.subscribers[emCode] = make(map[chan Event]struct{})
	}
	h.subscribers[emCode][ch] = struct{}{}

	var once sync.Once
	cleanup := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.subscribers[emCode], ch)
			close(ch)
			if len(h.subscribers[emCode]) == 0 {
				delete(h.subscribers, emCode)
			}
		})
	}

	return ch, cleanup
}

// Publish sends an event to every stream of emCode. Full buffers drop the event.
func (h *Hub) Publish(emCode string, event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	event.EmCode = emCode
	for ch := range h.subscribers[emCode] {
		select {
		case ch <- event:
		default:
		}
	}
}

// SnapshotSynced implements attendance.SyncNotifier.
func (h *Hub) SnapshotSynced(emCode string, resp attendance.SyncResponse) {
	h.Publish(emCode, Event{Event: EventSnapshotSynced, Data: resp})
}

func (h *Hub) SubscriberCount(emCode string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[emCode])
}
