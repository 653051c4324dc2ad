package events

import (
	"context"
	"sync"
)

// Actions carried in Event.Type after the resource name.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// Event tells a team's clients that something on their boards changed. It
// carries ids only; clients refetch what they display.
type Event struct {
	Type     string `json:"type"`
	Resource string `json:"resource"`
	ID       uint   `json:"id"`
	TeamID   uint   `json:"team_id"`
}

// New builds an event such as "task.updated".
func New(resource, action string, id, teamID uint) Event {
	return Event{
		Type:     resource + "." + action,
		Resource: resource,
		ID:       id,
		TeamID:   teamID,
	}
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

const subscriberBuffer = 32

// Hub fans events out to the subscribers of each team within the process.
type Hub struct {
	mu   sync.RWMutex
	subs map[uint]map[chan Event]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[uint]map[chan Event]struct{})}
}

// Subscribe registers a listener for teamID. The returned cancel func
// unregisters it and closes the channel; calling it twice is harmless.
func (h *Hub) Subscribe(teamID uint) (<-chan Event, func()) {
	ch := make(chan Event, subscriberBuffer)

	h.mu.Lock()
	if h.subs[teamID] == nil {
		h.subs[teamID] = make(map[chan Event]struct{})
	}
	h.subs[teamID][ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs[teamID], ch)
			if len(h.subs[teamID]) == 0 {
				delete(h.subs, teamID)
			}
			close(ch)
			h.mu.Unlock()
		})
	}
	return ch, cancel
}

// Publish delivers e locally. It never fails.
func (h *Hub) Publish(_ context.Context, e Event) error {
	h.Deliver(e)
	return nil
}

// Deliver hands e to every subscriber of its team and returns how many got
// it. A subscriber whose buffer is full misses the event.
func (h *Hub) Deliver(e Event) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for ch := range h.subs[e.TeamID] {
		select {
		case ch <- e:
			delivered++
		default:
		}
	}
	return delivered
}

// Subscribers returns the number of live subscriptions for teamID.
func (h *Hub) Subscribers(teamID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[teamID])
}
