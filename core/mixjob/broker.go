package mixjob

import (
	"sync"

	"AutoDJ/model"
)

// StatusEvent announces a mix status transition.
type StatusEvent struct {
	MixID  string          `json:"mixId"`
	Status model.MixStatus `json:"status"`
}

// Broker fans mix status events out to subscribers (the WebSocket handler).
// Subscribers with a full channel miss events rather than blocking the job.
type Broker struct {
	mu   sync.RWMutex
	subs map[string]map[chan StatusEvent]struct{}
}

// NewBroker creates an event broker.
func NewBroker() *Broker {
	return &Broker{subs: make(map[string]map[chan StatusEvent]struct{})}
}

// Subscribe registers interest in one mix's status events. The returned
// cancel function must be called to release the subscription.
func (b *Broker) Subscribe(mixID string) (<-chan StatusEvent, func()) {
	ch := make(chan StatusEvent, 4)

	b.mu.Lock()
	if b.subs[mixID] == nil {
		b.subs[mixID] = make(map[chan StatusEvent]struct{})
	}
	b.subs[mixID][ch] = struct{}{}
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		if set, ok := b.subs[mixID]; ok {
			delete(set, ch)
			if len(set) == 0 {
				delete(b.subs, mixID)
			}
		}
		b.mu.Unlock()
	}
	return ch, cancel
}

// Publish delivers an event to all subscribers of its mix.
func (b *Broker) Publish(ev StatusEvent) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch := range b.subs[ev.MixID] {
		select {
		case ch <- ev:
		default:
		}
	}
}
