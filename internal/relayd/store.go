package relayd

import (
	"sync"

	"github.com/nbd-wtf/go-nostr"
)

// memoryStore keeps events in arrival order, deduplicated by id.
type memoryStore struct {
	mu     sync.RWMutex
	events []nostr.Event
	byID   map[string]struct{}
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		byID: make(map[string]struct{}),
	}
}

// add stores ev and reports whether it was new.
func (ms *memoryStore) add(ev nostr.Event) bool {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	if _, dup := ms.byID[ev.ID]; dup {
		return false
	}
	ms.byID[ev.ID] = struct{}{}
	ms.events = append(ms.events, ev)
	return true
}

// query returns stored events matching any of filters, in arrival order.
// A filter limit caps how many of the newest matches that filter contributes.
func (ms *memoryStore) query(filters nostr.Filters) []nostr.Event {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	picked := make(map[string]struct{})
	for _, f := range filters {
		n := 0
		for i := len(ms.events) - 1; i >= 0; i-- {
			if f.Limit > 0 && n >= f.Limit {
				break
			}
			if !f.Matches(&ms.events[i]) {
				continue
			}
			n++
			picked[ms.events[i].ID] = struct{}{}
		}
	}

	out := make([]nostr.Event, 0, len(picked))
	for _, ev := range ms.events {
		if _, ok := picked[ev.ID]; ok {
			out = append(out, ev)
		}
	}
	return out
}

func (ms *memoryStore) len() int {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	return len(ms.events)
}
