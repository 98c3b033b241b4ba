package store

import (
	"sort"
	"sync"
)

type subscription struct {
	path string
	fn   Listener
}

// hub tracks listeners and works out which of them a change concerns.
type hub struct {
	mu   sync.Mutex
	next int
	subs map[int]*subscription
}

func (h *hub) add(path string, fn Listener) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subs == nil {
		h.subs = make(map[int]*subscription)
	}
	h.next++
	h.subs[h.next] = &subscription{path: path, fn: fn}
	return h.next
}

func (h *hub) remove(id int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.subs, id)
}

func (h *hub) len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// affected returns listeners whose path overlaps any changed path, in
// registration order.
func (h *hub) affected(changed []string) []*subscription {
	h.mu.Lock()
	defer h.mu.Unlock()
	ids := make([]int, 0, len(h.subs))
	for id, sub := range h.subs {
		for _, c := range changed {
			if related(sub.path, c) {
				ids = append(ids, id)
				break
			}
		}
	}
	sort.Ints(ids)
	out := make([]*subscription, 0, len(ids))
	for _, id := range ids {
		out = append(out, h.subs[id])
	}
	return out
}

// dispatch re-reads each affected path and hands the result to its listener.
func (h *hub) dispatch(changed []string, read func(path string) (any, error)) {
	for _, sub := range h.affected(changed) {
		sub.fn(read(sub.path))
	}
}

func prefixes(changes []Change) []string {
	out := make([]string, len(changes))
	for i, c := range changes {
		out[i] = c.Prefix
	}
	return out
}
