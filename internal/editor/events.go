package editor

import (
	"sync"
	"time"

	"github.com/jonathan/resume-builder/internal/autosave"
	"github.com/jonathan/resume-builder/internal/types"
)

// Event types sent to session followers.
const (
	EventSaved      = "saved"
	EventSaveFailed = "save_failed"
	EventChanged    = "changed"
	EventMetadata   = "metadata"
	EventClosed     = "closed"
)

// Toast messages shown for save outcomes.
const (
	ToastSaved      = "Resume saved successfully"
	ToastSaveFailed = "Failed to save changes"
)

// Event is one notification about a session.
type Event struct {
	Type      string          `json:"type"`
	Trigger   string          `json:"trigger,omitempty"`
	State     autosave.State  `json:"state"`
	Toast     string          `json:"toast,omitempty"`
	Error     string          `json:"error,omitempty"`
	Retryable bool            `json:"retryable,omitempty"`
	Metadata  *types.Metadata `json:"metadata,omitempty"`
	At        time.Time       `json:"at"`
}

const followerBuffer = 32

// fanout delivers events to followers without blocking on slow readers.
type fanout struct {
	mu     sync.Mutex
	next   int
	subs   map[int]chan Event
	closed bool
}

func (f *fanout) follow() (<-chan Event, func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch := make(chan Event, followerBuffer)
	if f.closed {
		close(ch)
		return ch, func() {}
	}
	if f.subs == nil {
		f.subs = make(map[int]chan Event)
	}
	f.next++
	id := f.next
	f.subs[id] = ch
	return ch, func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		if c, ok := f.subs[id]; ok {
			delete(f.subs, id)
			close(c)
		}
	}
}

func (f *fanout) publish(e Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, ch := range f.subs {
		select {
		case ch <- e:
		default:
		}
	}
}

// close delivers e and ends every follower's channel.
func (f *fanout) close(e Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	f.closed = true
	for id, ch := range f.subs {
		select {
		case ch <- e:
		default:
		}
		close(ch)
		delete(f.subs, id)
	}
}

func (f *fanout) len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs)
}
