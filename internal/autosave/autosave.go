// Package autosave debounces edits into persisted saves with at most one save in flight.
package autosave

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jonathan/resume-builder/internal/logging"
)

// DefaultDelay is the quiet period after the last edit before an automatic save.
const DefaultDelay = 1000 * time.Millisecond

var (
	// ErrSaveInProgress is returned when a save is requested while another is running.
	ErrSaveInProgress = errors.New("save already in progress")
	// ErrClosed is returned for saves requested after Close.
	ErrClosed = errors.New("autosave controller closed")
)

// State is the controller's persistence state.
type State string

const (
	StateClean  State = "clean"
	StateDirty  State = "dirty"
	StateSaving State = "saving"
)

// Trigger says what started a save.
type Trigger string

const (
	TriggerDebounce Trigger = "debounce"
	TriggerManual   Trigger = "manual"
	TriggerTeardown Trigger = "teardown"
)

// Event reports the outcome of a save. Err is nil on success.
type Event struct {
	Trigger   Trigger
	Err       error
	Retryable bool
	At        time.Time
}

// SaveFunc persists the current document.
type SaveFunc func(ctx context.Context) error

// Timer is a pending scheduled call.
type Timer interface {
	Stop() bool
}

// Scheduler runs f after d. The default uses time.AfterFunc.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realScheduler struct{}

func (realScheduler) AfterFunc(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }

// Options configures a Controller. Zero values take defaults.
type Options struct {
	Delay       time.Duration
	SaveTimeout time.Duration
	Scheduler   Scheduler
	Notify      func(Event)
	Log         *logging.Logger
}

// Controller tracks unsaved edits and decides when to save them.
//
// Every edit bumps a generation counter. A save remembers the generation it
// started at; if an edit lands while the save is in flight, the generations no
// longer match when it finishes and the controller stays dirty and re-arms the
// debounce timer instead of reporting clean.
type Controller struct {
	save        SaveFunc
	delay       time.Duration
	saveTimeout time.Duration
	sched       Scheduler
	notify      func(Event)
	log         *logging.Logger

	mu     sync.Mutex
	timer  Timer
	gen    uint64
	dirty  bool
	saving bool
	closed bool
}

// New creates a controller that persists through save.
func New(save SaveFunc, opts Options) *Controller {
	c := &Controller{
		save:        save,
		delay:       opts.Delay,
		saveTimeout: opts.SaveTimeout,
		sched:       opts.Scheduler,
		notify:      opts.Notify,
		log:         opts.Log,
	}
	if c.delay <= 0 {
		c.delay = DefaultDelay
	}
	if c.saveTimeout <= 0 {
		c.saveTimeout = 30 * time.Second
	}
	if c.sched == nil {
		c.sched = realScheduler{}
	}
	if c.log == nil {
		c.log = logging.NewNop()
	}
	return c
}

// MarkDirty records an edit and restarts the quiet period.
func (c *Controller) MarkDirty() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.gen++
	c.dirty = true
	c.armLocked()
}

func (c *Controller) armLocked() {
	c.stopLocked()
	c.timer = c.sched.AfterFunc(c.delay, c.onTimer)
}

func (c *Controller) stopLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

func (c *Controller) onTimer() {
	c.mu.Lock()
	if c.closed || !c.dirty || c.saving {
		c.mu.Unlock()
		return
	}
	c.timer = nil
	c.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), c.saveTimeout)
	defer cancel()
	if err := c.run(ctx, TriggerDebounce); err != nil && !errors.Is(err, ErrSaveInProgress) {
		c.log.Warn("autosave failed", "error", err)
	}
}

// Save persists immediately. It returns ErrSaveInProgress without saving when a
// save is already running.
func (c *Controller) Save(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.saving {
		c.mu.Unlock()
		return ErrSaveInProgress
	}
	c.stopLocked()
	c.mu.Unlock()
	return c.run(ctx, TriggerManual)
}

func (c *Controller) run(ctx context.Context, trigger Trigger) error {
	c.mu.Lock()
	if c.saving {
		c.mu.Unlock()
		return ErrSaveInProgress
	}
	c.saving = true
	startGen := c.gen
	c.mu.Unlock()

	err := c.save(ctx)

	c.mu.Lock()
	c.saving = false
	switch {
	case err != nil:
		c.dirty = true
	case c.gen != startGen:
		c.dirty = true
		if !c.closed {
			c.armLocked()
		}
	default:
		c.dirty = false
	}
	notify := c.notify
	c.mu.Unlock()

	if notify != nil && trigger != TriggerTeardown {
		notify(Event{Trigger: trigger, Err: err, Retryable: err != nil, At: time.Now()})
	}
	return err
}

// Close cancels the pending timer. If edits are unsaved and no save is running,
// one last save is started in the background and not awaited. When a save is
// running, edits made after it started are dropped: the save is not re-armed
// once the controller is closed.
func (c *Controller) Close() { c.shutdown(true) }

// Discard cancels the pending timer and drops unsaved edits. Used when the
// record itself is going away.
func (c *Controller) Discard() { c.shutdown(false) }

func (c *Controller) shutdown(flushDirty bool) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.stopLocked()
	flush := flushDirty && c.dirty && !c.saving
	c.mu.Unlock()

	if flush {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), c.saveTimeout)
			defer cancel()
			if err := c.run(ctx, TriggerTeardown); err != nil {
				c.log.Warn("teardown save failed", "error", err)
			}
		}()
	}
}

// State reports the current persistence state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch {
	case c.saving:
		return StateSaving
	case c.dirty:
		return StateDirty
	default:
		return StateClean
	}
}

// Dirty reports whether there are edits not yet persisted.
func (c *Controller) Dirty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dirty
}

// Saving reports whether a save is in flight.
func (c *Controller) Saving() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.saving
}

// BeforeUnload reports whether leaving now needs the user's confirmation.
func (c *Controller) BeforeUnload() bool { return c.Dirty() }
