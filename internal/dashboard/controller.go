package dashboard

import (
	"context"
	"sync"
	"time"

	"github.com/jonathan/resume-builder/internal/logging"
	"github.com/jonathan/resume-builder/internal/store"
)

// View is the dashboard state after a recompute.
type View struct {
	Items  []Summary `json:"items"`
	Total  int       `json:"total"`
	Stats  Stats     `json:"stats"`
	Query  Query     `json:"query"`
	Loaded bool      `json:"loaded"`
	Error  string    `json:"error,omitempty"`
}

// ControllerOptions configures a Controller.
type ControllerOptions struct {
	Query    Query
	OnChange func(View)
	Clock    func() time.Time
	Log      *logging.Logger
}

// Controller keeps a user's dashboard view current with the store.
type Controller struct {
	onChange func(View)
	clock    func() time.Time
	log      *logging.Logger

	mu          sync.Mutex
	items       []Summary
	query       Query
	loaded      bool
	err         error
	view        View
	unsubscribe func()
}

// NewController subscribes to uid's resumes. The first view is computed before
// it returns.
func NewController(ctx context.Context, st store.Store, uid string, opts ControllerOptions) (*Controller, error) {
	c := &Controller{
		onChange: opts.OnChange,
		clock:    opts.Clock,
		log:      opts.Log,
		query:    opts.Query,
	}
	if c.query.SortKey == "" {
		c.query = DefaultQuery()
	}
	if c.clock == nil {
		c.clock = time.Now
	}
	if c.log == nil {
		c.log = logging.NewNop()
	}

	unsubscribe, err := st.Subscribe(ctx, store.ResumesPath(uid), c.onSnapshot)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.unsubscribe = unsubscribe
	c.mu.Unlock()
	return c, nil
}

func (c *Controller) onSnapshot(value any, err error) {
	c.mu.Lock()
	if err != nil {
		c.log.Error("dashboard subscription failed", "error", err)
		c.err = err
	} else {
		c.items = Summaries(value)
		c.err = nil
	}
	c.loaded = true
	view := c.recomputeLocked()
	c.mu.Unlock()
	c.emit(view)
}

func (c *Controller) recomputeLocked() View {
	v := View{
		Items:  Derive(c.items, c.query),
		Total:  len(c.items),
		Stats:  ComputeStats(c.items, c.clock()),
		Query:  c.query,
		Loaded: c.loaded,
	}
	if c.err != nil {
		v.Error = "Could not load your resumes. Please try again later."
	}
	c.view = v
	return v
}

func (c *Controller) emit(v View) {
	if c.onChange != nil {
		c.onChange(v)
	}
}

// SetSearch changes the title filter.
func (c *Controller) SetSearch(term string) View {
	return c.update(func(q Query) Query {
		q.Search = term
		return q
	})
}

// Sort toggles the sort key.
func (c *Controller) Sort(key SortKey) View {
	return c.update(func(q Query) Query { return q.Toggle(key) })
}

// SetQuery replaces the whole query.
func (c *Controller) SetQuery(q Query) View {
	return c.update(func(Query) Query { return q })
}

func (c *Controller) update(fn func(Query) Query) View {
	c.mu.Lock()
	c.query = fn(c.query)
	view := c.recomputeLocked()
	c.mu.Unlock()
	c.emit(view)
	return view
}

// View returns the latest view.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view
}

// Close stops following the store.
func (c *Controller) Close() {
	c.mu.Lock()
	unsubscribe := c.unsubscribe
	c.unsubscribe = nil
	c.mu.Unlock()
	if unsubscribe != nil {
		unsubscribe()
	}
}
