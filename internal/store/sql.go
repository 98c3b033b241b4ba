package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jonathan/resume-builder/internal/db"
	"github.com/jonathan/resume-builder/internal/logging"
)

// NodeStore is the row persistence behind the SQL store. *db.DB and *db.SQLite implement it.
type NodeStore interface {
	ListNodes(ctx context.Context, prefix string) (map[string]any, error)
	ApplyNodeChanges(ctx context.Context, changes []db.NodeChange) error
}

// SQL persists the tree as one row per leaf and relies on a Notifier to
// tell subscribers about writes, including writes made by other processes.
type SQL struct {
	nodes       NodeStore
	notifier    Notifier
	log         *logging.Logger
	clock       func() time.Time
	readTimeout time.Duration
	hub         hub
}

// NewSQL wraps nodes. Call Start before subscribing.
func NewSQL(nodes NodeStore, notifier Notifier, log *logging.Logger) *SQL {
	if notifier == nil {
		notifier = NewLocalNotifier()
	}
	return &SQL{
		nodes:       nodes,
		notifier:    notifier,
		log:         log.With("component", "sql_store"),
		clock:       time.Now,
		readTimeout: 10 * time.Second,
	}
}

// Start wires the notifier to the subscription hub.
func (p *SQL) Start(ctx context.Context) error {
	return p.notifier.Start(ctx, p.onChange)
}

func (p *SQL) onChange(paths []string) {
	if p.hub.len() == 0 {
		return
	}
	p.hub.dispatch(paths, func(path string) (any, error) {
		ctx, cancel := context.WithTimeout(context.Background(), p.readTimeout)
		defer cancel()
		return p.read(ctx, path)
	})
}

func (p *SQL) read(ctx context.Context, path string) (any, error) {
	leaves, err := p.nodes.ListNodes(ctx, path)
	if err != nil {
		return nil, &UnavailableError{Op: "read", Path: path, Cause: err}
	}
	return build(leaves, path), nil
}

func (p *SQL) Get(ctx context.Context, path string) (any, error) {
	path, err := CleanPath(path)
	if err != nil {
		return nil, err
	}
	return p.read(ctx, path)
}

func (p *SQL) Subscribe(ctx context.Context, path string, fn Listener) (func(), error) {
	path, err := CleanPath(path)
	if err != nil {
		return nil, err
	}
	if fn == nil {
		return nil, fmt.Errorf("listener required")
	}
	id := p.hub.add(path, fn)
	fn(p.read(ctx, path))
	var once sync.Once
	return func() { once.Do(func() { p.hub.remove(id) }) }, nil
}

func (p *SQL) Write(ctx context.Context, path string, value any) error {
	return p.Update(ctx, path, map[string]any{"": value})
}

func (p *SQL) Update(ctx context.Context, path string, values map[string]any) error {
	path, err := CleanPath(path)
	if err != nil {
		return err
	}
	changes, err := writeChanges(path, values, p.clock().UnixMilli())
	if err != nil {
		return err
	}
	if err := rejectRootScalar(changes); err != nil {
		return err
	}
	rows := make([]db.NodeChange, len(changes))
	for i, c := range changes {
		rows[i] = db.NodeChange{Prefix: c.Prefix, Ancestors: ancestors(c.Prefix), Leaves: c.Leaves}
	}
	if err := p.nodes.ApplyNodeChanges(ctx, rows); err != nil {
		return &UnavailableError{Op: "write", Path: path, Cause: err}
	}
	if err := p.notifier.Publish(ctx, prefixes(changes)); err != nil {
		// The write is durable; only live listeners miss this change.
		p.log.Warn("failed to publish store change", "path", path, "error", err)
	}
	return nil
}

func (p *SQL) Delete(ctx context.Context, path string) error {
	return p.Write(ctx, path, nil)
}

func (p *SQL) GenerateID() string { return newID() }

func (p *SQL) Close() error { return p.notifier.Close() }
