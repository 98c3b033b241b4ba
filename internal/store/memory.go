package store

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Memory is an in-process Store. Listeners run synchronously on the writing
// goroutine after the write has been applied.
type Memory struct {
	mu     sync.RWMutex
	leaves map[string]any
	clock  func() time.Time
	hub    hub
}

// MemoryOption configures a Memory store.
type MemoryOption func(*Memory)

// WithClock overrides the clock used to resolve server timestamps.
func WithClock(clock func() time.Time) MemoryOption {
	return func(m *Memory) { m.clock = clock }
}

// NewMemory returns an empty in-memory store.
func NewMemory(opts ...MemoryOption) *Memory {
	m := &Memory{leaves: make(map[string]any), clock: time.Now}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Memory) Get(_ context.Context, path string) (any, error) {
	path, err := CleanPath(path)
	if err != nil {
		return nil, err
	}
	return m.read(path)
}

func (m *Memory) read(path string) (any, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return build(m.leaves, path), nil
}

func (m *Memory) Subscribe(_ context.Context, path string, fn Listener) (func(), error) {
	path, err := CleanPath(path)
	if err != nil {
		return nil, err
	}
	if fn == nil {
		return nil, fmt.Errorf("listener required")
	}
	id := m.hub.add(path, fn)
	fn(m.read(path))
	var once sync.Once
	return func() { once.Do(func() { m.hub.remove(id) }) }, nil
}

func (m *Memory) Write(ctx context.Context, path string, value any) error {
	path, err := CleanPath(path)
	if err != nil {
		return err
	}
	return m.Update(ctx, path, map[string]any{"": value})
}

func (m *Memory) Update(ctx context.Context, path string, values map[string]any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := CleanPath(path)
	if err != nil {
		return err
	}
	changes, err := writeChanges(path, values, m.clock().UnixMilli())
	if err != nil {
		return err
	}
	if err := rejectRootScalar(changes); err != nil {
		return err
	}
	m.mu.Lock()
	for _, c := range changes {
		applyChange(m.leaves, c)
	}
	m.mu.Unlock()
	m.hub.dispatch(prefixes(changes), m.read)
	return nil
}

func (m *Memory) Delete(ctx context.Context, path string) error {
	return m.Write(ctx, path, nil)
}

func (m *Memory) GenerateID() string { return newID() }

// Subscribers reports how many listeners are registered.
func (m *Memory) Subscribers() int { return m.hub.len() }

func rejectRootScalar(changes []Change) error {
	for _, c := range changes {
		if _, ok := c.Leaves[""]; ok {
			return fmt.Errorf("%w: scalar value at root", ErrInvalidPath)
		}
	}
	return nil
}
