package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock(ms int64) func() time.Time {
	return func() time.Time { return time.UnixMilli(ms) }
}

func TestMemory_WriteGetUpdateDelete(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(WithClock(fixedClock(1000)))

	path := ResumePath("u1", "r1")
	require.NoError(t, m.Write(ctx, path, map[string]any{
		"resumeData": map[string]any{"personalInfo": map[string]any{"fullName": "Ada"}},
		"metadata":   map[string]any{"title": "CV", "createdAt": ServerTimestamp()},
	}))

	v, err := m.Get(ctx, path+"/metadata")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"title": "CV", "createdAt": float64(1000)}, v)

	require.NoError(t, m.Update(ctx, path, map[string]any{
		"metadata/title":        "Renamed",
		"metadata/lastModified": ServerTimestamp(),
	}))
	v, _ = m.Get(ctx, path+"/metadata")
	assert.Equal(t, map[string]any{"title": "Renamed", "createdAt": float64(1000), "lastModified": float64(1000)}, v)

	name, _ := m.Get(ctx, path+"/resumeData/personalInfo/fullName")
	assert.Equal(t, "Ada", name)

	require.NoError(t, m.Delete(ctx, path))
	v, err = m.Get(ctx, path)
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestMemory_RootScalarRejected(t *testing.T) {
	err := NewMemory().Write(context.Background(), "", "x")
	assert.ErrorIs(t, err, ErrInvalidPath)
}

func TestMemory_Subscribe(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.Write(ctx, ResumePath("u1", "r1"), map[string]any{"metadata": map[string]any{"title": "A"}}))

	var got []any
	unsubscribe, err := m.Subscribe(ctx, ResumesPath("u1"), func(v any, err error) {
		require.NoError(t, err)
		got = append(got, v)
	})
	require.NoError(t, err)
	require.Len(t, got, 1, "fires immediately with the current value")

	require.NoError(t, m.Write(ctx, ResumePath("u1", "r2"), map[string]any{"metadata": map[string]any{"title": "B"}}))
	require.Len(t, got, 2)
	assert.Len(t, got[1].(map[string]any), 2)

	// Unrelated writes are not delivered.
	require.NoError(t, m.Write(ctx, ResumePath("u2", "r1"), map[string]any{"x": 1}))
	assert.Len(t, got, 2)

	assert.Equal(t, 1, m.Subscribers())
	unsubscribe()
	unsubscribe()
	assert.Equal(t, 0, m.Subscribers())

	require.NoError(t, m.Delete(ctx, ResumePath("u1", "r1")))
	assert.Len(t, got, 2)
}

func TestMemory_GenerateID(t *testing.T) {
	m := NewMemory()
	a, b := m.GenerateID(), m.GenerateID()
	assert.NotEqual(t, a, b)
	assert.Len(t, a, 36)
}

func TestMemory_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, NewMemory().Write(ctx, "a", 1), context.Canceled)
}
