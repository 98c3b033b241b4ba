package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jonathan/resume-builder/internal/dashboard"
	"github.com/jonathan/resume-builder/internal/logging"
	"github.com/jonathan/resume-builder/internal/records"
	"github.com/jonathan/resume-builder/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenStatusStore_SQLite(t *testing.T) {
	ctx := context.Background()
	statusDatabaseURL, statusSQLitePath = "", filepath.Join(t.TempDir(), "resumes.db")
	t.Cleanup(func() { statusSQLitePath = "" })

	st, closeStore, err := openStatusStore(ctx)
	require.NoError(t, err)
	svc := records.NewService(st, logging.NewNop())
	_, err = svc.Create(ctx, "u1", types.CreateResumeRequest{Title: "Engine CV"})
	require.NoError(t, err)
	closeStore()

	// A second open sees what the first wrote.
	st, closeStore, err = openStatusStore(ctx)
	require.NoError(t, err)
	defer closeStore()
	items, stats, err := records.NewService(st, logging.NewNop()).List(ctx, "u1", dashboard.DefaultQuery())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Engine CV", items[0].Title)
	assert.Equal(t, 1, stats.Total)
}

func TestOpenStatusStore_NothingConfigured(t *testing.T) {
	statusDatabaseURL, statusSQLitePath = "", ""
	t.Setenv("DATABASE_URL", "")
	t.Setenv("SQLITE_PATH", "")

	_, _, err := openStatusStore(context.Background())
	assert.ErrorContains(t, err, "is required with --user-id")
}
