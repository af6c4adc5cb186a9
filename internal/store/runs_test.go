package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTemp(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "engine.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, Migrate(db.Pool))
	return db
}

func TestOpen_LocksDataDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engine.db")
	first, err := Open(path)
	require.NoError(t, err)

	_, err = Open(path)
	assert.ErrorIs(t, err, ErrLocked)

	require.NoError(t, first.Close())
	second, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, second.Close())
}

func TestMigrate_Idempotent(t *testing.T) {
	db := openTemp(t)
	require.NoError(t, Migrate(db.Pool))
}

func TestRuns_Lifecycle(t *testing.T) {
	db := openTemp(t)
	ctx := context.Background()

	base := time.Date(2025, 2, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, StartRun(ctx, db.Pool, Run{ID: "a", From: "01/01/2025", To: "31/01/2025", StartedAt: base}))
	require.NoError(t, StartRun(ctx, db.Pool, Run{ID: "b", From: "01/01/2025", To: "31/01/2025", MaxResults: 50, Enrich: true, StartedAt: base.Add(time.Minute)}))

	report := map[string]any{"stop_reason": "cap"}
	require.NoError(t, FinishRun(ctx, db.Pool, "b", 50, 8, "cap", "", 3*time.Second, report))
	require.NoError(t, FinishRun(ctx, db.Pool, "a", 0, 1, "", "listing unavailable", time.Second, nil))

	runs, err := ListRuns(ctx, db.Pool, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	b := runs[0]
	assert.Equal(t, "b", b.ID)
	assert.Equal(t, RunOK, b.Status)
	assert.Equal(t, 50, b.Count)
	assert.Equal(t, 8, b.Pages)
	assert.True(t, b.Enrich)
	assert.Equal(t, int64(3000), b.DurationMS)
	assert.JSONEq(t, `{"stop_reason":"cap"}`, string(b.Report))
	require.NotNil(t, b.FinishedAt)
	assert.True(t, base.Add(time.Minute).Equal(b.StartedAt))

	a, err := GetRun(ctx, db.Pool, "a")
	require.NoError(t, err)
	assert.Equal(t, RunFailed, a.Status)
	assert.Equal(t, "listing unavailable", a.Error)
	assert.Nil(t, a.Report)
}

func TestRuns_NotFound(t *testing.T) {
	db := openTemp(t)
	ctx := context.Background()

	_, err := GetRun(ctx, db.Pool, "nope")
	assert.ErrorIs(t, err, ErrRunNotFound)

	err = FinishRun(ctx, db.Pool, "nope", 0, 0, "", "", 0, nil)
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestRuns_Maintenance(t *testing.T) {
	db := openTemp(t)
	ctx := context.Background()

	require.NoError(t, StartRun(ctx, db.Pool, Run{ID: "old", StartedAt: time.Now().Add(-100 * 24 * time.Hour)}))
	require.NoError(t, StartRun(ctx, db.Pool, Run{ID: "new"}))

	n, err := MarkInterrupted(ctx, db.Pool)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = CleanupOldRuns(ctx, db.Pool, 90*24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	r, err := GetRun(ctx, db.Pool, "new")
	require.NoError(t, err)
	assert.Equal(t, RunFailed, r.Status)
	assert.Equal(t, "interrupted", r.Error)
}
