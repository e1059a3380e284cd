package db

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testDB connects to COVERGATE_TEST_DSN; the tests are skipped without it.
func testDB(t *testing.T) *DB {
	t.Helper()
	dsn := os.Getenv("COVERGATE_TEST_DSN")
	if dsn == "" {
		t.Skip("COVERGATE_TEST_DSN not set")
	}
	ctx := context.Background()
	d, err := Open(ctx, dsn)
	require.NoError(t, err)
	require.NoError(t, d.Reset(ctx))
	t.Cleanup(d.Close)
	return d
}

func TestMigrateIdempotent(t *testing.T) {
	d := testDB(t)
	require.NoError(t, d.Migrate(context.Background()))
	require.NoError(t, d.Migrate(context.Background()))
}

func TestRecordAndListRuns(t *testing.T) {
	d := testDB(t)
	ctx := context.Background()
	start := time.Now().UTC().Truncate(time.Millisecond)

	first := Run{ID: uuid.New(), Stage: "coverage", Status: "success", TestAssemblies: 2, ScopeAssemblies: 3,
		StartedAt: start, FinishedAt: start.Add(time.Minute)}
	second := Run{Stage: "restore", Status: "failed", Message: "no nuget",
		StartedAt: start.Add(time.Hour), FinishedAt: start.Add(time.Hour)}
	require.NoError(t, d.RecordRun(ctx, first))
	require.NoError(t, d.RecordRun(ctx, second))

	runs, err := d.ListRuns(ctx, "", 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "restore", runs[0].Stage, "newest first")
	assert.NotEqual(t, uuid.Nil, runs[0].ID)

	runs, err = d.ListRuns(ctx, "coverage", 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, 2, runs[0].TestAssemblies)

	got, err := d.GetRun(ctx, first.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, first.ID, got.ID)
	assert.True(t, first.StartedAt.Equal(got.StartedAt))

	missing, err := d.GetRun(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestOpenBadDSN(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := Open(ctx, "postgres://nobody@127.0.0.1:1/none?connect_timeout=1")
	assert.Error(t, err)
}
