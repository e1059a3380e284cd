package summary

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucasnoah/covergate/internal/chain"
)

func TestWriteAndRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports", "coverage-summary.json")
	run := &Run{
		ID:             "run-1",
		Runner:         "nunit2",
		TestAssemblies: []string{"/a/A.Tests.dll"},
		Steps:          []chain.StepResult{{Name: "cover", ExitCode: 0, Duration: time.Second}},
		Outputs:        Outputs{XMLReport: "/out/coverage.xml"},
	}
	run.Finish(nil)
	require.NoError(t, Write(path, run))

	got, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, run, got)
	assert.Equal(t, "success", got.Status)
	assert.NotEmpty(t, got.FinishedAt)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files are left behind")
}

func TestFinishWithError(t *testing.T) {
	run := &Run{}
	run.Finish(errors.New("cover: exited with code 1"))
	assert.Equal(t, "failed", run.Status)
	assert.Equal(t, "cover: exited with code 1", run.Error)
}

func TestReadMissing(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "missing.json"))
	assert.True(t, os.IsNotExist(err))
}

func TestWriteUnderRegularFile(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	err := Write(filepath.Join(blocker, "coverage-summary.json"), &Run{ID: "run-1"})
	require.Error(t, err)
	assert.Equal(t, 1, strings.Count(err.Error(), blocker), "path appears once: %v", err)
}

func TestReadCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "coverage-summary.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0o644))

	_, err := Read(path)
	assert.ErrorContains(t, err, "parse summary")
}
