package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucasnoah/covergate/internal/chain"
)

func TestRecorder_Steps(t *testing.T) {
	r := NewRecorder()
	r.ObserveStep(chain.StepResult{Name: "cover", Duration: 2 * time.Second}, nil)
	r.ObserveStep(chain.StepResult{Name: "report XML", Duration: time.Second}, errors.New("exit 1"))

	assert.Equal(t, 1.0, testutil.ToFloat64(r.steps.WithLabelValues("cover", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.steps.WithLabelValues("report XML", "failure")))
	assert.Equal(t, 2, testutil.CollectAndCount(r.stepDuration))
}

func TestRecorder_RunsAndAssemblies(t *testing.T) {
	r := NewRecorder()
	r.SetAssemblies("test", 3)
	r.SetAssemblies("scope", 5)
	r.ObserveRun("coverage", nil)
	r.ObserveRun("restore", errors.New("no nuget"))

	assert.Equal(t, 3.0, testutil.ToFloat64(r.assemblies.WithLabelValues("test")))
	assert.Equal(t, 5.0, testutil.ToFloat64(r.assemblies.WithLabelValues("scope")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.runs.WithLabelValues("coverage", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.runs.WithLabelValues("restore", "failure")))
}

func TestRecorder_WriteTextfile(t *testing.T) {
	r := NewRecorder()
	r.ObserveRun("coverage", nil)

	path := filepath.Join(t.TempDir(), "nested", "covergate.prom")
	require.NoError(t, r.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), `covergate_runs_total{outcome="success",stage="coverage"} 1`), string(data))
}
