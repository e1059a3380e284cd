package chain

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockRunner records calls and returns configured results.
type mockRunner struct {
	calls   []mockCall
	results []mockResult
	callIdx int
}

type mockCall struct {
	Exe  string
	Args []string
}

type mockResult struct {
	ExitCode int
	Err      error
}

func (m *mockRunner) Run(ctx context.Context, exe string, args []string) (int, error) {
	m.calls = append(m.calls, mockCall{Exe: exe, Args: args})
	if m.callIdx >= len(m.results) {
		return 0, nil
	}
	r := m.results[m.callIdx]
	m.callIdx++
	return r.ExitCode, r.Err
}

var threeSteps = []Step{
	{Name: "cover", Exec: "/t/dotCover.exe", Args: []string{"cover"}},
	{Name: "report XML", Exec: "/t/dotCover.exe", Args: []string{"report", "/ReportType=XML"}},
	{Name: "report HTML", Exec: "/t/dotCover.exe", Args: []string{"report", "/ReportType=HTML"}},
}

func TestExecutor_Run_AllSucceed(t *testing.T) {
	mock := &mockRunner{}
	var observed []string
	exec := NewExecutor(mock, nil).WithObserver(func(res StepResult, err error) {
		assert.NoError(t, err)
		observed = append(observed, res.Name)
	})

	results, err := exec.Run(context.Background(), threeSteps)
	require.NoError(t, err)
	require.Len(t, results, 3)
	require.Len(t, mock.calls, 3)
	for i, step := range threeSteps {
		assert.Equal(t, step.Exec, mock.calls[i].Exe)
		assert.Equal(t, step.Args, mock.calls[i].Args)
		assert.Equal(t, step.Name, results[i].Name)
	}
	assert.Equal(t, []string{"cover", "report XML", "report HTML"}, observed)
}

func TestExecutor_Run_StopsAtFirstNonZeroExit(t *testing.T) {
	mock := &mockRunner{results: []mockResult{{ExitCode: 0}, {ExitCode: 2}}}

	results, err := NewExecutor(mock, nil).Run(context.Background(), threeSteps)
	require.Error(t, err)
	assert.Len(t, mock.calls, 2, "HTML report must not run")
	assert.Len(t, results, 2)

	var stepErr *StepError
	require.ErrorAs(t, err, &stepErr)
	assert.Equal(t, "report XML", stepErr.Step)
	assert.Equal(t, 2, stepErr.ExitCode)
	assert.Equal(t, "report XML: exited with code 2", err.Error())
}

func TestExecutor_Run_PropagatesSpawnError(t *testing.T) {
	spawnErr := errors.New("permission denied")
	mock := &mockRunner{results: []mockResult{{ExitCode: -1, Err: spawnErr}}}

	_, err := NewExecutor(mock, nil).Run(context.Background(), threeSteps)
	require.Error(t, err)
	assert.ErrorIs(t, err, spawnErr)
	assert.Len(t, mock.calls, 1)
	assert.Equal(t, "cover: permission denied", err.Error())
}

func TestExecutor_Run_CancelledContextRunsNothing(t *testing.T) {
	mock := &mockRunner{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewExecutor(mock, nil).Run(ctx, threeSteps)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, mock.calls)
}

func TestExecutor_Run_Empty(t *testing.T) {
	results, err := NewExecutor(&mockRunner{}, nil).Run(context.Background(), nil)
	assert.NoError(t, err)
	assert.Empty(t, results)
}

func TestStep_CommandLine(t *testing.T) {
	assert.Equal(t, "/t/dotCover.exe report /ReportType=XML", threeSteps[1].CommandLine())
}

func TestExecRunner_ExitCode(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("needs sh")
	}
	var out bytes.Buffer
	r := &ExecRunner{Stdout: &out, Stderr: &out}

	code, err := r.Run(context.Background(), "sh", []string{"-c", "echo hello; exit 3"})
	require.NoError(t, err)
	assert.Equal(t, 3, code)
	assert.Equal(t, "hello\n", out.String())

	code, err = r.Run(context.Background(), "sh", []string{"-c", "true"})
	require.NoError(t, err)
	assert.Equal(t, 0, code)
}

func TestExecRunner_MissingExecutable(t *testing.T) {
	r := &ExecRunner{}
	code, err := r.Run(context.Background(), filepath.Join(t.TempDir(), "missing"), nil)
	assert.Error(t, err)
	assert.Equal(t, -1, code)
}

func TestResolveExecutable(t *testing.T) {
	dir := t.TempDir()
	exe := filepath.Join(dir, "dotCover.exe")
	require.NoError(t, os.WriteFile(exe, []byte("x"), 0o755))

	got, err := ResolveExecutable("dotCover", exe, "exec.dotcover")
	require.NoError(t, err)
	assert.Equal(t, exe, got)

	got, err = ResolveExecutable("dotCover", ` "`+exe+`" `, "exec.dotcover")
	require.NoError(t, err)
	assert.Equal(t, exe, got, "quotes and whitespace are stripped")

	missing := filepath.Join(dir, "nope.exe")
	_, err = ResolveExecutable("dotCover", missing, "exec.dotcover")
	require.Error(t, err)
	assert.Equal(t, `Can't find executable for "dotCover" at provided path: "`+missing+`"`, err.Error())

	_, err = ResolveExecutable("dotCover", dir, "exec.dotcover")
	assert.Error(t, err, "directories are not executables")

	_, err = ResolveExecutable("nunit", "", "exec.nunit")
	require.Error(t, err)
	var exeErr *ExecutableError
	require.ErrorAs(t, err, &exeErr)
	assert.Equal(t, "nunit", exeErr.Tool)
	assert.Contains(t, err.Error(), "not implemented")
	assert.Contains(t, err.Error(), "exec.nunit")
}

func TestLookPath(t *testing.T) {
	dir := t.TempDir()
	exe := filepath.Join(dir, "nuget.exe")
	require.NoError(t, os.WriteFile(exe, []byte("x"), 0o755))

	got, err := LookPath(exe)
	require.NoError(t, err)
	assert.Equal(t, exe, got)

	_, err = LookPath("definitely-not-a-real-tool-covergate")
	assert.Error(t, err)
}
