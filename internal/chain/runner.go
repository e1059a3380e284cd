package chain

import (
	"context"
	"fmt"
	"io"
	"os/exec"
)

// ProcessRunner abstracts process execution for testability.
type ProcessRunner interface {
	Run(ctx context.Context, exe string, args []string) (exitCode int, err error)
}

// ExecRunner implements ProcessRunner with os/exec, streaming the child's
// output to Stdout and Stderr.
type ExecRunner struct {
	Dir    string
	Stdout io.Writer
	Stderr io.Writer
}

func (e *ExecRunner) Run(ctx context.Context, exe string, args []string) (int, error) {
	cmd := exec.CommandContext(ctx, exe, args...)
	cmd.Dir = e.Dir
	cmd.Stdout = e.Stdout
	cmd.Stderr = e.Stderr

	err := cmd.Run()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return exitErr.ExitCode(), nil
		}
		return -1, fmt.Errorf("exec %s: %w", exe, err)
	}
	return 0, nil
}
