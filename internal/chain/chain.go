// Package chain runs external processes one after another, stopping at the
// first one that fails.
package chain

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Step is one external process invocation.
type Step struct {
	Name string
	Exec string
	Args []string
}

// CommandLine renders the step for logs.
func (s Step) CommandLine() string {
	return strings.Join(append([]string{s.Exec}, s.Args...), " ")
}

// StepResult records a completed step.
type StepResult struct {
	Name     string        `json:"name"`
	ExitCode int           `json:"exit_code"`
	Duration time.Duration `json:"duration_ns"`
}

// StepError is returned for the step that stopped the chain.
type StepError struct {
	Step     string
	ExitCode int
	Err      error
}

func (e *StepError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Step, e.Err)
	}
	return fmt.Sprintf("%s: exited with code %d", e.Step, e.ExitCode)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// Observer is told about every step that ran, successful or not.
type Observer func(res StepResult, err error)

// Executor runs chains of steps through a ProcessRunner.
type Executor struct {
	runner  ProcessRunner
	log     *zap.Logger
	observe Observer
}

// NewExecutor creates an Executor. A nil logger discards logs.
func NewExecutor(runner ProcessRunner, log *zap.Logger) *Executor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Executor{runner: runner, log: log}
}

// WithObserver returns a copy of the executor reporting to fn.
func (e *Executor) WithObserver(fn Observer) *Executor {
	cp := *e
	cp.observe = fn
	return &cp
}

// Run executes steps in order. No step starts before its predecessor exited
// with code zero; the first failure is returned as a *StepError together with
// the results of the steps that did run.
func (e *Executor) Run(ctx context.Context, steps []Step) ([]StepResult, error) {
	results := make([]StepResult, 0, len(steps))
	for _, step := range steps {
		res, err := e.runStep(ctx, step)
		results = append(results, res)
		if e.observe != nil {
			e.observe(res, err)
		}
		if err != nil {
			return results, err
		}
	}
	return results, nil
}

func (e *Executor) runStep(ctx context.Context, step Step) (StepResult, error) {
	if err := ctx.Err(); err != nil {
		return StepResult{Name: step.Name, ExitCode: -1}, &StepError{Step: step.Name, ExitCode: -1, Err: err}
	}

	e.log.Info("running step", zap.String("step", step.Name))
	e.log.Debug("command line", zap.String("step", step.Name), zap.String("command", step.CommandLine()))
	start := time.Now()
	exitCode, err := e.runner.Run(ctx, step.Exec, step.Args)
	res := StepResult{Name: step.Name, ExitCode: exitCode, Duration: time.Since(start)}

	if err != nil {
		return res, &StepError{Step: step.Name, ExitCode: exitCode, Err: err}
	}
	if exitCode != 0 {
		return res, &StepError{Step: step.Name, ExitCode: exitCode}
	}
	e.log.Debug("step finished", zap.String("step", step.Name), zap.Duration("duration", res.Duration))
	return res, nil
}
