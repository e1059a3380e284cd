// Package coverage is the coverage stage of a build stream: it collects test
// and scope assemblies as they pass by and, at end of input, runs dotCover
// around the NUnit console runner and renders the XML and HTML reports.
package coverage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lucasnoah/covergate/internal/chain"
	"github.com/lucasnoah/covergate/internal/classify"
	"github.com/lucasnoah/covergate/internal/command"
	"github.com/lucasnoah/covergate/internal/config"
	"github.com/lucasnoah/covergate/internal/stream"
	"github.com/lucasnoah/covergate/internal/summary"
)

const (
	toolDotCover = "dotCover"
	toolNUnit    = "nunit"
)

// AssemblySets are the assemblies collected during a run.
type AssemblySets struct {
	Tests []string
	Scope []string
}

// Metrics receives the classification counts of a run.
type Metrics interface {
	SetAssemblies(kind string, n int)
}

// Stage implements stream.Stage for coverage runs.
type Stage struct {
	opts    config.CoverageOptions
	exec    *chain.Executor
	log     *zap.Logger
	metrics Metrics

	sets AssemblySets
	run  *summary.Run
}

var _ stream.Stage = (*Stage)(nil)

// NewStage merges opts with the defaults and prepares a run. exec runs the
// dotCover steps.
func NewStage(opts config.CoverageOptions, exec *chain.Executor, log *zap.Logger) (*Stage, error) {
	resolved, err := opts.WithDefaults()
	if err != nil {
		return nil, fmt.Errorf("coverage options: %w", err)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Stage{opts: resolved, exec: exec, log: log}, nil
}

// WithMetrics reports classification counts to m.
func (s *Stage) WithMetrics(m Metrics) *Stage {
	s.metrics = m
	return s
}

// Options returns the resolved options of the run.
func (s *Stage) Options() config.CoverageOptions {
	return s.opts
}

// Sets returns a copy of the assemblies collected so far.
func (s *Stage) Sets() AssemblySets {
	return AssemblySets{Tests: slices.Clone(s.sets.Tests), Scope: slices.Clone(s.sets.Scope)}
}

// Summary returns the record of the finished run, or nil before Finalize.
func (s *Stage) Summary() *summary.Run {
	return s.run
}

// Accept classifies the entry by the path it was first seen at and files its
// current path, made absolute, as a test or scope assembly.
func (s *Stage) Accept(entry *stream.FileEntry) error {
	first := entry.FirstPath()
	d := classify.Path(first, s.opts.AllowProjectAssemblyMismatch)
	if !d.Include {
		if s.opts.Debug {
			s.log.Debug("ignore",
				zap.String("path", first),
				zap.Bool("isBin", d.IsBin),
				zap.Bool("isDebugOrAgnostic", d.IsDebugOrAgnostic),
				zap.Bool("isProjectMatch", d.IsProjectMatch),
			)
		}
		return nil
	}

	p, err := config.AbsPath(entry.Path)
	if err != nil {
		return fmt.Errorf("resolve assembly path %q: %w", entry.Path, err)
	}
	if s.opts.TestAssemblyMatcher.Matches(p) {
		s.sets.Tests = append(s.sets.Tests, strings.ReplaceAll(p, `\`, "/"))
	} else {
		s.sets.Scope = append(s.sets.Scope, p)
	}
	return nil
}

// Plan builds the argument vectors from the collected assemblies using
// runner as the NUnit executable. It does not touch the filesystem.
func (s *Stage) Plan(runner string) (*command.Plan, error) {
	return command.Build(command.Input{
		Runner:             runner,
		RunnerOptions:      s.opts.NUnitOptions,
		RunnerOutput:       s.opts.NUnitOutput,
		CoverageOutput:     s.opts.CoverageOutput,
		CoverageReportBase: s.opts.CoverageReportBase,
		BaseFilters:        s.opts.BaseFilters,
		Exclude:            s.opts.Exclude,
		TestAssemblies:     s.sets.Tests,
		ScopeAssemblies:    s.sets.Scope,
	})
}

// Finalize runs dotCover cover, then the XML report, then the HTML report.
func (s *Stage) Finalize(ctx context.Context) error {
	s.run = &summary.Run{
		ID:              uuid.NewString(),
		TestAssemblies:  slices.Clone(s.sets.Tests),
		ScopeAssemblies: slices.Clone(s.sets.Scope),
		Outputs: summary.Outputs{
			NUnitResult:      s.opts.NUnitOutput,
			CoverageSnapshot: s.opts.CoverageOutput,
			XMLReport:        s.opts.CoverageReportBase + ".xml",
			HTMLReport:       s.opts.CoverageReportBase + ".html",
		},
		StartedAt: time.Now().UTC().Format(time.RFC3339),
	}
	if s.metrics != nil {
		s.metrics.SetAssemblies("test", len(s.sets.Tests))
		s.metrics.SetAssemblies("scope", len(s.sets.Scope))
	}

	err := s.finalize(ctx)
	s.run.Finish(err)

	if errors.Is(err, command.ErrNoTestAssemblies) {
		return err
	}
	if werr := summary.Write(s.opts.SummaryOutput, s.run); werr != nil {
		s.log.Warn("could not write run summary", zap.String("path", s.opts.SummaryOutput), zap.Error(werr))
	}
	if err != nil {
		s.log.Error("coverage failed", zap.Error(err))
		return err
	}
	s.log.Info("coverage finished", zap.String("xml", s.run.Outputs.XMLReport), zap.String("html", s.run.Outputs.HTMLReport))
	return nil
}

func (s *Stage) finalize(ctx context.Context) error {
	if len(s.sets.Tests) == 0 {
		return command.ErrNoTestAssemblies
	}

	dotCover, err := chain.ResolveExecutable(toolDotCover, s.opts.Exec.DotCover, "exec.dotcover")
	if err != nil {
		return err
	}
	nunit, err := chain.ResolveExecutable(toolNUnit, s.opts.Exec.NUnit, "exec.nunit")
	if err != nil {
		return err
	}

	plan, err := s.Plan(nunit)
	if err != nil {
		return err
	}
	s.run.Runner = plan.Runner.String()

	if err := s.ensureOutputDirs(); err != nil {
		return err
	}

	steps := Steps(dotCover, plan)
	s.log.Info("running tests with coverage",
		zap.Int("tests", len(s.sets.Tests)),
		zap.Int("scope", len(s.sets.Scope)),
		zap.String("runner", plan.Runner.String()),
	)
	s.log.Info("running dotcover", zap.String("args", strings.Join(plan.Cover, " ")))

	results, err := s.exec.Run(ctx, steps)
	s.run.Steps = results
	return err
}

func (s *Stage) ensureOutputDirs() error {
	for _, p := range []string{s.opts.NUnitOutput, s.opts.CoverageOutput, s.opts.CoverageReportBase} {
		dir := filepath.Dir(p)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}
	return nil
}

// Steps turns a plan into the three-step dotCover chain.
func Steps(dotCover string, plan *command.Plan) []chain.Step {
	return []chain.Step{
		{Name: "cover", Exec: dotCover, Args: plan.Cover},
		{Name: "report XML", Exec: dotCover, Args: plan.XMLReport},
		{Name: "report HTML", Exec: dotCover, Args: plan.HTMLReport},
	}
}
