// Package restore is the NuGet package-restore stage: it collects solution
// files from the stream and runs "nuget restore" on each one in turn.
package restore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"strings"

	"go.uber.org/zap"

	"github.com/lucasnoah/covergate/internal/chain"
	"github.com/lucasnoah/covergate/internal/config"
	"github.com/lucasnoah/covergate/internal/stream"
)

// ErrNoSolutions is returned when the stream carried no solution files.
var ErrNoSolutions = errors.New("no solutions defined for nuget restore")

// EnvPackageRestore is the variable msbuild checks before restoring packages itself.
const EnvPackageRestore = "EnableNuGetPackageRestore"

// Stage implements stream.Stage for NuGet restores.
type Stage struct {
	opts     config.RestoreOptions
	exec     *chain.Executor
	log      *zap.Logger
	lookPath func(string) (string, error)
	getenv   func(string) string

	solutions []string
	restored  []string
}

var _ stream.Stage = (*Stage)(nil)

// NewStage creates a restore stage. A nil logger discards logs.
func NewStage(opts config.RestoreOptions, exec *chain.Executor, log *zap.Logger) *Stage {
	if opts.NuGet == "" {
		opts.NuGet = config.DefaultNuGet
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Stage{
		opts:     opts,
		exec:     exec,
		log:      log,
		lookPath: chain.LookPath,
		getenv:   os.Getenv,
	}
}

// Accept records every entry as a solution.
func (s *Stage) Accept(entry *stream.FileEntry) error {
	s.solutions = append(s.solutions, entry.Path)
	return nil
}

// Restored lists the solutions restored by the last Finalize.
func (s *Stage) Restored() []string {
	return s.restored
}

// Finalize restores the solutions that carry a .nuget folder, or all of them
// when forced.
func (s *Stage) Finalize(ctx context.Context) error {
	if len(s.solutions) == 0 {
		return ErrNoSolutions
	}

	var selected []string
	for _, sln := range s.solutions {
		sln = strings.ReplaceAll(sln, `\`, "/")
		if s.opts.Force || hasNuGetFolder(sln) {
			selected = append(selected, sln)
			continue
		}
		if s.opts.Debug {
			s.log.Debug("ignoring solution: no .nuget folder found alongside it", zap.String("solution", sln))
		}
	}

	if len(selected) == 0 {
		s.log.Info("nothing to do: all found solutions use msbuild to restore nuget packages")
		if s.getenv(EnvPackageRestore) != "true" {
			s.log.Warn(EnvPackageRestore + ` should be set to "true" if you want msbuild to restore packages`)
		}
		return nil
	}

	nuget, err := s.lookPath(s.opts.NuGet)
	if err != nil {
		s.log.Error("can't find nuget, put it on your PATH or set restore.nuget", zap.Error(err))
		return fmt.Errorf("can't restore packages: no nuget found at %q, set restore.nuget (--nuget)", s.opts.NuGet)
	}

	steps := make([]chain.Step, 0, len(selected))
	for _, sln := range selected {
		steps = append(steps, chain.Step{Name: "restore " + sln, Exec: nuget, Args: []string{"restore", sln}})
	}
	results, err := s.exec.Run(ctx, steps)
	done := len(results)
	if err != nil {
		done--
	}
	s.restored = selected[:done]
	if err != nil {
		return err
	}
	s.log.Info("packages restored", zap.Int("solutions", len(s.restored)))
	return nil
}

func hasNuGetFolder(solution string) bool {
	info, err := os.Stat(path.Join(path.Dir(solution), ".nuget"))
	return err == nil && info.IsDir()
}
