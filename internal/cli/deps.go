package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/lucasnoah/covergate/internal/chain"
	"github.com/lucasnoah/covergate/internal/config"
	"github.com/lucasnoah/covergate/internal/db"
	"github.com/lucasnoah/covergate/internal/metrics"
)

// newProcessRunner builds the runner for external tools. Tests replace it.
var newProcessRunner = func(cmd *cobra.Command) chain.ProcessRunner {
	return &chain.ExecRunner{Stdout: cmd.OutOrStdout(), Stderr: cmd.ErrOrStderr()}
}

// historyStore is the part of the run history the commands use.
type historyStore interface {
	RecordRun(ctx context.Context, r db.Run) error
	ListRuns(ctx context.Context, stage string, limit int) ([]db.Run, error)
	GetRun(ctx context.Context, id uuid.UUID) (*db.Run, error)
	Close()
}

// openHistory opens and migrates the run history. Tests replace it.
var openHistory = func(ctx context.Context, dsn string) (historyStore, error) {
	d, err := db.Open(ctx, dsn)
	if err != nil {
		return nil, err
	}
	if err := d.Migrate(ctx); err != nil {
		d.Close()
		return nil, err
	}
	return d, nil
}

// newLogger writes console-encoded logs to w, at debug level when debug is set.
func newLogger(w io.Writer, debug bool) *zap.Logger {
	level := zapcore.InfoLevel
	if debug {
		level = zapcore.DebugLevel
	}
	enc := zap.NewDevelopmentEncoderConfig()
	enc.TimeKey = ""
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(enc), zapcore.AddSync(w), level)
	return zap.New(core)
}

var configFile string

func loadConfig() (*config.Config, error) {
	if configFile != "" {
		return config.Load(configFile)
	}
	return config.LoadDefault()
}

// validateConfig returns an error listing every validation problem.
func validateConfig(cfg *config.Config) error {
	errs := config.Validate(cfg)
	if len(errs) == 0 {
		return nil
	}
	msg := fmt.Sprintf("config has %d validation error(s):", len(errs))
	for _, e := range errs {
		msg += "\n  - " + e.Error()
	}
	return errors.New(msg)
}

// runRecord is what every stage command reports once it finished.
type runRecord struct {
	ID        string
	Stage     string
	Tests     int
	Scope     int
	StartedAt time.Time
	Err       error
}

// finishRun records the outcome in metrics, the metrics textfile and the run
// history. Failures here are logged, never returned: the stage result wins.
func finishRun(ctx context.Context, cfg *config.Config, log *zap.Logger, rec *metrics.Recorder, r runRecord) {
	rec.ObserveRun(r.Stage, r.Err)
	if cfg.Metrics.Textfile != "" {
		if err := rec.WriteTextfile(cfg.Metrics.Textfile); err != nil {
			log.Warn("could not write metrics", zap.Error(err))
		}
	}

	if cfg.History.DSN == "" {
		return
	}
	store, err := openHistory(ctx, cfg.History.DSN)
	if err != nil {
		log.Warn("could not open run history", zap.Error(err))
		return
	}
	defer store.Close()

	id, err := uuid.Parse(r.ID)
	if err != nil {
		id = uuid.New()
	}
	row := db.Run{
		ID:              id,
		Stage:           r.Stage,
		Status:          "success",
		TestAssemblies:  r.Tests,
		ScopeAssemblies: r.Scope,
		StartedAt:       r.StartedAt,
		FinishedAt:      time.Now().UTC(),
	}
	if r.Err != nil {
		row.Status = "failed"
		row.Message = r.Err.Error()
	}
	if err := store.RecordRun(ctx, row); err != nil {
		log.Warn("could not record run", zap.Error(err))
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "f", "", "path to covergate config file")
}
