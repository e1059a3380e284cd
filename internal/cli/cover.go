package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/lucasnoah/covergate/internal/chain"
	"github.com/lucasnoah/covergate/internal/config"
	"github.com/lucasnoah/covergate/internal/coverage"
	"github.com/lucasnoah/covergate/internal/metrics"
	"github.com/lucasnoah/covergate/internal/stream"
)

var coverCmd = &cobra.Command{
	Use:   "cover [assemblies...]",
	Short: "Run the tests under dotCover and write coverage reports",
	Long: `Classify build outputs into test and scope assemblies, run the NUnit console
runner under dotCover, then render XML and HTML coverage reports.

Assemblies come from the arguments, from --scan (every .dll and .exe below a
directory) and from --stdin (one path per line).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		applyCoverageFlags(cmd, &cfg.Coverage)
		applyOutputFlags(cmd, cfg)
		if err := validateConfig(cfg); err != nil {
			return err
		}

		entries, err := collectEntries(inputOptsFrom(cmd, args, assemblyExts), cmd.InOrStdin())
		if err != nil {
			return err
		}

		log := newLogger(cmd.ErrOrStderr(), cfg.Coverage.Debug)
		defer log.Sync()

		rec := metrics.NewRecorder()
		exec := chain.NewExecutor(newProcessRunner(cmd), log).WithObserver(rec.ObserveStep)
		stage, err := coverage.NewStage(cfg.Coverage, exec, log)
		if err != nil {
			return err
		}
		stage.WithMetrics(rec)

		started := time.Now().UTC()
		sink := &stream.RecordingSink{}
		runErr := stream.Run(cmd.Context(), stream.NewController(stage, sink), entries)

		r := runRecord{Stage: "coverage", StartedAt: started, Err: runErr}
		sets := stage.Sets()
		r.Tests, r.Scope = len(sets.Tests), len(sets.Scope)
		if sum := stage.Summary(); sum != nil {
			r.ID = sum.ID
		}
		finishRun(cmd.Context(), cfg, log, rec, r)

		if runErr != nil {
			return fmt.Errorf("coverage: %w", runErr)
		}
		opts := stage.Options()
		fmt.Fprintf(cmd.OutOrStdout(), "Coverage reports: %s.xml, %s.html\n", opts.CoverageReportBase, opts.CoverageReportBase)
		return nil
	},
}

// applyCoverageFlags overrides config values with the flags the user set.
func applyCoverageFlags(cmd *cobra.Command, c *config.CoverageOptions) {
	f := cmd.Flags()
	if f.Changed("dotcover") {
		c.Exec.DotCover, _ = f.GetString("dotcover")
	}
	if f.Changed("nunit") {
		c.Exec.NUnit, _ = f.GetString("nunit")
	}
	if f.Changed("filter") {
		c.TestAssemblyFilter, _ = f.GetString("filter")
	}
	if f.Changed("exclude") {
		c.Exclude, _ = f.GetStringSlice("exclude")
	}
	if f.Changed("base-filters") {
		c.BaseFilters, _ = f.GetString("base-filters")
	}
	if f.Changed("nunit-options") {
		c.NUnitOptions, _ = f.GetString("nunit-options")
	}
	if f.Changed("nunit-output") {
		c.NUnitOutput, _ = f.GetString("nunit-output")
	}
	if f.Changed("coverage-output") {
		c.CoverageOutput, _ = f.GetString("coverage-output")
	}
	if f.Changed("report-base") {
		c.CoverageReportBase, _ = f.GetString("report-base")
	}
	if f.Changed("allow-mismatch") {
		c.AllowProjectAssemblyMismatch, _ = f.GetBool("allow-mismatch")
	}
	if f.Changed("debug") {
		c.Debug, _ = f.GetBool("debug")
	}
}

// applyOutputFlags overrides the history and metrics settings.
func applyOutputFlags(cmd *cobra.Command, cfg *config.Config) {
	f := cmd.Flags()
	if f.Changed("history-dsn") {
		cfg.History.DSN, _ = f.GetString("history-dsn")
	}
	if f.Changed("metrics-textfile") {
		cfg.Metrics.Textfile, _ = f.GetString("metrics-textfile")
	}
}

func inputOptsFrom(cmd *cobra.Command, args []string, exts []string) inputOpts {
	scan, _ := cmd.Flags().GetString("scan")
	stdin, _ := cmd.Flags().GetBool("stdin")
	return inputOpts{args: args, scan: scan, stdin: stdin, exts: exts}
}

func addCoverageFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("dotcover", "", "Path to dotCover.exe (exec.dotcover)")
	f.String("nunit", "", "Path to the NUnit console runner (exec.nunit)")
	f.String("filter", "", "Pattern marking test assemblies (test_assembly_filter)")
	f.StringSlice("exclude", nil, "Extra coverage exclusion filters (exclude)")
	f.String("base-filters", "", "Base dotCover filter expression (base_filters)")
	f.String("nunit-options", "", "Options passed to the NUnit runner (nunit_options)")
	f.String("nunit-output", "", "Test results file (nunit_output)")
	f.String("coverage-output", "", "Coverage snapshot file (coverage_output)")
	f.String("report-base", "", "Coverage report path without extension (coverage_report_base)")
	f.Bool("allow-mismatch", false, "Accept assemblies whose name differs from their project folder")
	f.Bool("debug", false, "Log why assemblies were ignored")
	addInputFlags(cmd)
}

func addInputFlags(cmd *cobra.Command) {
	cmd.Flags().String("scan", "", "Directory to scan for inputs")
	cmd.Flags().Bool("stdin", false, "Read input paths from stdin, one per line")
}

func addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().String("history-dsn", "", "Postgres DSN to record the run in (history.dsn)")
	cmd.Flags().String("metrics-textfile", "", "Write Prometheus metrics to this file (metrics.textfile)")
}

func init() {
	addCoverageFlags(coverCmd)
	addOutputFlags(coverCmd)
}
