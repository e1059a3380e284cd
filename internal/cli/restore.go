package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/lucasnoah/covergate/internal/chain"
	"github.com/lucasnoah/covergate/internal/metrics"
	"github.com/lucasnoah/covergate/internal/restore"
	"github.com/lucasnoah/covergate/internal/stream"
)

var restoreCmd = &cobra.Command{
	Use:   "restore [solutions...]",
	Short: "Restore NuGet packages for solutions that carry a .nuget folder",
	Long: `Run "nuget restore" on every solution that has a .nuget folder next to it, one
after the other. Solutions without one are left to msbuild unless --force is set.

Solutions come from the arguments, from --scan (every .sln below a directory)
and from --stdin (one path per line).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		f := cmd.Flags()
		if f.Changed("nuget") {
			cfg.Restore.NuGet, _ = f.GetString("nuget")
		}
		if f.Changed("force") {
			cfg.Restore.Force, _ = f.GetBool("force")
		}
		if f.Changed("debug") {
			cfg.Restore.Debug, _ = f.GetBool("debug")
		}
		applyOutputFlags(cmd, cfg)
		if err := validateConfig(cfg); err != nil {
			return err
		}

		entries, err := collectEntries(inputOptsFrom(cmd, args, solutionExts), cmd.InOrStdin())
		if err != nil {
			return err
		}

		log := newLogger(cmd.ErrOrStderr(), cfg.Restore.Debug)
		defer log.Sync()

		rec := metrics.NewRecorder()
		exec := chain.NewExecutor(newProcessRunner(cmd), log).WithObserver(rec.ObserveStep)
		stage := restore.NewStage(cfg.Restore, exec, log)

		started := time.Now().UTC()
		runErr := stream.Run(cmd.Context(), stream.NewController(stage, &stream.RecordingSink{}), entries)
		finishRun(cmd.Context(), cfg, log, rec, runRecord{Stage: "restore", StartedAt: started, Err: runErr})
		if runErr != nil {
			return fmt.Errorf("restore: %w", runErr)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Restored %d solution(s).\n", len(stage.Restored()))
		return nil
	},
}

func init() {
	restoreCmd.Flags().String("nuget", "", "Path or name of nuget.exe (restore.nuget)")
	restoreCmd.Flags().Bool("force", false, "Restore solutions without a .nuget folder too")
	restoreCmd.Flags().Bool("debug", false, "Log ignored solutions")
	addInputFlags(restoreCmd)
	addOutputFlags(restoreCmd)
}
