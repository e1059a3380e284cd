package cli

import (
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/lucasnoah/covergate/internal/config"
	"github.com/lucasnoah/covergate/internal/summary"
)

var summaryCmd = &cobra.Command{
	Use:   "summary [path]",
	Short: "Show the summary of the last coverage run",
	Long: `Read the JSON run summary written by "cover" (coverage.summary_output by
default) and print its steps and outputs. Exits non-zero when that run failed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := ""
		if len(args) == 1 {
			path = args[0]
		} else {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			path = cfg.Coverage.SummaryOutput
		}
		path, err := config.AbsPath(path)
		if err != nil {
			return err
		}

		run, err := summary.Read(path)
		if err != nil {
			return fmt.Errorf("read run summary: %w", err)
		}

		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "Run %s: %s (%s), %d test and %d scope assemblies\n",
			run.ID, run.Status, run.Runner, len(run.TestAssemblies), len(run.ScopeAssemblies))

		if len(run.Steps) > 0 {
			t := table.NewWriter()
			t.SetOutputMirror(w)
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"Step", "Exit code", "Duration"})
			for _, s := range run.Steps {
				t.AppendRow(table.Row{s.Name, s.ExitCode, s.Duration.Round(time.Millisecond).String()})
			}
			t.Render()
		}
		fmt.Fprintf(w, "XML report:  %s\nHTML report: %s\n", run.Outputs.XMLReport, run.Outputs.HTMLReport)

		if run.Status != "success" {
			return fmt.Errorf("coverage run %s failed: %s", run.ID, run.Error)
		}
		return nil
	},
}
