package cli

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/lucasnoah/covergate/internal/db"
)

var historyCmd = &cobra.Command{
	Use:   "history [run-id]",
	Short: "Show recorded coverage and restore runs",
	Long: `List the latest recorded runs, or show a single run when its id is given.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		applyOutputFlags(cmd, cfg)
		if cfg.History.DSN == "" {
			return fmt.Errorf("no run history configured: set history.dsn or --history-dsn")
		}

		var id uuid.UUID
		if len(args) == 1 {
			if id, err = uuid.Parse(args[0]); err != nil {
				return fmt.Errorf("invalid run id %q: %w", args[0], err)
			}
		}

		store, err := openHistory(cmd.Context(), cfg.History.DSN)
		if err != nil {
			return fmt.Errorf("open run history: %w", err)
		}
		defer store.Close()

		if len(args) == 1 {
			run, err := store.GetRun(cmd.Context(), id)
			if err != nil {
				return err
			}
			if run == nil {
				return fmt.Errorf("run %s not found", id)
			}
			printRun(cmd, run)
			return nil
		}

		stage, _ := cmd.Flags().GetString("stage")
		limit, _ := cmd.Flags().GetInt("limit")
		runs, err := store.ListRuns(cmd.Context(), stage, limit)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No runs found.")
			return nil
		}

		t := table.NewWriter()
		t.SetOutputMirror(cmd.OutOrStdout())
		t.SetStyle(table.StyleLight)
		t.AppendHeader(table.Row{"ID", "Stage", "Status", "Tests", "Scope", "Duration", "Started", "Message"})
		for _, r := range runs {
			t.AppendRow(table.Row{
				r.ID.String()[:8], r.Stage, r.Status, r.TestAssemblies, r.ScopeAssemblies,
				r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond).String(),
				r.StartedAt.Local().Format("2006-01-02 15:04:05"), r.Message,
			})
		}
		t.Render()
		return nil
	},
}

func printRun(cmd *cobra.Command, r *db.Run) {
	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.SetStyle(table.StyleLight)
	t.AppendRows([]table.Row{
		{"ID", r.ID.String()},
		{"Stage", r.Stage},
		{"Status", r.Status},
		{"Test assemblies", r.TestAssemblies},
		{"Scope assemblies", r.ScopeAssemblies},
		{"Started", r.StartedAt.Local().Format(time.RFC3339)},
		{"Finished", r.FinishedAt.Local().Format(time.RFC3339)},
		{"Message", r.Message},
	})
	t.Render()
}

func init() {
	historyCmd.Flags().String("stage", "", "Filter by stage: coverage or restore")
	historyCmd.Flags().Int("limit", 20, "Number of runs to show")
	historyCmd.Flags().String("history-dsn", "", "Postgres DSN of the run history (history.dsn)")
}
