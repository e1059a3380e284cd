package cli

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/lucasnoah/covergate/internal/chain"
	"github.com/lucasnoah/covergate/internal/classify"
	"github.com/lucasnoah/covergate/internal/config"
	"github.com/lucasnoah/covergate/internal/coverage"
)

var planCmd = &cobra.Command{
	Use:   "plan [assemblies...]",
	Short: "Show how inputs are classified and the commands cover would run",
	Long: `Dry run of "cover": classify the inputs, print one row per input with the
predicates that decided it, then print the dotCover command lines. Nothing is
executed and no executable has to exist.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		applyCoverageFlags(cmd, &cfg.Coverage)
		if err := validateConfig(cfg); err != nil {
			return err
		}

		entries, err := collectEntries(inputOptsFrom(cmd, args, assemblyExts), cmd.InOrStdin())
		if err != nil {
			return err
		}

		stage, err := coverage.NewStage(cfg.Coverage, nil, nil)
		if err != nil {
			return err
		}
		opts := stage.Options()

		w := cmd.OutOrStdout()
		t := table.NewWriter()
		t.SetOutputMirror(w)
		t.SetStyle(table.StyleLight)
		t.AppendHeader(table.Row{"Path", "Kind", "bin", "Debug/agnostic", "Project match"})
		for _, e := range entries {
			d := classify.Path(e.FirstPath(), opts.AllowProjectAssemblyMismatch)
			kind := "ignored"
			if d.Include {
				kind = "scope"
				abs, err := config.AbsPath(e.Path)
				if err != nil {
					return err
				}
				if opts.TestAssemblyMatcher.Matches(abs) {
					kind = "test"
				}
			}
			t.AppendRow(table.Row{e.Path, kind, d.IsBin, d.IsDebugOrAgnostic, d.IsProjectMatch})
			if err := stage.Accept(e); err != nil {
				return err
			}
		}
		t.Render()

		runner := orPlaceholder(opts.Exec.NUnit, "<exec.nunit>")
		plan, err := stage.Plan(runner)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "\nRunner: %s (%s)\n", runner, plan.Runner)
		for _, step := range coverage.Steps(orPlaceholder(opts.Exec.DotCover, "<exec.dotcover>"), plan) {
			fmt.Fprintf(w, "%-12s %s\n", step.Name+":", quoteLine(step))
		}
		return nil
	},
}

func orPlaceholder(s, placeholder string) string {
	if s == "" {
		return placeholder
	}
	return s
}

// quoteLine renders a step with arguments containing spaces quoted, for
// pasting into a shell.
func quoteLine(s chain.Step) string {
	parts := make([]string, 0, len(s.Args)+1)
	for _, a := range append([]string{s.Exec}, s.Args...) {
		if strings.ContainsAny(a, " \t") {
			a = "'" + a + "'"
		}
		parts = append(parts, a)
	}
	return strings.Join(parts, " ")
}

func init() {
	addCoverageFlags(planCmd)
}
