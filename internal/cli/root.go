package cli

import (
	"context"

	"github.com/spf13/cobra"
)

var version = "dev"

func SetVersion(v string) {
	version = v
}

var rootCmd = &cobra.Command{
	Use:   "covergate",
	Short: "covergate: dotCover coverage and NuGet restore stages for .NET builds",
	Long: `covergate runs code coverage over the test assemblies of a .NET build.

Build outputs are classified into test assemblies and scope assemblies, then
dotCover runs the NUnit console runner over the tests and renders XML and HTML
coverage reports. Configuration is read from ./covergate.yaml or
~/.covergate/config.yaml; flags override the file.`,
	SilenceUsage: true,
}

// ExecuteContext runs the root command with ctx, so cancelling ctx stops the
// running external process.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(coverCmd)
	rootCmd.AddCommand(restoreCmd)
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(dbCmd)
}
