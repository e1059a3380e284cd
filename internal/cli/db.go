package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lucasnoah/covergate/internal/db"
)

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Run history database management",
}

var dbMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database schema migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDBFromConfig(cmd)
		if err != nil {
			return err
		}
		defer d.Close()
		if err := d.Migrate(cmd.Context()); err != nil {
			return err
		}
		cmd.Println("Schema is up to date.")
		return nil
	},
}

var dbResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset the database (destructive!)",
	RunE: func(cmd *cobra.Command, args []string) error {
		if yes, _ := cmd.Flags().GetBool("yes"); !yes {
			return fmt.Errorf("refusing to drop the run history without --yes")
		}
		d, err := openDBFromConfig(cmd)
		if err != nil {
			return err
		}
		defer d.Close()
		if err := d.Reset(cmd.Context()); err != nil {
			return err
		}
		cmd.Println("Run history reset.")
		return nil
	},
}

func openDBFromConfig(cmd *cobra.Command) (*db.DB, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	dsn := cfg.History.DSN
	if f := cmd.Flags().Lookup("history-dsn"); f != nil && f.Changed {
		dsn = f.Value.String()
	}
	if dsn == "" {
		return nil, fmt.Errorf("no run history configured: set history.dsn or --history-dsn")
	}
	return db.Open(cmd.Context(), dsn)
}

func init() {
	dbCmd.PersistentFlags().String("history-dsn", "", "Postgres DSN of the run history (history.dsn)")
	dbResetCmd.Flags().Bool("yes", false, "Confirm dropping every recorded run")
	dbCmd.AddCommand(dbMigrateCmd)
	dbCmd.AddCommand(dbResetCmd)
}
