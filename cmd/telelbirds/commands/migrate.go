package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mamadbah2/telelbirds/internal/repository/postgres"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	Long: `Enable PostGIS and create or extend every table. Running it twice is
harmless.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := loadConfig()
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()

		db, err := postgres.Open(cfg.Database, log)
		if err != nil {
			return err
		}
		defer func() { _ = postgres.Close(db) }()

		if err := postgres.Migrate(db); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "migrated %d tables\n", len(postgres.AllModels()))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
