package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mamadbah2/telelbirds/internal/app"
	"github.com/mamadbah2/telelbirds/internal/service/reporting"
)

var dryRun bool

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Build the daily farm snapshot now",
	Long: `Compute the farm snapshot and publish it to the archive, the spreadsheet
and the manager, the same way the scheduled job does.

Examples:
  telelbirds snapshot            # publish now
  telelbirds snapshot --dry-run  # only print the summary`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := loadConfig()
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()

		ctx := cmd.Context()
		application, err := app.New(ctx, cfg, log)
		if err != nil {
			return err
		}
		defer application.Close(context.Background())

		publish := application.Reporting.Publish
		if dryRun {
			publish = application.Reporting.Snapshot
		}
		snap, err := publish(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), reporting.Summary(snap))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(snapshotCmd)

	snapshotCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Compute and print without publishing")
}
