package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mamadbah2/telelbirds/pkg/clients/storage"
)

var staticDir string

var collectStaticCmd = &cobra.Command{
	Use:   "collectstatic",
	Short: "Upload static assets to the bucket",
	Long: `Upload every file under --dir to the static root of the bucket,
replacing previous versions.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := loadConfig()
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()

		if cfg.Storage.Bucket == "" {
			return errors.New("STORAGE_BUCKET must be set")
		}
		bucket, err := storage.NewBucket(cmd.Context(), cfg.Storage, log.Named("clients.storage"))
		if err != nil {
			return err
		}

		n, err := storage.CollectStatic(cmd.Context(), bucket, os.DirFS(staticDir))
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d static files copied to %s/%s\n", n, cfg.Storage.Bucket, cfg.Storage.StaticRoot)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(collectStaticCmd)

	collectStaticCmd.Flags().StringVar(&staticDir, "dir", "./static", "Local directory holding the assets")
}
