package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mamadbah2/telelbirds/internal/config"
	"github.com/mamadbah2/telelbirds/pkg/logger"
)

var envFile string

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "telelbirds",
	Short: "Management commands for the TelelBirds farm service",
	Long: `Management commands for the TelelBirds farm service.

Configuration is read from the environment, optionally loaded from a .env
file, exactly as the HTTP server does.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "Path to a .env file (defaults to ./.env when present)")
}

func loadConfig() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, nil, err
	}
	log, err := logger.New(cfg.Server.Env, cfg.Server.LogLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, log.Named("cli"), nil
}
