// cmd/storefront/root.go
package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"storefront/internal/common/config"
	"storefront/internal/common/logger"
)

var (
	version    = "dev"
	configPath string
)

var rootCmd = &cobra.Command{
	Use:           "storefront",
	Short:         "Catalog ingestion and agent chat for the storefront",
	SilenceUsage:  true,
	SilenceErrors: false,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("storefront version %s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ./configs/config.yaml)")
	rootCmd.AddCommand(versionCmd)
}

// app is what every command that talks to a backend needs.
type app struct {
	cfg *config.Config
	zap *zap.Logger
	log logger.Logger
}

func loadApp() (*app, error) {
	var (
		cfg *config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.LoadFromFile(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	return &app{
		cfg: cfg,
		zap: zapLog,
		log: logger.NewZapAdapter(zapLog).With(map[string]interface{}{
			"service": cfg.App.Name,
			"version": version,
		}),
	}, nil
}

func (a *app) close() {
	_ = a.zap.Sync()
}
