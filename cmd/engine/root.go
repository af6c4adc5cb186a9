package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"seace-engine/internal/config"
	"seace-engine/internal/logger"
)

type rootFlags struct {
	dataDir     string
	defaultsCfg string
}

func newRootCmd() *cobra.Command {
	f := &rootFlags{}
	cmd := &cobra.Command{
		Use:           "engine",
		Short:         "SEACE procurement notice scraper",
		Long:          "Crawls the public SEACE listing for notices published in a date range, classifies them and optionally resolves their CUBSO codes.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	dataDir := os.Getenv("SEACE_DATA_DIR")
	if dataDir == "" {
		dataDir = "."
	}
	cmd.PersistentFlags().StringVar(&f.dataDir, "data-dir", dataDir, "directory holding config.yml and the run history database")
	cmd.PersistentFlags().StringVar(&f.defaultsCfg, "defaults", filepath.Join("config", "config.yml"), "config copied into the data dir on first start")

	cmd.AddCommand(
		newServeCmd(f),
		newCrawlCmd(f),
		newConfigCmd(f),
		newTokenCmd(f),
	)
	return cmd
}

// loadConfig bootstraps dataDir/config.yml and returns the validated config.
func (f *rootFlags) loadConfig() (config.Config, string, error) {
	if err := os.MkdirAll(f.dataDir, 0o755); err != nil {
		return config.Config{}, "", err
	}
	path, err := config.EnsureUserConfig(f.dataDir, f.defaultsCfg)
	if err != nil {
		return config.Config{}, "", fmt.Errorf("config bootstrap failed: %w", err)
	}
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, path, err
	}
	cfg, vr := config.NormalizeAndValidate(cfg)
	for _, w := range vr.Warnings {
		fmt.Fprintln(os.Stderr, "config warning:", w)
	}
	if err := vr.Err(); err != nil {
		return cfg, path, err
	}
	if cfg.App.DataDir == "" || cfg.App.DataDir == "." {
		cfg.App.DataDir = f.dataDir
	}
	return cfg, path, nil
}

func newLogger(cfg config.Config) (logger.Logger, error) {
	return logger.New(logger.Config{
		Level:       cfg.Logging.Level,
		Development: cfg.Logging.Development,
	})
}
