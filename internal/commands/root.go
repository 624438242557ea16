// SPDX-License-Identifier: Apache-2.0

// Package commands wires the command line interface.
package commands

import (
	"context"

	"github.com/reviewdeck/reviewdeck/internal/config"
	"github.com/reviewdeck/reviewdeck/pkg/logx"
	"github.com/spf13/cobra"
)

var (
	configFile string
	dataDir    string
)

var rootCmd = &cobra.Command{
	Use:   "reviewdeck",
	Short: "Local-first dashboard for tracking companies and their reviews",
	Long: `ReviewDeck keeps a local store of companies you follow and cached
review pages, and migrates that store automatically across releases.`,
	SilenceUsage: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "",
		"config file (default searches the data directory and the working directory)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "",
		"data directory (overrides the configured one)")
}

func initConfig() {
	cfg, err := config.Initialize(configFile)
	if err != nil {
		logx.As().Error().Err(err).Msg("failed to load configuration")
		return
	}
	if err := logx.Initialize(cfg.Log); err != nil {
		logx.As().Error().Err(err).Msg("failed to initialize logging")
	}
}

// resolveDataDir applies the flag override on top of the configured data
// directory.
func resolveDataDir() string {
	if dataDir != "" {
		return dataDir
	}
	return config.Get().DataDir
}

// Execute runs the root command with the given context.
func Execute(ctx context.Context) error {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logx.As().Error().Err(err).Msg("command failed")
		return err
	}
	return nil
}
