package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ospreycove/hazmon/internal/config"
	"github.com/ospreycove/hazmon/internal/observability"
	"github.com/ospreycove/hazmon/internal/state"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "hazmon",
	Short: "Personal hazard monitor",
	Long:  "hazmon polls weather, seismic, air quality, news, and system health feeds for one location and raises alerts that escalate when left unacknowledged.",
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", defaultConfigPath(), "Path to configuration YAML")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(locationCmd)
	rootCmd.AddCommand(ackCmd)
	rootCmd.AddCommand(alertCmd)
	rootCmd.AddCommand(escalationCmd)
	rootCmd.AddCommand(overrideCmd)
}

func defaultConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".hazmon", "config.yaml")
}

// runtime bundles the pieces every subcommand needs.
type runtime struct {
	cfg    *config.Config
	logger *slog.Logger
	store  *state.FileStore
}

func loadRuntime() (*runtime, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	store, err := state.NewFileStore(cfg.StateDir, logger)
	if err != nil {
		return nil, err
	}
	return &runtime{cfg: cfg, logger: logger, store: store}, nil
}
