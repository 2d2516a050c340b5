package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/guru/internal/config"
	"github.com/abhisek/guru/internal/logger"
	"github.com/abhisek/guru/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "guru",
	Short: "Rangoli drawing tutor",
	Long: "Guru scores rangoli drawing sessions on pressure, velocity, symmetry, stroke order and flow,\n" +
		"and tracks mastery across five stages.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		settings = cfg
		return logger.Configure(cfg.LogLevel, cmd.ErrOrStderr())
	},
}

// settings is the resolved configuration of the running command.
var settings = config.Default()

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides GURU_DB env var)")
	rootCmd.PersistentFlags().String("config", "", "Path to TOML config file (default $XDG_CONFIG_HOME/guru/config.toml)")
	rootCmd.PersistentFlags().String("player", "", "Player id (overrides GURU_PLAYER env var)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: trace, debug, info, warn, error")

	rootCmd.AddCommand(practiceCmd)
	rootCmd.AddCommand(scoreCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(patternsCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig reads the config file and environment, then applies the
// persistent flags, which win over both.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	if v, _ := cmd.Flags().GetString("db"); v != "" {
		cfg.DB = v
	}
	if v, _ := cmd.Flags().GetString("player"); v != "" {
		cfg.Player = v
	}
	if v, _ := cmd.Flags().GetString("log-level"); v != "" {
		cfg.LogLevel = v
	}
	return cfg, cfg.Validate()
}

// resolveDBPath returns the configured database path, or the default XDG
// path when none is set.
func resolveDBPath(cfg config.Config) (string, error) {
	if cfg.DB != "" {
		return cfg.DB, store.EnsureDir(cfg.DB)
	}
	return store.DefaultDBPath()
}
