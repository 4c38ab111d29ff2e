// Package main provides the CLI entrypoint for dealwatch.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/dealwatch/internal/adapter/input"
	"github.com/jmylchreest/dealwatch/internal/config"
	"github.com/jmylchreest/dealwatch/internal/store"
)

// Build-time variables (set via ldflags)
var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
)

// Global configuration and state
var (
	cfg        *config.Config
	globalOpts struct {
		verbose    bool
		configPath string
		apiBase    string
		dataDir    string
	}
	logger *slog.Logger

	// kv backs the settings and watchlist of every command.
	kv *store.FileKV
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "dealwatch",
	Short: "Terminal dashboard for item deals",
	Long: `dealwatch is a terminal dashboard for item deals.

It fetches deals from a deals API, filters and sorts them, keeps a
watchlist with notes, and can refresh automatically on an interval.

Running dealwatch without a subcommand launches the interactive TUI.`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildTime),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		setupLogger()

		var err error
		cfg, err = config.LoadConfig(globalOpts.configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		if globalOpts.apiBase != "" {
			if err := config.ValidateBaseURL(globalOpts.apiBase); err != nil {
				return err
			}
			cfg.API.BaseURL = globalOpts.apiBase
		}
		if globalOpts.dataDir != "" {
			cfg.Storage.DataDir = globalOpts.dataDir
		}

		if err := cfg.EnsureDataDir(); err != nil {
			return fmt.Errorf("failed to create data directory: %w", err)
		}
		kv = store.NewFileKV(cfg.DataDir())

		logger.Debug("configuration loaded",
			"api", cfg.API.BaseURL,
			"data_dir", cfg.DataDir(),
			"namespace", cfg.Storage.Namespace)
		return nil
	},
	// Default to TUI when no subcommand is provided
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI(cmd, args)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&globalOpts.verbose, "verbose", "v", false,
		"Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&globalOpts.configPath, "config", "",
		"Path to config file (default: ~/.config/dealwatch/config.toml)")
	rootCmd.PersistentFlags().StringVar(&globalOpts.apiBase, "api-base", "",
		"Deals API base URL (overrides api.base_url)")
	rootCmd.PersistentFlags().StringVar(&globalOpts.dataDir, "data-dir", "",
		"Directory for settings and watchlist (default: ~/.local/share/dealwatch)")
}

// setupLogger configures the global slog logger.
func setupLogger() {
	level := slog.LevelWarn
	if globalOpts.verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	// Log to stderr so stdout is clean for output
	handler := slog.NewTextHandler(os.Stderr, opts)
	logger = slog.New(handler)
	slog.SetDefault(logger)
}

// newHTTPSource builds the deals API client from the loaded configuration.
func newHTTPSource(l *slog.Logger) *input.HTTPSource {
	return input.NewHTTPSource(input.HTTPOptions{
		BaseURL:      cfg.API.BaseURL,
		Timeout:      cfg.API.Timeout.Duration(),
		RequireQuery: cfg.API.RequireQuery,
		UserAgent:    cfg.API.UserAgent,
		Logger:       l,
	})
}
