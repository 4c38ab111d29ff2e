package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/dealwatch/internal/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive deals dashboard",
	Long: `Launch the interactive terminal dashboard.

The dashboard provides:
  - A deals table that refetches as you edit the filters
  - A watchlist tab with per-item notes
  - Auto-refresh settings that are saved across runs
  - Copy to clipboard support
  - Live reload when another dealwatch edits the watchlist or settings

Key bindings:
  j/k, ↑/↓    Navigate list
  /, f        Edit filters
  w           Toggle watch on the selected deal
  tab         Switch between deals and watchlist
  n           Edit note (watchlist)
  x           Remove from watchlist
  o, O        Cycle sort column, flip order
  S           Refresh settings
  r           Refresh now
  c           Copy trade link
  ?           Show help
  q           Quit`,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, args []string) error {
	// The terminal belongs to the TUI: send logs to a file instead.
	logFile, err := os.OpenFile(cfg.LogPath(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer logFile.Close()

	level := slog.LevelInfo
	if globalOpts.verbose {
		level = slog.LevelDebug
	}
	tuiLogger := slog.New(slog.NewTextHandler(logFile, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(tuiLogger)

	tuiLogger.Info("starting dashboard", "version", version, "api", cfg.API.BaseURL)

	return tui.Run(tui.RunOptions{
		Config:    cfg,
		Source:    newHTTPSource(tuiLogger),
		KV:        kv,
		Namespace: cfg.Storage.Namespace,
		Logger:    tuiLogger,
	})
}
