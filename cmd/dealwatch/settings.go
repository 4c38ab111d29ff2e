package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/dealwatch/internal/adapter/input"
	"github.com/jmylchreest/dealwatch/internal/model"
	"github.com/jmylchreest/dealwatch/internal/store"
)

var settingsOpts struct {
	format      string
	autoRefresh bool
	interval    int
}

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change refresh settings",
	Long: `Show or change the persisted auto-refresh settings.

These are the same settings edited in the dashboard's settings form.
The interval is clamped to a minimum of 5 seconds.

Examples:
  dealwatch settings show
  dealwatch settings set --auto-refresh --interval 60
  dealwatch settings set --auto-refresh=false`,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the current settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s := store.NewSettingsStore(kv, cfg.Storage.Namespace)
		return printSettings(os.Stdout, newSettingsReport(s.Get(), newHTTPSource(logger)))
	},
}

var settingsSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Change and save settings",
	Args:  cobra.NoArgs,
	RunE:  runSettingsSet,
}

func init() {
	rootCmd.AddCommand(settingsCmd)
	settingsCmd.AddCommand(settingsShowCmd, settingsSetCmd)

	settingsCmd.PersistentFlags().StringVarP(&settingsOpts.format, "format", "f", "yaml",
		"Output format (yaml, json)")

	settingsSetCmd.Flags().BoolVar(&settingsOpts.autoRefresh, "auto-refresh", false,
		"Enable periodic refresh")
	settingsSetCmd.Flags().IntVar(&settingsOpts.interval, "interval", model.DefaultIntervalSec,
		"Refresh interval in seconds")
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	var u model.SettingsUpdate
	if cmd.Flags().Changed("auto-refresh") {
		u.AutoRefresh = &settingsOpts.autoRefresh
	}
	if cmd.Flags().Changed("interval") {
		u.IntervalSec = &settingsOpts.interval
	}
	if u.AutoRefresh == nil && u.IntervalSec == nil {
		return fmt.Errorf("nothing to set: use --auto-refresh and/or --interval")
	}

	s := store.NewSettingsStore(kv, cfg.Storage.Namespace)
	saved, err := s.Set(u)
	if err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	if u.IntervalSec != nil && saved.IntervalSec != *u.IntervalSec {
		fmt.Fprintf(os.Stderr, "interval raised to the %ds minimum\n", model.MinIntervalSec)
	}
	logger.Debug("settings saved", "key", s.Key(), "auto_refresh", saved.AutoRefresh, "interval", saved.IntervalSec)

	return printSettings(os.Stdout, newSettingsReport(saved, newHTTPSource(logger)))
}

// settingsReport is the persisted settings plus the read-only API endpoint.
type settingsReport struct {
	AutoRefresh  bool   `json:"autoRefresh" yaml:"autoRefresh"`
	IntervalSec  int    `json:"intervalSec" yaml:"intervalSec"`
	APIBase      string `json:"apiBase" yaml:"apiBase"`
	RequireQuery bool   `json:"requireQuery" yaml:"requireQuery"`
}

func newSettingsReport(s model.Settings, src *input.HTTPSource) settingsReport {
	return settingsReport{
		AutoRefresh:  s.AutoRefresh,
		IntervalSec:  s.IntervalSec,
		APIBase:      src.BaseURL(),
		RequireQuery: src.RequireQuery(),
	}
}

func printSettings(w io.Writer, r settingsReport) error {
	switch strings.ToLower(settingsOpts.format) {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case "yaml", "":
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		return enc.Encode(r)
	default:
		return fmt.Errorf("unknown format %q (want yaml or json)", settingsOpts.format)
	}
}
