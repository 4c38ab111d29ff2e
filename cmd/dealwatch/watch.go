package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/dealwatch/internal/store"
)

var watchOpts struct {
	stdin bool // Read keys from stdin
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Manage the watchlist",
	Long: `Add, remove and list watched deal keys.

Keys can be provided as positional arguments or via stdin (--stdin).
With --stdin, each line may be a bare key or a dmenu line, whose last
field is the key.

Examples:
  # Watch a deal by key
  dealwatch watch add 4711

  # Watch every deal with at least 30% margin
  dealwatch deals --min-margin 30 --format ids | dealwatch watch add --stdin

  # Stop watching
  dealwatch watch remove 4711`,
}

var watchAddCmd = &cobra.Command{
	Use:   "add [key...]",
	Short: "Add keys to the watchlist",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWatchUpdate(args, "added", (*store.Watchlist).Add)
	},
}

var watchRemoveCmd = &cobra.Command{
	Use:     "remove [key...]",
	Aliases: []string{"rm"},
	Short:   "Remove keys from the watchlist",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWatchUpdate(args, "removed", (*store.Watchlist).Remove)
	},
}

var watchListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "Print watched keys, one per line",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		w := store.NewWatchlist(kv, cfg.Storage.Namespace)
		for _, id := range w.List() {
			fmt.Println(id)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.AddCommand(watchAddCmd, watchRemoveCmd, watchListCmd)

	for _, c := range []*cobra.Command{watchAddCmd, watchRemoveCmd} {
		c.Flags().BoolVar(&watchOpts.stdin, "stdin", false,
			"Read keys from stdin (one per line, or dmenu lines)")
	}
}

func runWatchUpdate(args []string, action string, apply func(*store.Watchlist, string) error) error {
	keys := args

	if watchOpts.stdin {
		stdinKeys, err := readKeys(os.Stdin)
		if err != nil {
			return fmt.Errorf("failed to read from stdin: %w", err)
		}
		keys = append(keys, stdinKeys...)
	}

	if len(keys) == 0 {
		return fmt.Errorf("no keys provided")
	}

	keys = uniqueStrings(keys)

	w := store.NewWatchlist(kv, cfg.Storage.Namespace)
	before := w.Len()

	var failCount int
	for _, key := range keys {
		if err := apply(w, key); err != nil {
			logger.Warn("failed to update watchlist", "key", key, "error", err)
			failCount++
		}
	}

	changed := w.Len() - before
	if changed < 0 {
		changed = -changed
	}

	if failCount > 0 {
		fmt.Fprintf(os.Stderr, "%s %d keys, %d failed\n", action, changed, failCount)
		return fmt.Errorf("%d watchlist updates failed", failCount)
	}
	fmt.Printf("%s %d keys (%d watched)\n", action, changed, w.Len())
	return nil
}

// readKeys reads one key per line, skipping blanks.
func readKeys(r io.Reader) ([]string, error) {
	var keys []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		key := parseDmenuSelection(scanner.Text())
		if key != "" {
			keys = append(keys, key)
		}
	}
	return keys, scanner.Err()
}

// uniqueStrings removes duplicates while preserving order.
func uniqueStrings(s []string) []string {
	result := make([]string, 0, len(s))
	for _, v := range s {
		v = strings.TrimSpace(v)
		if v == "" || slices.Contains(result, v) {
			continue
		}
		result = append(result, v)
	}
	return result
}
