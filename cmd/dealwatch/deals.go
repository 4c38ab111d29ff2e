package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/dealwatch/internal/adapter/input"
	"github.com/jmylchreest/dealwatch/internal/adapter/output"
	"github.com/jmylchreest/dealwatch/internal/core"
	"github.com/jmylchreest/dealwatch/internal/model"
	"github.com/jmylchreest/dealwatch/internal/store"
)

var dealsOpts struct {
	// Input options
	source string

	// Filter options
	query     string
	minScore  float64
	minMargin float64
	limit     int
	watched   bool

	// Sort options
	sortBy    string
	sortOrder string

	// Output options
	format   string
	field    string
	template string
	link     bool
}

var dealsCmd = &cobra.Command{
	Use:   "deals [index|key]",
	Short: "Fetch, filter and print deals",
	Long: `Fetch deals once, apply filters and sorting, and print them.

With an index (1-based, after filtering and sorting) or a deal key,
outputs that single deal.

Examples:
  # Table of current deals
  dealwatch deals

  # Deals with at least 20% margin, best first
  dealwatch deals --min-margin 20 --sort margin

  # Filter a saved API response offline
  curl -s "$API/deals?limit=100" | dealwatch deals --source stdin --format json

  # Pick a deal with fuzzel and watch it
  dealwatch deals --format dmenu | fuzzel -d | dealwatch watch add --stdin`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDeals,
}

func init() {
	rootCmd.AddCommand(dealsCmd)

	// Input flags
	dealsCmd.Flags().StringVar(&dealsOpts.source, "source", "http",
		"Deals source (http, stdin)")

	// Filter flags
	dealsCmd.Flags().StringVarP(&dealsOpts.query, "query", "q", "",
		"Case-insensitive item name filter")
	dealsCmd.Flags().Float64Var(&dealsOpts.minScore, "min-score", 0,
		"Minimum score")
	dealsCmd.Flags().Float64Var(&dealsOpts.minMargin, "min-margin", 0,
		"Minimum margin percent")
	dealsCmd.Flags().IntVarP(&dealsOpts.limit, "limit", "n", 0,
		"Number of deals to request (default from config, 30)")
	dealsCmd.Flags().BoolVar(&dealsOpts.watched, "watched", false,
		"Only show deals on the watchlist")

	// Sort flags
	dealsCmd.Flags().StringVar(&dealsOpts.sortBy, "sort", "",
		"Sort by field (name, price, estimate, margin, score, age; empty keeps feed order)")
	dealsCmd.Flags().StringVar(&dealsOpts.sortOrder, "order", "",
		"Sort order (asc, desc)")

	// Output flags
	dealsCmd.Flags().StringVarP(&dealsOpts.format, "format", "f", "table",
		"Output format (table, plain, dmenu, json, yaml, ids)")
	dealsCmd.Flags().StringVar(&dealsOpts.field, "field", "",
		"Output single field (key, name, price, estimate, margin, score, seller, link)")
	dealsCmd.Flags().StringVar(&dealsOpts.template, "template", "",
		"Go template or name of a configured template")
	dealsCmd.Flags().BoolVar(&dealsOpts.link, "link", false,
		"Include trade links")
}

func runDeals(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.API.Timeout.Duration()+fetchGrace)
	defer cancel()

	criteria := dealsCriteria(cmd)

	source, err := newSource(dealsOpts.source, logger)
	if err != nil {
		return err
	}

	logger.Debug("fetching deals", "source", source.Name(), "limit", criteria.Limit, "query", criteria.Query)

	res, err := source.Fetch(ctx, criteria.Limit, criteria.Query)
	if err != nil {
		return fmt.Errorf("failed to fetch deals: %w", err)
	}

	logger.Debug("fetched deals", "count", len(res.Items), "request_id", res.RequestID)

	watchlist := store.NewWatchlist(kv, cfg.Storage.Namespace)

	deals := core.Filter(res.Items, criteria)
	if dealsOpts.watched {
		deals = onlyWatched(deals, watchlist)
	}
	core.Sort(deals, dealsSort(cmd))

	opts := formatterOptions(watchlist)

	if len(args) > 0 {
		d, err := lookupDeal(deals, args[0])
		if err != nil {
			return err
		}
		if dealsOpts.field != "" {
			fmt.Println(output.FormatField(d, dealsOpts.field))
			return nil
		}
		// A single deal defaults to JSON.
		if !cmd.Flags().Changed("format") {
			return output.NewJSONFormatter(opts).FormatSingle(os.Stdout, d)
		}
		return newFormatter(opts).Format(os.Stdout, []model.Deal{*d})
	}

	if dealsOpts.field != "" {
		for i := range deals {
			fmt.Println(output.FormatField(&deals[i], dealsOpts.field))
		}
		return nil
	}

	return newFormatter(opts).Format(os.Stdout, deals)
}

// fetchGrace is added to the request timeout for the whole command.
const fetchGrace = 5 * time.Second

// newSource creates the deals source named by name.
func newSource(name string, l *slog.Logger) (input.Source, error) {
	switch strings.ToLower(name) {
	case "", "http":
		return newHTTPSource(l), nil
	case "stdin":
		return input.NewStdinAdapter(), nil
	default:
		return nil, fmt.Errorf("unknown source %q (want http or stdin)", name)
	}
}

// dealsCriteria starts from the configured filter and applies explicit flags.
func dealsCriteria(cmd *cobra.Command) core.Criteria {
	c := core.Criteria{
		Query:     cfg.Filter.Query,
		MinScore:  cfg.Filter.MinScore,
		MinMargin: cfg.Filter.MinMargin,
		Limit:     cfg.Filter.Limit,
	}

	flags := cmd.Flags()
	if flags.Changed("query") {
		c.Query = dealsOpts.query
	}
	if flags.Changed("min-score") {
		c.MinScore = dealsOpts.minScore
	}
	if flags.Changed("min-margin") {
		c.MinMargin = dealsOpts.minMargin
	}
	if flags.Changed("limit") {
		c.Limit = dealsOpts.limit
	}
	return c.Normalize()
}

// dealsSort starts from the configured sort and applies explicit flags.
func dealsSort(cmd *cobra.Command) core.SortOptions {
	field, order := cfg.Sort.Field, cfg.Sort.Order
	if cmd.Flags().Changed("sort") {
		field = dealsOpts.sortBy
	}
	if cmd.Flags().Changed("order") {
		order = dealsOpts.sortOrder
	}
	return core.SortOptions{
		Field: core.ParseSortField(field),
		Order: core.ParseSortOrder(order),
	}
}

func onlyWatched(deals []model.Deal, w *store.Watchlist) []model.Deal {
	result := deals[:0]
	for _, d := range deals {
		if w.Contains(d.Key()) {
			result = append(result, d)
		}
	}
	return result
}

// lookupDeal finds a deal by 1-based index or key. A full dmenu line
// is accepted and resolved by its trailing key.
func lookupDeal(deals []model.Deal, selection string) (*model.Deal, error) {
	selection = strings.TrimSpace(selection)

	if idx, err := strconv.Atoi(selection); err == nil {
		if idx < 1 || idx > len(deals) {
			return nil, fmt.Errorf("deal at index %d not found", idx)
		}
		return &deals[idx-1], nil
	}

	key := parseDmenuSelection(selection)
	for i := range deals {
		if deals[i].Key() == key {
			return &deals[i], nil
		}
	}
	return nil, fmt.Errorf("deal with key %q not found", key)
}

// parseDmenuSelection extracts the deal key from a dmenu line
// ("index | age | name | price | margin | key"). Anything else is returned trimmed.
func parseDmenuSelection(selection string) string {
	selection = strings.TrimSpace(selection)
	if !strings.Contains(selection, " | ") {
		return selection
	}
	parts := strings.Split(selection, " | ")
	return strings.TrimSpace(parts[len(parts)-1])
}

func formatterOptions(w *store.Watchlist) output.FormatterOptions {
	opts := output.DefaultFormatterOptions()
	opts.ShowLink = dealsOpts.link
	opts.Watched = w.Contains

	tmpl := dealsOpts.template
	if named := cfg.GetTemplate(tmpl); tmpl != "" && named != "" {
		tmpl = named
	}
	if tmpl == "" {
		switch output.FormatType(strings.ToLower(dealsOpts.format)) {
		case output.FormatDmenu:
			tmpl = cfg.Templates.Dmenu
		case output.FormatPlain:
			tmpl = cfg.Templates.Plain
		}
	}
	opts.Template = tmpl
	return opts
}

func newFormatter(opts output.FormatterOptions) output.Formatter {
	return output.NewFormatter(output.FormatType(strings.ToLower(dealsOpts.format)), opts)
}
