// Package render turns deals and watchlist ids into display rows.
// It is the boundary between the dashboard state and any surface (TUI, CLI).
package render

import (
	"fmt"
	"time"

	"github.com/jmylchreest/dealwatch/internal/core"
	"github.com/jmylchreest/dealwatch/internal/model"
)

// Placeholder messages shown in place of table rows.
const (
	EmptyDealsMessage = "No items match filters right now."
	EmptyWatchMessage = "No items in watchlist."
	ErrorMessage      = "Failed to load deals. Check the API URL and network."
)

// RowKind distinguishes item rows from placeholder rows.
type RowKind int

const (
	RowItem RowKind = iota
	RowEmpty
	RowError
)

// DealRow is one line of the deals table.
type DealRow struct {
	Kind     RowKind
	Message  string // Set for placeholder rows
	Name     string
	Price    string
	Estimate string
	Margin   string
	Score    string
	Seller   string
	Age      string
	Link     string
	Key      string
	Watched  bool
	Positive bool // Margin >= 0
}

// IsPlaceholder reports whether the row carries a message instead of a deal.
func (r DealRow) IsPlaceholder() bool {
	return r.Kind != RowItem
}

// WatchRow is one line of the watchlist table.
type WatchRow struct {
	Kind    RowKind
	Message string
	ID      string
	Name    string // Resolved from the current deals, empty if not listed
	Price   string
	Link    string
}

// IsPlaceholder reports whether the row carries a message instead of an id.
func (r WatchRow) IsPlaceholder() bool {
	return r.Kind != RowItem
}

// DealRows builds rows for items sorted by opts. items is not modified.
// An empty list yields a single placeholder row.
func DealRows(items []model.Deal, watched func(id string) bool, opts core.SortOptions, now time.Time) []DealRow {
	if len(items) == 0 {
		return []DealRow{{Kind: RowEmpty, Message: EmptyDealsMessage}}
	}

	sorted := make([]model.Deal, len(items))
	copy(sorted, items)
	core.Sort(sorted, opts)

	rows := make([]DealRow, 0, len(sorted))
	for i := range sorted {
		d := &sorted[i]
		key := d.Key()
		seller := d.Seller
		if seller == "" {
			seller = "-"
		}
		rows = append(rows, DealRow{
			Kind:     RowItem,
			Name:     d.DisplayName(),
			Price:    d.PriceText(),
			Estimate: d.EstimateText(),
			Margin:   FormatMargin(d.MarginPct.Float()),
			Score:    FormatScore(d.Score.Float()),
			Seller:   seller,
			Age:      d.Age(now),
			Link:     d.Link(),
			Key:      key,
			Watched:  watched != nil && watched(key),
			Positive: d.MarginPct.Float() >= 0,
		})
	}
	return rows
}

// ErrorRows returns the single row shown when a fetch fails.
func ErrorRows() []DealRow {
	return []DealRow{{Kind: RowError, Message: ErrorMessage}}
}

// WatchRows builds rows for the watchlist in insertion order.
// Ids matching a deal in items are annotated with its name, price and link.
func WatchRows(ids []string, items []model.Deal) []WatchRow {
	if len(ids) == 0 {
		return []WatchRow{{Kind: RowEmpty, Message: EmptyWatchMessage}}
	}

	byKey := make(map[string]*model.Deal, len(items))
	for i := range items {
		key := items[i].Key()
		if _, ok := byKey[key]; !ok {
			byKey[key] = &items[i]
		}
	}

	rows := make([]WatchRow, 0, len(ids))
	for _, id := range ids {
		row := WatchRow{Kind: RowItem, ID: id}
		if d, ok := byKey[id]; ok {
			row.Name = d.DisplayName()
			row.Price = d.PriceText()
			row.Link = d.Link()
		}
		rows = append(rows, row)
	}
	return rows
}

// FormatMargin formats a margin percentage with one decimal.
func FormatMargin(pct float64) string {
	return fmt.Sprintf("%.1f%%", pct)
}

// FormatScore formats a score as an integer.
func FormatScore(score float64) string {
	return fmt.Sprintf("%.0f", score)
}
