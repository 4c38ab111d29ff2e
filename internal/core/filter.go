// Package core provides filtering and sorting logic for deals.
package core

import (
	"math"
	"strconv"
	"strings"

	"github.com/jmylchreest/dealwatch/internal/model"
)

// DefaultLimit is the result limit used when none is given.
const DefaultLimit = 30

// Criteria holds the user's filter input.
type Criteria struct {
	Query     string  // Case-insensitive substring of the item name
	MinScore  float64 // Minimum score (inclusive)
	MinMargin float64 // Minimum margin percent (inclusive)
	Limit     int     // Result limit requested from the API
}

// DefaultCriteria returns criteria with no query and zero minimums.
// A min margin of 0 excludes deals with a negative margin.
func DefaultCriteria() Criteria {
	return Criteria{Limit: DefaultLimit}
}

// Normalize returns a copy with Limit defaulted and floored at 1.
func (c Criteria) Normalize() Criteria {
	if c.Limit == 0 {
		c.Limit = DefaultLimit
	}
	c.Limit = max(1, c.Limit)
	return c
}

// Match reports whether d passes every predicate of c.
func (c Criteria) Match(d *model.Deal) bool {
	if c.Query != "" {
		if !strings.Contains(strings.ToLower(d.MatchName()), strings.ToLower(c.Query)) {
			return false
		}
	}
	if d.Score.Float() < c.MinScore {
		return false
	}
	if d.MarginPct.Float() < c.MinMargin {
		return false
	}
	return true
}

// Filter returns the deals matching c, preserving input order.
// Limit is not applied here: it bounds the request, not the view.
func Filter(items []model.Deal, c Criteria) []model.Deal {
	result := make([]model.Deal, 0, len(items))
	for i := range items {
		if c.Match(&items[i]) {
			result = append(result, items[i])
		}
	}
	return result
}

// ParseCriteria builds criteria from raw form input.
// Unparseable numbers read as 0; an empty or unparseable limit reads as DefaultLimit.
func ParseCriteria(query, minScore, minMargin, limit string) Criteria {
	c := Criteria{
		Query:     query,
		MinScore:  parseFloat(minScore),
		MinMargin: parseFloat(minMargin),
		Limit:     DefaultLimit,
	}

	if n, err := strconv.Atoi(strings.TrimSpace(limit)); err == nil {
		c.Limit = n
	}
	c.Limit = max(1, c.Limit)
	return c
}

func parseFloat(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) {
		return 0
	}
	return f
}
