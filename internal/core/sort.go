package core

import (
	"sort"
	"strings"
	"time"

	"github.com/jmylchreest/dealwatch/internal/model"
)

// SortField represents a column to sort by.
type SortField string

const (
	SortNone     SortField = ""
	SortByName   SortField = "name"
	SortByPrice  SortField = "price"
	SortByEst    SortField = "estimate"
	SortByMargin SortField = "margin"
	SortByScore  SortField = "score"
	SortByAge    SortField = "age"
)

// SortFields lists the sortable columns in display order.
var SortFields = []SortField{SortNone, SortByName, SortByPrice, SortByEst, SortByMargin, SortByScore, SortByAge}

// SortOrder represents ascending or descending order.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// SortOptions specifies sorting criteria.
type SortOptions struct {
	Field SortField // Column to sort by (SortNone keeps feed order)
	Order SortOrder // Sort order (asc/desc)
}

// DefaultSortOptions returns options that keep the feed order.
func DefaultSortOptions() SortOptions {
	return SortOptions{
		Field: SortNone,
		Order: SortDesc,
	}
}

// Sort sorts deals in place. Equal elements keep their relative order.
func Sort(deals []model.Deal, opts SortOptions) {
	if len(deals) == 0 || opts.Field == SortNone {
		return
	}

	// Age sorts by listing time; undated deals sort as oldest.
	var listed []time.Time
	if opts.Field == SortByAge {
		listed = make([]time.Time, len(deals))
		for i := range deals {
			listed[i], _ = deals[i].ListedTime()
		}
	}

	idx := make([]int, len(deals))
	for i := range idx {
		idx[i] = i
	}

	sort.SliceStable(idx, func(a, b int) bool {
		i, j := idx[a], idx[b]
		var less, equal bool

		switch opts.Field {
		case SortByName:
			ni, nj := strings.ToLower(deals[i].DisplayName()), strings.ToLower(deals[j].DisplayName())
			less, equal = ni < nj, ni == nj
		case SortByPrice:
			less, equal = deals[i].Price < deals[j].Price, deals[i].Price == deals[j].Price
		case SortByEst:
			less, equal = deals[i].Estimate < deals[j].Estimate, deals[i].Estimate == deals[j].Estimate
		case SortByMargin:
			less, equal = deals[i].MarginPct < deals[j].MarginPct, deals[i].MarginPct == deals[j].MarginPct
		case SortByScore:
			less, equal = deals[i].Score < deals[j].Score, deals[i].Score == deals[j].Score
		case SortByAge:
			// Newer listings are "younger", so ascending age means descending time.
			less, equal = listed[i].After(listed[j]), listed[i].Equal(listed[j])
		}

		if equal {
			return false
		}
		if opts.Order == SortDesc {
			return !less
		}
		return less
	})

	sorted := make([]model.Deal, len(deals))
	for k, i := range idx {
		sorted[k] = deals[i]
	}
	copy(deals, sorted)
}

// ParseSortField parses a sort field string. Unknown values keep feed order.
func ParseSortField(s string) SortField {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "name", "n":
		return SortByName
	case "price", "p":
		return SortByPrice
	case "estimate", "est", "e":
		return SortByEst
	case "margin", "m":
		return SortByMargin
	case "score", "s":
		return SortByScore
	case "age", "a", "time":
		return SortByAge
	default:
		return SortNone
	}
}

// ParseSortOrder parses a sort order string.
func ParseSortOrder(s string) SortOrder {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "asc", "ascending", "a":
		return SortAsc
	default:
		return SortDesc
	}
}

// NextSortField returns the column after f in SortFields, wrapping around.
func NextSortField(f SortField) SortField {
	for i, field := range SortFields {
		if field == f {
			return SortFields[(i+1)%len(SortFields)]
		}
	}
	return SortNone
}
