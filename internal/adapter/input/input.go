// Package input provides deal sources: the remote deals API and stdin.
package input

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/jmylchreest/dealwatch/internal/model"
)

// Source fetches deals.
type Source interface {
	// Name returns the source identifier (e.g., "http", "stdin").
	Name() string

	// Fetch returns up to limit deals. itemQuery is only sent by sources
	// running in required-query mode.
	Fetch(ctx context.Context, limit int, itemQuery string) (Result, error)
}

// Result is the outcome of a successful fetch.
type Result struct {
	Items     []model.Deal // Raw items, before client-side filtering
	FetchedAt time.Time
	RequestID string
}

// ParseItems decodes a `{"items": [...]}` document.
// Data that is not JSON is an error. Valid JSON that is not an object, or whose
// items field is missing or not an array, yields an empty list. Array entries
// that are not deal objects are skipped.
func ParseItems(data []byte) ([]model.Deal, error) {
	if !json.Valid(data) {
		// Reuse the decoder for a descriptive error.
		var v any
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, err
		}
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return []model.Deal{}, nil
	}

	raw, ok := doc["items"]
	if !ok {
		return []model.Deal{}, nil
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return []model.Deal{}, nil
	}

	items := make([]model.Deal, 0, len(entries))
	for i, entry := range entries {
		entry = bytes.TrimSpace(entry)
		if len(entry) == 0 || entry[0] != '{' {
			slog.Debug("skipping non-object item", "index", i)
			continue
		}
		var d model.Deal
		if err := json.Unmarshal(entry, &d); err != nil {
			slog.Debug("skipping malformed item", "index", i, "error", err)
			continue
		}
		items = append(items, d)
	}
	return items, nil
}
