// Package model defines the core data structures for dealwatch.
package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Num is a float64 that tolerates the loose numeric encodings found in deal feeds:
// JSON numbers, numeric strings and null. Anything absent or unparseable reads as 0.
type Num float64

// UnmarshalJSON implements json.Unmarshaler.
func (n *Num) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*n = 0
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			*n = 0
			return nil
		}
		*n = Num(f)
		return nil
	}

	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		*n = 0
		return nil
	}
	*n = Num(f)
	return nil
}

// Float returns the value as float64.
func (n Num) Float() float64 {
	return float64(n)
}

// FlexID is an item identifier that may arrive as a JSON string or number.
type FlexID string

// UnmarshalJSON implements json.Unmarshaler.
func (id *FlexID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = FlexID(s)
		return nil
	}
	// Numbers and booleans keep their literal text.
	*id = FlexID(string(data))
	return nil
}

// Deal is a single market listing as supplied by the deals API.
// Values are displayed as received; nothing here is computed locally.
type Deal struct {
	ID          FlexID `json:"id,omitempty" yaml:"id,omitempty"`
	Name        string `json:"name,omitempty" yaml:"name,omitempty"`
	BaseType    string `json:"baseType,omitempty" yaml:"baseType,omitempty"`
	Price       Num    `json:"price" yaml:"price"`
	Currency    string `json:"currency,omitempty" yaml:"currency,omitempty"`
	PriceStr    string `json:"priceStr,omitempty" yaml:"priceStr,omitempty"`
	Estimate    Num    `json:"estimate" yaml:"estimate"`
	EstimateStr string `json:"estimateStr,omitempty" yaml:"estimateStr,omitempty"`
	MarginPct   Num    `json:"marginPct" yaml:"marginPct"`
	Score       Num    `json:"score" yaml:"score"`
	Seller      string `json:"seller,omitempty" yaml:"seller,omitempty"`
	ListedAt    string `json:"listedAt,omitempty" yaml:"listedAt,omitempty"`
	SeenAt      string `json:"seenAt,omitempty" yaml:"seenAt,omitempty"`
	TradeURL    string `json:"tradeUrl,omitempty" yaml:"tradeUrl,omitempty"`
	URL         string `json:"url,omitempty" yaml:"url,omitempty"`
}

// DisplayName returns the item name, falling back to the base type.
func (d *Deal) DisplayName() string {
	if d.Name != "" {
		return d.Name
	}
	if d.BaseType != "" {
		return d.BaseType
	}
	return "Unknown"
}

// MatchName returns the text that free-text queries are matched against.
func (d *Deal) MatchName() string {
	if d.Name != "" {
		return d.Name
	}
	return d.BaseType
}

// PriceText returns the preformatted price or the numeric price with a "c" suffix.
func (d *Deal) PriceText() string {
	if d.PriceStr != "" {
		return d.PriceStr
	}
	return fmt.Sprintf("%.1fc", d.Price.Float())
}

// EstimateText returns the preformatted estimate or the numeric estimate with a "c" suffix.
func (d *Deal) EstimateText() string {
	if d.EstimateStr != "" {
		return d.EstimateStr
	}
	return fmt.Sprintf("%.1fc", d.Estimate.Float())
}

// Key returns the identifier used for the watchlist.
// Feeds without ids get a synthetic key built from name, price and seller.
func (d *Deal) Key() string {
	if d.ID != "" {
		return string(d.ID)
	}
	seller := d.Seller
	if seller == "" {
		seller = "-"
	}
	return fmt.Sprintf("%s-%s-%s", d.DisplayName(), d.PriceText(), seller)
}

// Link returns the trade URL, falling back to the generic URL.
func (d *Deal) Link() string {
	if d.TradeURL != "" {
		return d.TradeURL
	}
	return d.URL
}

// ListedTime parses listedAt (or seenAt) as an RFC 3339 timestamp.
func (d *Deal) ListedTime() (time.Time, bool) {
	raw := d.ListedAt
	if raw == "" {
		raw = d.SeenAt
	}
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Age returns a compact age such as "45s", "12m", "3h" or "2d".
// Returns "-" if the deal carries no usable timestamp.
func (d *Deal) Age(now time.Time) string {
	t, ok := d.ListedTime()
	if !ok {
		return "-"
	}

	s := int64(now.Sub(t) / time.Second)
	if s < 1 {
		s = 1
	}
	if s < 60 {
		return fmt.Sprintf("%ds", s)
	}
	m := s / 60
	if m < 60 {
		return fmt.Sprintf("%dm", m)
	}
	h := m / 60
	if h < 24 {
		return fmt.Sprintf("%dh", h)
	}
	return fmt.Sprintf("%dd", h/24)
}
