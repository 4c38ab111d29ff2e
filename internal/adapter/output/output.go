// Package output provides output formatters for deals.
package output

import (
	"io"
	"time"

	"github.com/jmylchreest/dealwatch/internal/model"
)

// Formatter formats deals for output.
type Formatter interface {
	// Format writes formatted deals to the writer.
	Format(w io.Writer, deals []model.Deal) error
}

// FormatType represents an output format type.
type FormatType string

const (
	FormatTable FormatType = "table"
	FormatPlain FormatType = "plain"
	FormatDmenu FormatType = "dmenu"
	FormatJSON  FormatType = "json"
	FormatYAML  FormatType = "yaml"
	FormatIDs   FormatType = "ids"
)

// FormatTypes lists the accepted --format values.
var FormatTypes = []FormatType{FormatTable, FormatPlain, FormatDmenu, FormatJSON, FormatYAML, FormatIDs}

// NewFormatter creates a formatter for the specified format type.
func NewFormatter(format FormatType, opts FormatterOptions) Formatter {
	switch format {
	case FormatJSON:
		return NewJSONFormatter(opts)
	case FormatYAML:
		return NewYAMLFormatter(opts)
	case FormatPlain:
		return NewPlainFormatter(opts)
	case FormatDmenu:
		return NewDmenuFormatter(opts)
	case FormatIDs:
		return NewIDsFormatter()
	case FormatTable:
		fallthrough
	default:
		return NewTableFormatter(opts)
	}
}

// FormatterOptions configures formatter behavior.
type FormatterOptions struct {
	Template   string            // Custom template for plain/dmenu format
	ShowIndex  bool              // Show 1-based index prefix
	ShowAge    bool              // Show listing age
	ShowLink   bool              // Include the trade link
	NameMaxLen int               // Maximum name length (0 = unlimited)
	Separator  string            // Field separator for dmenu format
	Watched    func(string) bool // Marks watched deals, may be nil
	Now        func() time.Time
}

// DefaultFormatterOptions returns sensible defaults.
func DefaultFormatterOptions() FormatterOptions {
	return FormatterOptions{
		ShowIndex:  true,
		ShowAge:    true,
		ShowLink:   false,
		NameMaxLen: 48,
		Separator:  " | ",
		Now:        time.Now,
	}
}

func (o FormatterOptions) now() time.Time {
	if o.Now == nil {
		return time.Now()
	}
	return o.Now()
}
