package output

import (
	"fmt"
	"io"

	"github.com/jmylchreest/dealwatch/internal/model"
)

// IDsFormatter outputs just the watchlist keys, one per line.
// Useful for piping to other commands (e.g., dealwatch watch add --stdin).
type IDsFormatter struct{}

// NewIDsFormatter creates a new IDs formatter.
func NewIDsFormatter() *IDsFormatter {
	return &IDsFormatter{}
}

// Format writes deal keys to the writer, one per line.
func (f *IDsFormatter) Format(w io.Writer, deals []model.Deal) error {
	for i := range deals {
		if _, err := fmt.Fprintln(w, deals[i].Key()); err != nil {
			return err
		}
	}
	return nil
}
