package output

import (
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/jmylchreest/dealwatch/internal/model"
	"github.com/jmylchreest/dealwatch/internal/render"
)

// Table headers, in column order.
var tableHeaders = []string{"", "Name", "Price", "Est", "Margin", "Score", "Seller", "Age"}

var (
	headerStyle   = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle     = lipgloss.NewStyle().Padding(0, 1)
	positiveStyle = cellStyle.Foreground(lipgloss.Color("2"))
	negativeStyle = cellStyle.Foreground(lipgloss.Color("1"))
)

// TableFormatter renders deals as a bordered table.
type TableFormatter struct {
	opts FormatterOptions
}

// NewTableFormatter creates a new table formatter.
func NewTableFormatter(opts FormatterOptions) *TableFormatter {
	return &TableFormatter{opts: opts}
}

// Format writes deals as a table. An empty list renders the placeholder row.
func (f *TableFormatter) Format(w io.Writer, deals []model.Deal) error {
	rows := dealRows(deals, f.opts)
	if len(rows) == 0 {
		rows = []render.DealRow{{Kind: render.RowEmpty, Message: render.EmptyDealsMessage}}
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(tableHeaders...)

	for _, row := range rows {
		if row.IsPlaceholder() {
			t.Row("", row.Message, "", "", "", "", "", "")
			continue
		}
		mark := ""
		if row.Watched {
			mark = "*"
		}
		t.Row(mark, truncate(row.Name, f.opts.NameMaxLen), row.Price, row.Estimate,
			row.Margin, row.Score, row.Seller, row.Age)
	}

	t.StyleFunc(func(r, c int) lipgloss.Style {
		if r == table.HeaderRow {
			return headerStyle
		}
		if c == 4 && r >= 0 && r < len(rows) && !rows[r].IsPlaceholder() {
			if rows[r].Positive {
				return positiveStyle
			}
			return negativeStyle
		}
		return cellStyle
	})

	_, err := io.WriteString(w, t.String()+"\n")
	return err
}
