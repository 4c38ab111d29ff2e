package output

import (
	"fmt"
	"io"
	"strings"
	"text/template"

	"github.com/dustin/go-humanize"

	"github.com/jmylchreest/dealwatch/internal/core"
	"github.com/jmylchreest/dealwatch/internal/model"
	"github.com/jmylchreest/dealwatch/internal/render"
)

// PlainFormatter formats deals as plain text, two lines per deal.
type PlainFormatter struct {
	opts     FormatterOptions
	template *template.Template
}

// NewPlainFormatter creates a new plain text formatter.
func NewPlainFormatter(opts FormatterOptions) *PlainFormatter {
	f := &PlainFormatter{opts: opts}

	if opts.Template != "" {
		tmpl, err := template.New("plain").Funcs(templateFuncs()).Parse(opts.Template)
		if err == nil {
			f.template = tmpl
		}
	}

	return f
}

// Format writes deals as plain text.
func (f *PlainFormatter) Format(w io.Writer, deals []model.Deal) error {
	rows := dealRows(deals, f.opts)
	for i := range deals {
		if err := f.formatDeal(w, i+1, &deals[i], rows[i]); err != nil {
			return err
		}
	}
	return nil
}

func (f *PlainFormatter) formatDeal(w io.Writer, index int, d *model.Deal, row render.DealRow) error {
	if f.template != nil {
		return f.template.Execute(w, templateData{Index: index, Deal: d, Row: row})
	}

	var sb strings.Builder

	if f.opts.ShowIndex {
		sb.WriteString(fmt.Sprintf("[%d] ", index))
	}
	if row.Watched {
		sb.WriteString("* ")
	}
	sb.WriteString(truncate(row.Name, f.opts.NameMaxLen))
	if f.opts.ShowAge && row.Age != "-" {
		sb.WriteString(fmt.Sprintf(" (%s)", row.Age))
	}
	sb.WriteString("\n")

	sb.WriteString(fmt.Sprintf("    price %s  est %s  margin %s  score %s  seller %s\n",
		row.Price, row.Estimate, row.Margin, row.Score, row.Seller))
	if f.opts.ShowLink && row.Link != "" {
		sb.WriteString("    " + row.Link + "\n")
	}

	_, err := w.Write([]byte(sb.String()))
	return err
}

// FormatField outputs a specific field from a deal.
func FormatField(d *model.Deal, field string) string {
	switch strings.ToLower(field) {
	case "id", "key":
		return d.Key()
	case "name":
		return d.DisplayName()
	case "price":
		return d.PriceText()
	case "estimate", "est":
		return d.EstimateText()
	case "margin":
		return render.FormatMargin(d.MarginPct.Float())
	case "score":
		return render.FormatScore(d.Score.Float())
	case "seller":
		return d.Seller
	case "link", "url", "trade":
		return d.Link()
	default:
		return d.DisplayName()
	}
}

// dealRows renders deals in their given order.
func dealRows(deals []model.Deal, opts FormatterOptions) []render.DealRow {
	if len(deals) == 0 {
		return nil
	}
	return render.DealRows(deals, opts.Watched, core.DefaultSortOptions(), opts.now())
}

// templateData provides data for custom templates.
type templateData struct {
	Index int
	Deal  *model.Deal
	Row   render.DealRow
}

// templateFuncs returns template helper functions.
func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"truncate": truncate,
		"comma": func(n model.Num) string {
			return humanize.CommafWithDigits(n.Float(), 1)
		},
		"field": func(d *model.Deal, name string) string {
			return FormatField(d, name)
		},
	}
}

func truncate(s string, maxLen int) string {
	r := []rune(s)
	if maxLen <= 0 || len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
