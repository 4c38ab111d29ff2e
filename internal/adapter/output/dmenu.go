package output

import (
	"fmt"
	"io"
	"strings"
	"text/template"

	"github.com/jmylchreest/dealwatch/internal/model"
	"github.com/jmylchreest/dealwatch/internal/render"
)

// DmenuFormatter formats deals one per line for dmenu/rofi/fuzzel pickers.
type DmenuFormatter struct {
	opts     FormatterOptions
	template *template.Template
}

// NewDmenuFormatter creates a new dmenu formatter.
func NewDmenuFormatter(opts FormatterOptions) *DmenuFormatter {
	f := &DmenuFormatter{opts: opts}

	if opts.Template != "" {
		tmpl, err := template.New("dmenu").Funcs(templateFuncs()).Parse(opts.Template)
		if err == nil {
			f.template = tmpl
		}
	}

	return f
}

// Format writes deals in dmenu format (one per line).
func (f *DmenuFormatter) Format(w io.Writer, deals []model.Deal) error {
	rows := dealRows(deals, f.opts)
	for i := range deals {
		line := f.formatLine(i+1, &deals[i], rows[i])
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func (f *DmenuFormatter) formatLine(index int, d *model.Deal, row render.DealRow) string {
	if f.template != nil {
		var buf strings.Builder
		if err := f.template.Execute(&buf, templateData{Index: index, Deal: d, Row: row}); err == nil {
			return buf.String()
		}
	}

	// Default format: index | age | name | price | margin | key
	sep := f.opts.Separator
	if sep == "" {
		sep = " | "
	}

	var parts []string
	if f.opts.ShowIndex {
		parts = append(parts, fmt.Sprintf("%d", index))
	}
	if f.opts.ShowAge {
		parts = append(parts, row.Age)
	}
	parts = append(parts,
		truncate(d.DisplayName(), f.opts.NameMaxLen),
		d.PriceText(),
		FormatField(d, "margin"),
		d.Key(),
	)

	return strings.Join(parts, sep)
}
