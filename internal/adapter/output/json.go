package output

import (
	"encoding/json"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/dealwatch/internal/model"
)

// JSONFormatter formats deals as JSON.
type JSONFormatter struct {
	opts FormatterOptions
}

// NewJSONFormatter creates a new JSON formatter.
func NewJSONFormatter(opts FormatterOptions) *JSONFormatter {
	return &JSONFormatter{opts: opts}
}

// Format writes deals as a `{"items": [...]}` document, the same shape the API serves.
func (f *JSONFormatter) Format(w io.Writer, deals []model.Deal) error {
	if deals == nil {
		deals = []model.Deal{}
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(struct {
		Items []model.Deal `json:"items"`
	}{Items: deals})
}

// FormatSingle writes a single deal as JSON.
func (f *JSONFormatter) FormatSingle(w io.Writer, d *model.Deal) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(d)
}

// YAMLFormatter formats deals as YAML.
type YAMLFormatter struct {
	opts FormatterOptions
}

// NewYAMLFormatter creates a new YAML formatter.
func NewYAMLFormatter(opts FormatterOptions) *YAMLFormatter {
	return &YAMLFormatter{opts: opts}
}

// Format writes deals as a YAML sequence.
func (f *YAMLFormatter) Format(w io.Writer, deals []model.Deal) error {
	if deals == nil {
		deals = []model.Deal{}
	}
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(deals); err != nil {
		return err
	}
	return encoder.Close()
}
