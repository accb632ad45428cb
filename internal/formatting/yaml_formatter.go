package formatting

import (
	"fmt"

	"sigs.k8s.io/yaml"
)

// YAMLFormatter provides YAML output formatting. Field names follow the JSON
// tags so both encodings describe the same document.
type YAMLFormatter struct {
	options Options
}

// NewYAMLFormatter creates a new YAML formatter
func NewYAMLFormatter(options Options) Formatter {
	return &YAMLFormatter{options: options}
}

// FormatReport writes the report as YAML
func (f *YAMLFormatter) FormatReport(report *Report) error {
	return f.write(report)
}

// FormatFixtures writes the fixture entries as YAML
func (f *YAMLFormatter) FormatFixtures(fixtures []FixtureEntry) error {
	if fixtures == nil {
		fixtures = []FixtureEntry{}
	}
	return f.write(fixtures)
}

// SetOptions updates the formatter options
func (f *YAMLFormatter) SetOptions(options Options) {
	f.options = options
}

// GetOptions returns the current formatter options
func (f *YAMLFormatter) GetOptions() Options {
	return f.options
}

func (f *YAMLFormatter) write(data interface{}) error {
	out, err := MarshalYAML(data)
	if err != nil {
		return err
	}
	_, err = f.options.out().Write(out)
	return err
}

// MarshalYAML encodes data as YAML using its JSON field names.
func MarshalYAML(data interface{}) ([]byte, error) {
	out, err := yaml.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to format YAML: %w", err)
	}
	return out, nil
}

// UnmarshalReport decodes a report written by the YAML or JSON formatter.
func UnmarshalReport(data []byte) (*Report, error) {
	var r Report
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to decode report: %w", err)
	}
	return &r, nil
}
