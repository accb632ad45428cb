package formatting

import "fmt"

// JSONFormatter provides structured JSON output formatting
type JSONFormatter struct {
	options Options
}

// NewJSONFormatter creates a new JSON formatter
func NewJSONFormatter(options Options) Formatter {
	return &JSONFormatter{options: options}
}

// FormatReport writes the report as indented JSON
func (f *JSONFormatter) FormatReport(report *Report) error {
	_, err := fmt.Fprintln(f.options.out(), PrettyJSON(report))
	return err
}

// FormatFixtures writes the fixture entries as indented JSON
func (f *JSONFormatter) FormatFixtures(fixtures []FixtureEntry) error {
	if fixtures == nil {
		fixtures = []FixtureEntry{}
	}
	_, err := fmt.Fprintln(f.options.out(), PrettyJSON(fixtures))
	return err
}

// SetOptions updates the formatter options
func (f *JSONFormatter) SetOptions(options Options) {
	f.options = options
}

// GetOptions returns the current formatter options
func (f *JSONFormatter) GetOptions() Options {
	return f.options
}
