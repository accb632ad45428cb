package formatting

import (
	"fmt"
	"strings"
)

// ConsoleFormatter provides simple console output formatting
type ConsoleFormatter struct {
	options Options
}

// NewConsoleFormatter creates a new console formatter
func NewConsoleFormatter(options Options) Formatter {
	return &ConsoleFormatter{options: options}
}

// FormatReport lists tests one per line, followed by failures
func (f *ConsoleFormatter) FormatReport(report *Report) error {
	var output []string
	if !f.options.Quiet {
		output = append(output, fmt.Sprintf("Discovered %d tests from %d methods (session %s):",
			report.Summary.Tests, report.Summary.Methods, report.Session))
	}
	for i, t := range report.Tests {
		line := fmt.Sprintf("%s.%s", t.Class, t.DisplayName)
		if !f.options.Quiet {
			line = fmt.Sprintf("  %d. %-50s %s", i+1, line, t.ID)
		}
		output = append(output, line)
	}

	if len(report.Failures) > 0 {
		output = append(output, fmt.Sprintf("Discovery failures (%d):", len(report.Failures)))
		for i, fl := range report.Failures {
			loc := ""
			if fl.Location != "" {
				loc = " (" + fl.Location + ")"
			}
			output = append(output, fmt.Sprintf("  %d. %s.%s%s: %s", i+1, fl.Class, fl.Method, loc, fl.Error))
		}
	}
	if len(output) == 0 {
		return nil
	}
	_, err := fmt.Fprintln(f.options.out(), strings.Join(output, "\n"))
	return err
}

// FormatFixtures lists fixture slots one per line
func (f *ConsoleFormatter) FormatFixtures(fixtures []FixtureEntry) error {
	if len(fixtures) == 0 {
		_, err := fmt.Fprintln(f.options.out(), "No fixtures.")
		return err
	}

	output := []string{fmt.Sprintf("Fixtures (%d):", len(fixtures))}
	for i, fx := range fixtures {
		owner := fx.Scope
		if fx.Owner != "" {
			owner += ":" + fx.Owner
		}
		line := fmt.Sprintf("  %d. %-20s %-30s %-12s refs=%d", i+1, fx.Type, owner, fx.State, fx.Refs)
		if fx.Error != "" {
			line += " error=" + fx.Error
		}
		output = append(output, line)
	}
	_, err := fmt.Fprintln(f.options.out(), strings.Join(output, "\n"))
	return err
}

// SetOptions updates the formatter options
func (f *ConsoleFormatter) SetOptions(options Options) {
	f.options = options
}

// GetOptions returns the current formatter options
func (f *ConsoleFormatter) GetOptions() Options {
	return f.options
}
