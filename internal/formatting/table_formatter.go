package formatting

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

const maxCellWidth = 60

// TableFormatter provides rich table output formatting
type TableFormatter struct {
	options Options
}

// NewTableFormatter creates a new table formatter
func NewTableFormatter(options Options) Formatter {
	return &TableFormatter{options: options}
}

// FormatReport renders tests and failures as tables with a summary line
func (f *TableFormatter) FormatReport(report *Report) error {
	var b strings.Builder

	if len(report.Tests) == 0 {
		b.WriteString(f.formatEmptyMessage("📋", "No tests discovered"))
	} else {
		t := f.createTable()
		t.AppendHeader(table.Row{f.header("#"), f.header("TEST"), f.header("CLASS"), f.header("ARGUMENTS"), f.header("FIXTURES")})
		for i, test := range report.Tests {
			t.AppendRow(table.Row{
				i + 1,
				truncate(test.DisplayName, maxCellWidth),
				test.Class,
				truncate(joinArgs(test.Arguments), maxCellWidth),
				strings.Join(test.Fixtures, "\n"),
			})
		}
		b.WriteString(t.Render())
		b.WriteString("\n")
	}

	if len(report.Failures) > 0 {
		t := f.createTable()
		t.SetTitle(paint(f.options.Color, text.FgHiRed, "Discovery failures"))
		t.AppendHeader(table.Row{f.header("CLASS"), f.header("METHOD"), f.header("LOCATION"), f.header("ERROR")})
		for _, fl := range report.Failures {
			t.AppendRow(table.Row{fl.Class, fl.Method, fl.Location, truncate(fl.Error, maxCellWidth*2)})
		}
		b.WriteString(t.Render())
		b.WriteString("\n")
	}

	if !f.options.Quiet {
		fmt.Fprintf(&b, "\n%s %s %s %s %s %s\n",
			paint(f.options.Color, text.FgHiBlue, "Total:"),
			paint(f.options.Color, text.FgHiWhite, fmt.Sprint(report.Summary.Tests)),
			paint(f.options.Color, text.FgHiBlue, "tests,"),
			paint(f.options.Color, failureColor(report.Summary.Failures), fmt.Sprint(report.Summary.Failures)),
			paint(f.options.Color, text.FgHiBlue, "failures from"),
			paint(f.options.Color, text.FgHiBlue, fmt.Sprintf("%d methods", report.Summary.Methods)))
	}

	_, err := fmt.Fprint(f.options.out(), b.String())
	return err
}

// FormatFixtures renders the fixture slots as a table
func (f *TableFormatter) FormatFixtures(fixtures []FixtureEntry) error {
	if len(fixtures) == 0 {
		_, err := fmt.Fprint(f.options.out(), f.formatEmptyMessage("📋", "No fixtures"))
		return err
	}

	t := f.createTable()
	t.AppendHeader(table.Row{f.header("TYPE"), f.header("SCOPE"), f.header("OWNER"), f.header("STATE"), f.header("REFS"), f.header("ERROR")})
	for _, fx := range fixtures {
		t.AppendRow(table.Row{fx.Type, fx.Scope, fx.Owner, f.state(fx.State), fx.Refs, truncate(fx.Error, maxCellWidth)})
	}
	_, err := fmt.Fprintln(f.options.out(), t.Render())
	return err
}

// SetOptions updates the formatter options
func (f *TableFormatter) SetOptions(options Options) {
	f.options = options
}

// GetOptions returns the current formatter options
func (f *TableFormatter) GetOptions() Options {
	return f.options
}

// createTable creates a new table with standard styling
func (f *TableFormatter) createTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	return t
}

func (f *TableFormatter) header(s string) string {
	return paint(f.options.Color, text.FgHiCyan, s)
}

func (f *TableFormatter) state(s string) string {
	switch s {
	case "ready", "disposed":
		return paint(f.options.Color, text.FgGreen, s)
	case "failed":
		return paint(f.options.Color, text.FgRed, s)
	default:
		return paint(f.options.Color, text.FgYellow, s)
	}
}

// formatEmptyMessage formats empty result messages
func (f *TableFormatter) formatEmptyMessage(icon, message string) string {
	if f.options.Quiet {
		return ""
	}
	return fmt.Sprintf("%s %s\n", paint(f.options.Color, text.FgYellow, icon), paint(f.options.Color, text.FgYellow, message))
}

func failureColor(n int) text.Color {
	if n > 0 {
		return text.FgHiRed
	}
	return text.FgHiGreen
}
