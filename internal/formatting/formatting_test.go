package formatting

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"testwright/internal/fixture"
	"testwright/internal/model"
)

func sampleReport() *Report {
	return &Report{
		Session: "s1",
		Summary: Summary{Methods: 2, Tests: 2, Failures: 1},
		Tests: []TestEntry{
			{ID: "id-1", DisplayName: "Adds(1, 2)", Class: "Calc", Method: "Adds", Arguments: []string{"1", "2"}, Location: "calc.yaml:4"},
			{ID: "id-2", DisplayName: "Reads()", Class: "Repo", Method: "Reads", Fixtures: []string{"Database[class:Repo]"}},
		},
		Failures: []FailureEntry{
			{ID: "id-3", DisplayName: "Broken()", Class: "Calc", Method: "Broken", Location: "calc.yaml:9", Error: "data source Broken: boom"},
		},
	}
}

func render(t *testing.T, format OutputFormat, quiet bool, fn func(Formatter) error) string {
	t.Helper()
	var buf bytes.Buffer
	f := NewFactory().CreateFormatter(Options{Format: format, Quiet: quiet, Writer: &buf})
	require.NoError(t, fn(f))
	return buf.String()
}

func TestParseFormat(t *testing.T) {
	for _, name := range []string{"console", "JSON", "yaml", "table"} {
		_, err := ParseFormat(name)
		assert.NoError(t, err, name)
	}
	_, err := ParseFormat("xml")
	assert.ErrorContains(t, err, `unknown output format "xml"`)
}

func TestFactory(t *testing.T) {
	factory := NewFactory()
	assert.IsType(t, &JSONFormatter{}, factory.CreateFormatter(Options{Format: FormatJSON}))
	assert.IsType(t, &YAMLFormatter{}, factory.CreateFormatter(Options{Format: FormatYAML}))
	assert.IsType(t, &TableFormatter{}, factory.CreateFormatter(Options{Format: FormatTable}))
	assert.IsType(t, &ConsoleFormatter{}, factory.CreateFormatter(Options{}))

	f := factory.CreateFormatter(Options{Format: FormatConsole})
	f.SetOptions(Options{Format: FormatConsole, Quiet: true})
	assert.True(t, f.GetOptions().Quiet)
}

func TestJSONFormatter_Report(t *testing.T) {
	out := render(t, FormatJSON, false, func(f Formatter) error { return f.FormatReport(sampleReport()) })

	var decoded Report
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, *sampleReport(), decoded)
	assert.Contains(t, out, `"displayName": "Adds(1, 2)"`)
}

func TestYAMLFormatter_ReportRoundTrip(t *testing.T) {
	out := render(t, FormatYAML, false, func(f Formatter) error { return f.FormatReport(sampleReport()) })

	assert.Contains(t, out, "displayName: Adds(1, 2)")
	assert.Contains(t, out, "session: s1")

	decoded, err := UnmarshalReport([]byte(out))
	require.NoError(t, err)
	assert.Equal(t, sampleReport(), decoded)
}

func TestConsoleFormatter_Report(t *testing.T) {
	out := render(t, FormatConsole, false, func(f Formatter) error { return f.FormatReport(sampleReport()) })
	assert.Contains(t, out, "Discovered 2 tests from 2 methods (session s1):")
	assert.Contains(t, out, "Calc.Adds(1, 2)")
	assert.Contains(t, out, "id-2")
	assert.Contains(t, out, "1. Calc.Broken (calc.yaml:9): data source Broken: boom")

	quiet := render(t, FormatConsole, true, func(f Formatter) error { return f.FormatReport(sampleReport()) })
	assert.True(t, strings.HasPrefix(quiet, "Calc.Adds(1, 2)\nRepo.Reads()\n"), quiet)
}

func TestTableFormatter_Report(t *testing.T) {
	out := render(t, FormatTable, false, func(f Formatter) error { return f.FormatReport(sampleReport()) })
	for _, want := range []string{"TEST", "Adds(1, 2)", "Database[class:Repo]", "Discovery failures", "data source Broken: boom", "Total: 2 tests, 1 failures from 2 methods"} {
		assert.Contains(t, out, want)
	}

	empty := render(t, FormatTable, false, func(f Formatter) error {
		return f.FormatReport(&Report{Summary: Summary{Methods: 1}})
	})
	assert.Contains(t, empty, "No tests discovered")
}

func TestFormatFixtures(t *testing.T) {
	entries := NewFixtureEntries([]fixture.SlotInfo{
		{Key: fixture.Key{Type: "Database", Kind: model.ScopePerClass, Owner: "Repo"}, State: fixture.StateReady, Refs: 2},
		{Key: fixture.Key{Type: "Cache", Kind: model.ScopeKeyed, Owner: "k"}, State: fixture.StateFailed, Err: errors.New("init failed")},
	})
	require.Len(t, entries, 2)
	assert.Equal(t, FixtureEntry{Type: "Database", Scope: "class", Owner: "Repo", State: "ready", Refs: 2}, entries[0])
	assert.Equal(t, "init failed", entries[1].Error)

	table := render(t, FormatTable, false, func(f Formatter) error { return f.FormatFixtures(entries) })
	assert.Contains(t, table, "Database")
	assert.Contains(t, table, "init failed")

	console := render(t, FormatConsole, false, func(f Formatter) error { return f.FormatFixtures(entries) })
	assert.Contains(t, console, "class:Repo")
	assert.Contains(t, console, "refs=2")

	js := render(t, FormatJSON, false, func(f Formatter) error { return f.FormatFixtures(nil) })
	assert.Equal(t, "[]\n", js)

	none := render(t, FormatConsole, false, func(f Formatter) error { return f.FormatFixtures(nil) })
	assert.Equal(t, "No fixtures.\n", none)
}

func TestTruncateBasic(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
	assert.Equal(t, "abc", truncate("abc", 2))
}
