package formatting

import (
	"testwright/internal/builder"
	"testwright/internal/fixture"
	"testwright/internal/naming"
)

// Report is the serializable form of a discovery run.
type Report struct {
	Session  string         `json:"session"`
	Summary  Summary        `json:"summary"`
	Tests    []TestEntry    `json:"tests"`
	Failures []FailureEntry `json:"failures,omitempty"`
}

// Summary counts what a discovery run produced.
type Summary struct {
	Methods  int `json:"methods"`
	Tests    int `json:"tests"`
	Failures int `json:"failures"`
}

// TestEntry describes one constructed test.
type TestEntry struct {
	ID             string   `json:"id"`
	DisplayName    string   `json:"displayName"`
	Class          string   `json:"class"`
	Method         string   `json:"method"`
	ClassArguments []string `json:"classArguments,omitempty"`
	Arguments      []string `json:"arguments,omitempty"`
	Repeat         int      `json:"repeat,omitempty"`
	Fixtures       []string `json:"fixtures,omitempty"`
	Location       string   `json:"location,omitempty"`
}

// FailureEntry describes one test that could not be constructed.
type FailureEntry struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	Class       string `json:"class"`
	Method      string `json:"method"`
	Location    string `json:"location,omitempty"`
	Error       string `json:"error"`
}

// FixtureEntry describes one fixture registry slot.
type FixtureEntry struct {
	Type  string `json:"type"`
	Scope string `json:"scope"`
	Owner string `json:"owner,omitempty"`
	State string `json:"state"`
	Refs  int    `json:"refs"`
	Error string `json:"error,omitempty"`
}

// NewReport converts a builder result.
func NewReport(session string, methods int, res *builder.Result) *Report {
	r := &Report{
		Session: session,
		Summary: Summary{Methods: methods, Tests: len(res.Tests), Failures: len(res.Failures)},
		Tests:   make([]TestEntry, 0, len(res.Tests)),
	}
	for _, t := range res.Tests {
		entry := TestEntry{
			ID:             t.ID,
			DisplayName:    t.DisplayName,
			Class:          t.Class.Name(),
			Method:         t.Method.MethodName(),
			ClassArguments: formatAll(t.ClassArgs),
			Arguments:      formatAll(t.MethodArgs),
			Repeat:         t.RepeatIndex,
			Location:       t.Location.String(),
		}
		for _, h := range t.Fixtures {
			entry.Fixtures = append(entry.Fixtures, h.Key().String())
		}
		r.Tests = append(r.Tests, entry)
	}
	for _, f := range res.Failures {
		r.Failures = append(r.Failures, FailureEntry{
			ID:          f.ID,
			DisplayName: f.DisplayName,
			Class:       f.Class,
			Method:      f.Method,
			Location:    f.Location.String(),
			Error:       f.Err.Error(),
		})
	}
	return r
}

// NewFixtureEntries converts a registry snapshot.
func NewFixtureEntries(slots []fixture.SlotInfo) []FixtureEntry {
	out := make([]FixtureEntry, 0, len(slots))
	for _, s := range slots {
		e := FixtureEntry{
			Type:  s.Key.Type,
			Scope: s.Key.Kind.String(),
			Owner: s.Key.Owner,
			State: s.State.String(),
			Refs:  s.Refs,
		}
		if s.Err != nil {
			e.Error = s.Err.Error()
		}
		out = append(out, e)
	}
	return out
}

func formatAll(args []any) []string {
	if len(args) == 0 {
		return nil
	}
	out := make([]string, len(args))
	for i, a := range args {
		out[i] = naming.FormatValue(a)
	}
	return out
}
