// Package logging provides the structured, subsystem-tagged logger used across
// testwright.
//
// The logger is built on Go's standard slog package. Every entry carries the
// subsystem that produced it, so discovery output can be filtered per
// component (DataSource, FixtureRegistry, GenericResolver, TestBuilder, ...).
//
// # Log Levels
//   - **Debug**: per-row and per-fixture tracing
//   - **Info**: discovery progress and summaries
//   - **Warn**: recoverable problems such as discovery failures
//   - **Error**: failures that abort an operation
//
// # Usage
//
//	logging.InitForCLI(logging.LevelInfo, os.Stderr)
//
//	logging.Info("TestBuilder", "built %d tests", n)
//	logging.Debug("FixtureRegistry", "created %s", key)
//	logging.Error("SuiteLoader", err, "failed to load %s", path)
//
// Until InitForCLI is called only Error entries are written (to stderr), which
// keeps the internal packages quiet when they are used as a library.
package logging
