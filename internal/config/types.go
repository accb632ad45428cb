package config

import "time"

// Config is the top-level configuration structure for testwright.
type Config struct {
	// Parallelism bounds how many methods are constructed concurrently.
	// Zero means one per CPU.
	Parallelism int `yaml:"parallelism,omitempty"`
	// SessionID owns per-session fixtures. A random id is used when empty.
	SessionID string `yaml:"session_id,omitempty"`
	// Output is the default output format: table, console, json or yaml.
	Output string `yaml:"output,omitempty"`
	// FailOnDiscoveryError makes discover exit non-zero when any test could
	// not be constructed.
	FailOnDiscoveryError bool `yaml:"fail_on_discovery_error"`
	// LogLevel is one of debug, info, warn or error.
	LogLevel string `yaml:"log_level,omitempty"`
	// WatchDebounce is how long discover --watch waits for further changes
	// before re-running.
	WatchDebounce time.Duration `yaml:"watch_debounce,omitempty"`
}
