package config

import "time"

const (
	// DefaultOutput is the default output format.
	DefaultOutput = "table"

	// DefaultLogLevel is the default log level.
	DefaultLogLevel = "info"

	// DefaultWatchDebounce is the default quiet period for discover --watch.
	DefaultWatchDebounce = 500 * time.Millisecond
)

// GetDefaultConfig returns the default configuration.
func GetDefaultConfig() Config {
	return Config{
		Output:               DefaultOutput,
		FailOnDiscoveryError: true,
		LogLevel:             DefaultLogLevel,
		WatchDebounce:        DefaultWatchDebounce,
	}
}
