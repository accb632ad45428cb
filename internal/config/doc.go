// Package config provides configuration management for testwright.
//
// Configuration is loaded from a single directory. The default directory is
// ~/.config/testwright; commands accept --config-path to use another one.
//
// # Configuration File
//
// config.yaml in the configuration directory overrides the defaults:
//
//	parallelism: 4
//	session_id: nightly
//	output: table
//	fail_on_discovery_error: true
//	log_level: info
//	watch_debounce: 500ms
//
// A missing file yields the defaults. Command-line flags override both.
//
// # Storage
//
// Storage persists named YAML documents in subdirectories of the
// configuration directory. discover --save writes discovery reports to
// reports/<name>.yaml, and the reports command lists, shows and deletes them.
package config
