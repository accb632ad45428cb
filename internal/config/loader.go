package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"testwright/pkg/logging"
)

const (
	userConfigDir  = ".config/testwright"
	configFileName = "config.yaml"
)

// osUserHomeDir is replaced in tests.
var osUserHomeDir = os.UserHomeDir

// GetUserConfigDir returns the default configuration directory.
func GetUserConfigDir() (string, error) {
	homeDir, err := osUserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine user config directory: %w", err)
	}
	return filepath.Join(homeDir, userConfigDir), nil
}

// GetDefaultConfigPathOrPanic returns the default configuration directory
// and panics when the home directory cannot be determined.
func GetDefaultConfigPathOrPanic() string {
	dir, err := GetUserConfigDir()
	if err != nil {
		panic(err)
	}
	return dir
}

// LoadConfig loads config.yaml from configPath over the defaults. A missing
// file yields the defaults.
func LoadConfig(configPath string) (Config, error) {
	configFilePath := filepath.Join(configPath, configFileName)
	config := GetDefaultConfig()

	data, err := os.ReadFile(configFilePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logging.Debug("Config", "No config.yaml found at %s, using defaults", configFilePath)
			return config, nil
		}
		return Config{}, ConfigurationError{
			FilePath:  configFilePath,
			ErrorType: "io",
			Message:   err.Error(),
		}
	}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return Config{}, ConfigurationError{
			FilePath:  configFilePath,
			ErrorType: "parse",
			Message:   err.Error(),
		}
	}
	if err := Validate(config); err != nil {
		return Config{}, ConfigurationError{
			FilePath:  configFilePath,
			ErrorType: "validation",
			Message:   err.Error(),
		}
	}
	logging.Debug("Config", "Loaded configuration from %s", configFilePath)
	return config, nil
}
