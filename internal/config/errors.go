package config

import (
	"fmt"
	"path/filepath"
)

// ConfigurationError represents a structured error that occurs during configuration loading
type ConfigurationError struct {
	FilePath  string `json:"filePath"`  // Full path to the file that caused the error
	ErrorType string `json:"errorType"` // Type of error (parse, validation, io)
	Message   string `json:"message"`   // Human-readable error message
}

// FileName returns the base name of the offending file
func (ce ConfigurationError) FileName() string {
	return filepath.Base(ce.FilePath)
}

// Error implements the error interface
func (ce ConfigurationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", ce.ErrorType, ce.FileName(), ce.Message)
}
