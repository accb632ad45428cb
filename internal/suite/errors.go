package suite

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Error categories.
const (
	CategoryFile     = "file"
	CategoryEnum     = "enum"
	CategoryType     = "type"
	CategoryFixture  = "fixture"
	CategoryProvider = "provider"
	CategoryClass    = "class"
	CategoryMethod   = "method"
)

// Error types.
const (
	ErrorTypeIO         = "io"
	ErrorTypeParse      = "parse"
	ErrorTypeValidation = "validation"
	ErrorTypeReference  = "reference"
)

// SuiteError is a structured error raised while loading a suite file.
type SuiteError struct {
	FilePath  string `json:"filePath"`
	Category  string `json:"category"`
	Entity    string `json:"entity,omitempty"`
	ErrorType string `json:"errorType"`
	Message   string `json:"message"`
	Line      int    `json:"line,omitempty"`
}

// FileName returns the base name of the offending file.
func (e SuiteError) FileName() string {
	return filepath.Base(e.FilePath)
}

func (e SuiteError) Error() string {
	loc := e.FileName()
	if e.Line > 0 {
		loc = fmt.Sprintf("%s:%d", loc, e.Line)
	}
	if e.Entity != "" {
		return fmt.Sprintf("[%s] %s: %s: %s", e.Category, loc, e.Entity, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Category, loc, e.Message)
}

// DetailedError returns a multi-line description of the error.
func (e SuiteError) DetailedError() string {
	parts := []string{
		fmt.Sprintf("Suite error in %s", e.FileName()),
		fmt.Sprintf("  File: %s", e.FilePath),
		fmt.Sprintf("  Category: %s", e.Category),
		fmt.Sprintf("  Type: %s", e.ErrorType),
	}
	if e.Line > 0 {
		parts = append(parts, fmt.Sprintf("  Line: %d", e.Line))
	}
	if e.Entity != "" {
		parts = append(parts, fmt.Sprintf("  Entity: %s", e.Entity))
	}
	parts = append(parts, fmt.Sprintf("  Error: %s", e.Message))
	return strings.Join(parts, "\n")
}

// SuiteErrorCollection holds every error found while loading a suite.
type SuiteErrorCollection struct {
	Errors []SuiteError `json:"errors"`
}

func (c *SuiteErrorCollection) Error() string {
	switch len(c.Errors) {
	case 0:
		return "no suite errors"
	case 1:
		return c.Errors[0].Error()
	}
	return fmt.Sprintf("%d suite errors: %s (and %d more)", len(c.Errors), c.Errors[0].Error(), len(c.Errors)-1)
}

// HasErrors returns true if there are any errors in the collection.
func (c *SuiteErrorCollection) HasErrors() bool {
	return len(c.Errors) > 0
}

// Count returns the number of errors in the collection.
func (c *SuiteErrorCollection) Count() int {
	return len(c.Errors)
}

// Add appends err to the collection.
func (c *SuiteErrorCollection) Add(err SuiteError) {
	c.Errors = append(c.Errors, err)
}

// ByCategory returns the errors of one category.
func (c *SuiteErrorCollection) ByCategory(category string) []SuiteError {
	var filtered []SuiteError
	for _, err := range c.Errors {
		if err.Category == category {
			filtered = append(filtered, err)
		}
	}
	return filtered
}

// DetailedReport returns a report of all errors.
func (c *SuiteErrorCollection) DetailedReport() string {
	if len(c.Errors) == 0 {
		return "No suite errors to report"
	}
	parts := []string{
		fmt.Sprintf("Suite Error Report (%d errors):", len(c.Errors)),
		strings.Repeat("=", 60),
	}
	for i, err := range c.Errors {
		parts = append(parts, fmt.Sprintf("\nError %d:", i+1), err.DetailedError())
		if i < len(c.Errors)-1 {
			parts = append(parts, strings.Repeat("-", 40))
		}
	}
	return strings.Join(parts, "\n")
}

// err returns the collection as an error, or nil when empty.
func (c *SuiteErrorCollection) err() error {
	if !c.HasErrors() {
		return nil
	}
	return c
}
