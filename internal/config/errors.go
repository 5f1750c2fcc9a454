package config

import (
	"fmt"
	"strings"
)

// ValidationError lists every problem found in a configuration file.
type ValidationError struct {
	// Path is the file that failed validation
	Path string
	// Problems holds one human-readable entry per defect
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid configuration %s:\n  - %s", e.Path, strings.Join(e.Problems, "\n  - "))
}

// ParseError represents a file that could not be decoded at all.
type ParseError struct {
	Path   string
	Format string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse %s as %s: %v", e.Path, e.Format, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
