package reaction

import "fmt"

// ScriptError represents a reaction script that ran and failed.
type ScriptError struct {
	// Script is the configured script path
	Script string
	// ExitCode is the process exit code, -1 if it never started
	ExitCode int
	// Stderr is the script's stderr output
	Stderr string
	// Err is the underlying error
	Err error
}

func (e *ScriptError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("reaction script %q failed (exit code %d): %v\nstderr: %s",
			e.Script, e.ExitCode, e.Err, e.Stderr)
	}
	return fmt.Sprintf("reaction script %q failed (exit code %d): %v",
		e.Script, e.ExitCode, e.Err)
}

func (e *ScriptError) Unwrap() error {
	return e.Err
}

// TimeoutError is returned when a script outlives the listener window.
type TimeoutError struct {
	Script string
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("reaction script %q killed when the listening window closed", e.Script)
}
