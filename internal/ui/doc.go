// Package ui renders the one-shot terminal output of devterm's
// non-interactive commands: a command header, and success or failure boxes
// with details and troubleshooting tips.
//
// The interactive screen lives in package tui; this package only prints
// and exits. Output goes to stdout while zap logging stays silent unless
// DEVTERM_LOG_LEVEL is set, so the boxes are not interleaved with log lines.
//
// Example:
//
//	ui.NewFailureResult("Could not open /dev/ttyUSB0", err, []string{
//	    "Check that the device is plugged in",
//	}).Fprint(os.Stderr)
package ui
