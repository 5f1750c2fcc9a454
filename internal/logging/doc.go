// Package logging provides structured logging for devterm.
//
// This package wraps a package-global zap logger. Logging is silent unless a
// level is configured, because the interactive terminal owns the screen and
// stray output would corrupt the display.
//
// # Log Levels
//
//   - Debug: frame dumps (hex and ascii) for every byte crossing a transport
//   - Info: connection state changes, sessions starting and stopping
//   - Warn: write failures, reconnect attempts, reaction script failures
//   - Error: fatal receive faults
//
// # Configuration
//
// Initialize logging at startup:
//
//	if err := logging.Initialize("debug", "devterm.log"); err != nil {
//	    return err
//	}
//	defer logging.Sync()
//
// The level falls back to DEVTERM_LOG_LEVEL and the output to
// DEVTERM_LOG_FILE. The headless bridge command logs to stdout.
//
// # Thread Safety
//
// All logging functions are safe for concurrent use. The receive task, the
// render loop and reaction listeners all log through the same logger.
package logging
