package reaction

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"time"
)

// waitDelay bounds how long a killed script's children may hold stderr open.
const waitDelay = 100 * time.Millisecond

// Runner runs a reaction script with a single log entry as its argument.
type Runner interface {
	Run(ctx context.Context, script, entry string) error
}

// ExecRunner runs scripts as child processes. Stdout is discarded since the
// terminal owns the screen; stderr is kept for error reports.
type ExecRunner struct{}

// Run executes script with entry as argv[1]. The process is killed when ctx
// ends.
func (ExecRunner) Run(ctx context.Context, script, entry string) error {
	cmd := exec.CommandContext(ctx, script, entry)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	cmd.WaitDelay = waitDelay

	err := cmd.Run()
	if err == nil {
		return nil
	}

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &TimeoutError{Script: script}
	}

	exitCode := -1
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		exitCode = exitErr.ExitCode()
	}
	return &ScriptError{
		Script:   script,
		ExitCode: exitCode,
		Stderr:   stderr.String(),
		Err:      err,
	}
}
