package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/muurk/devterm/internal/config"
	"github.com/muurk/devterm/internal/logging"
	"github.com/muurk/devterm/internal/reaction"
	"github.com/muurk/devterm/internal/terminal"
	"github.com/muurk/devterm/internal/transport"
	"github.com/muurk/devterm/internal/tui"
)

// shutdownTimeout bounds how long teardown waits for background tasks.
const shutdownTimeout = 5 * time.Second

// UIRunner runs the screen model until it exits.
type UIRunner func(ctx context.Context, model tea.Model) error

// Controller wires a transport, the terminal engine and the screen together
// for one session.
type Controller struct {
	Config    *config.Config
	Transport transport.Transport

	// Optional hooks; defaults are used when nil
	RunUI     UIRunner
	Reactions reaction.Runner
	Log       *terminal.LogStore
}

// New creates a controller for cfg over t.
func New(cfg *config.Config, t transport.Transport) *Controller {
	return &Controller{
		Config:    cfg,
		Transport: t,
	}
}

// RunProgram runs model full-screen. The terminal mode is restored on every
// exit path, including cancellation of ctx.
func RunProgram(ctx context.Context, model tea.Model) error {
	_, err := tea.NewProgram(model,
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	).Run()
	return err
}

// Run opens the transport and blocks until the screen exits. A failure to
// open is returned as is. Quitting, an interrupt and cancellation of ctx
// are all clean exits and return nil.
func (c *Controller) Run(ctx context.Context) error {
	runUI := c.RunUI
	if runUI == nil {
		runUI = RunProgram
	}
	runner := c.Reactions
	if runner == nil {
		runner = reaction.ExecRunner{}
	}
	log := c.Log
	if log == nil {
		log = terminal.NewLogStore()
	}

	name, target := c.Transport.Name(), c.Transport.Target()
	logging.LogConnection(name, target, transport.Connecting.String())
	if err := c.Transport.Open(ctx); err != nil {
		logging.Error("Failed to open transport",
			zap.String("transport", name),
			zap.String("target", target),
			zap.Error(err),
		)
		return err
	}
	logging.LogConnection(name, target, transport.Connected.String())

	bgCtx, stop := context.WithCancel(ctx)
	defer stop()

	notice := func(msg string) {
		log.AppendSystem(terminal.Colorize(terminal.Red, oneLine(msg)))
	}

	var wg sync.WaitGroup
	receiver := &terminal.Receiver{
		Transport: c.Transport,
		OnLine:    log.AppendDevice,
		OnNotice:  notice,
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := receiver.Run(bgCtx); err != nil {
			logging.Warn("Receive task ended, session continues without new data",
				zap.Error(err),
			)
		}
	}()

	listener := reaction.NewListener(bgCtx, log, runner, func(err error) {
		notice(err.Error())
	})
	engine := terminal.NewEngine(c.Config, c.Transport, log, terminal.NewHistory(), listener)
	if err := engine.Start(); err != nil {
		logging.Warn("Init command failed", zap.Error(err))
	}

	uiErr := runUI(ctx, tui.New(engine, log, c.Transport))

	stop()
	if !waitTimeout(&wg, shutdownTimeout) {
		logging.Warn("Receive task did not stop in time")
	}
	listener.Wait()

	if err := c.Transport.Close(); err != nil {
		logging.Warn("Failed to close transport", zap.Error(err))
	}
	logging.LogConnection(name, target, transport.Disconnected.String())

	if cleanExit(uiErr) {
		return nil
	}
	return fmt.Errorf("terminal: %w", uiErr)
}

// cleanExit reports whether err ends a session normally.
func cleanExit(err error) bool {
	return err == nil ||
		errors.Is(err, tea.ErrInterrupted) ||
		errors.Is(err, tea.ErrProgramKilled) ||
		errors.Is(err, context.Canceled)
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func waitTimeout(wg *sync.WaitGroup, d time.Duration) bool {
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return true
	case <-time.After(d):
		return false
	}
}
