package terminal

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/muurk/devterm/internal/config"
	"github.com/muurk/devterm/internal/logging"
)

// Sender is the send half of a transport.
type Sender interface {
	Send(p []byte) error
}

// Reactor arms a reaction script for a macro invocation.
type Reactor interface {
	Arm(macro, script string)
}

// echoPrefix marks echoed commands in the log.
const echoPrefix = "> "

// Engine frames and sends commands and expands macros. It is driven from the
// render loop only.
type Engine struct {
	cfg     *config.Config
	sender  Sender
	log     *LogStore
	history *History
	reactor Reactor
}

// NewEngine wires an engine. reactor may be nil when no reaction scripts are
// wanted.
func NewEngine(cfg *config.Config, sender Sender, log *LogStore, history *History, reactor Reactor) *Engine {
	return &Engine{
		cfg:     cfg,
		sender:  sender,
		log:     log,
		history: history,
		reactor: reactor,
	}
}

// History returns the engine's command history.
func (e *Engine) History() *History { return e.history }

// IsMacro reports whether name is a configured macro.
func (e *Engine) IsMacro(name string) bool {
	_, ok := e.cfg.Macro(name)
	return ok
}

// Submit dispatches a committed command: a macro name invokes the macro,
// anything else is sent as a literal.
func (e *Engine) Submit(text string) error {
	if e.IsMacro(text) {
		return e.InvokeMacro(text)
	}
	return e.SendLiteral(text)
}

// SendLiteral frames literal once, writes it, echoes it into the log and
// records it in history. A write failure is logged and returned; the
// command is still recorded as attempted.
func (e *Engine) SendLiteral(literal string) error {
	err := e.sender.Send(e.cfg.Frame(literal))
	e.history.Touch(literal)

	if err != nil {
		logging.Warn("Send failed",
			zap.String("command", literal),
			zap.Error(err),
		)
		e.log.Append(Entry{
			Origin: OriginSystem,
			Text:   Colorize(Red, fmt.Sprintf("send %q failed: %v", literal, err)),
		})
		return err
	}

	e.log.Append(Entry{Origin: OriginEcho, Text: Colorize(Yellow, echoPrefix+literal)})
	return nil
}

// InvokeMacro records the macro name in history, arms its reaction script
// if it has one, then sends each sub-command as a literal in order.
// Sub-commands are never expanded again, even when they name a macro.
// A failed sub-command does not stop the remaining ones.
func (e *Engine) InvokeMacro(name string) error {
	macro, ok := e.cfg.Macro(name)
	if !ok {
		return fmt.Errorf("unknown macro %q", name)
	}

	e.history.Touch(name)
	logging.Info("Invoking macro",
		zap.String("macro", name),
		zap.Int("commands", len(macro.Commands)),
		zap.Bool("reaction", macro.Code != ""),
	)

	if macro.Code != "" && e.reactor != nil {
		e.reactor.Arm(name, macro.Code)
	}

	var errs []error
	for _, cmd := range macro.Commands {
		if err := e.SendLiteral(cmd); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Start sends the configured init command, if any.
func (e *Engine) Start() error {
	if e.cfg.Init == "" {
		return nil
	}
	return e.SendLiteral(e.cfg.Init)
}

// Candidates rebuilds p from the current history and configuration.
func (e *Engine) Candidates(p *Palette) {
	p.Rebuild(e.history.Top(HistoryShown), e.cfg.MacroNames(), e.cfg.Commands)
}
