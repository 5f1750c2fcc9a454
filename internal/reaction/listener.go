package reaction

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/devterm/internal/logging"
	"github.com/muurk/devterm/internal/terminal"
	"github.com/muurk/devterm/internal/transport"
)

// DefaultWindow is how long an armed listener watches the log.
const DefaultWindow = 2 * time.Second

// Log is the read side of the terminal log store.
type Log interface {
	Len() int
	Since(i int) []terminal.Entry
}

// Listener arms reaction scripts. Each Arm call starts an independent,
// time-boxed watcher; the caller never waits on it.
type Listener struct {
	ctx    context.Context
	log    Log
	runner Runner
	report func(error)

	// Window and Interval may be changed before the first Arm
	Window   time.Duration
	Interval time.Duration

	wg sync.WaitGroup
}

// NewListener creates a listener over log. Scripts run through runner and
// failures go to report, which may be nil. Cancelling ctx kills any
// running script and ends every watcher early.
func NewListener(ctx context.Context, log Log, runner Runner, report func(error)) *Listener {
	return &Listener{
		ctx:      ctx,
		log:      log,
		runner:   runner,
		report:   report,
		Window:   DefaultWindow,
		Interval: transport.PollInterval,
	}
}

// Arm starts watching for entries appended from now on and runs script once
// per new device entry until the window closes.
func (l *Listener) Arm(macro, script string) {
	start := l.log.Len()
	ctx, cancel := context.WithTimeout(l.ctx, l.Window)

	logging.Debug("Reaction listener armed",
		zap.String("macro", macro),
		zap.String("script", script),
		zap.Int("from", start),
		zap.Duration("window", l.Window),
	)

	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		defer cancel()
		l.watch(ctx, macro, script, start)
	}()
}

// Wait blocks until every armed watcher has finished.
func (l *Listener) Wait() {
	l.wg.Wait()
}

func (l *Listener) watch(ctx context.Context, macro, script string, seen int) {
	ticker := time.NewTicker(l.Interval)
	defer ticker.Stop()

	runs := 0
	for {
		if l.log.Len() > seen {
			fresh := l.log.Since(seen)
			seen += len(fresh)
			for _, entry := range fresh {
				if entry.Origin != terminal.OriginDevice {
					continue
				}
				if ctx.Err() != nil {
					break
				}
				runs++
				if err := l.runner.Run(ctx, script, entry.Text); err != nil {
					l.fail(macro, err)
				}
			}
		}

		select {
		case <-ctx.Done():
			logging.Debug("Reaction listener closed",
				zap.String("macro", macro),
				zap.Int("runs", runs),
			)
			return
		case <-ticker.C:
		}
	}
}

func (l *Listener) fail(macro string, err error) {
	logging.Warn("Reaction script failed",
		zap.String("macro", macro),
		zap.Error(err),
	)
	if l.report != nil {
		l.report(err)
	}
}
