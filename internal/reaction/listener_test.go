package reaction

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/muurk/devterm/internal/terminal"
)

type call struct {
	script string
	entry  string
}

type fakeRunner struct {
	mu    sync.Mutex
	calls []call
	err   error
}

func (f *fakeRunner) Run(ctx context.Context, script, entry string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call{script: script, entry: entry})
	return f.err
}

func (f *fakeRunner) snapshot() []call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]call(nil), f.calls...)
}

func newTestListener(log Log, runner Runner, report func(error)) *Listener {
	l := NewListener(context.Background(), log, runner, report)
	l.Window = 300 * time.Millisecond
	l.Interval = 5 * time.Millisecond
	return l
}

func TestListener_RunsOncePerNewDeviceEntry(t *testing.T) {
	log := terminal.NewLogStore()
	log.AppendDevice("before arming")
	runner := &fakeRunner{}
	l := newTestListener(log, runner, nil)

	l.Arm("blink", "./on-reply.sh")
	time.Sleep(50 * time.Millisecond)
	log.AppendDevice("OK")
	l.Wait()

	log.AppendDevice("too late")
	time.Sleep(20 * time.Millisecond)

	calls := runner.snapshot()
	if len(calls) != 1 {
		t.Fatalf("runs = %d, want 1: %+v", len(calls), calls)
	}
	if calls[0].script != "./on-reply.sh" || calls[0].entry != "OK" {
		t.Errorf("call = %+v", calls[0])
	}
}

func TestListener_NoEntryNoRun(t *testing.T) {
	log := terminal.NewLogStore()
	runner := &fakeRunner{}
	l := newTestListener(log, runner, nil)

	start := time.Now()
	l.Arm("blink", "./on-reply.sh")
	l.Wait()

	if elapsed := time.Since(start); elapsed < 250*time.Millisecond {
		t.Errorf("listener closed after %v, before its window", elapsed)
	}
	if n := len(runner.snapshot()); n != 0 {
		t.Errorf("runs = %d, want 0", n)
	}
}

func TestListener_IgnoresEchoAndSystemEntries(t *testing.T) {
	log := terminal.NewLogStore()
	runner := &fakeRunner{}
	l := newTestListener(log, runner, nil)

	l.Arm("blink", "./on-reply.sh")
	log.Append(terminal.Entry{Origin: terminal.OriginEcho, Text: "> LED=1"})
	log.AppendSystem("reconnected")
	log.AppendDevice("LED ON")
	log.AppendDevice("READY")
	l.Wait()

	calls := runner.snapshot()
	if len(calls) != 2 || calls[0].entry != "LED ON" || calls[1].entry != "READY" {
		t.Errorf("calls = %+v", calls)
	}
}

func TestListener_ReportsFailuresAndKeepsGoing(t *testing.T) {
	log := terminal.NewLogStore()
	runner := &fakeRunner{err: errors.New("exit status 3")}

	var mu sync.Mutex
	var reported []error
	l := newTestListener(log, runner, func(err error) {
		mu.Lock()
		defer mu.Unlock()
		reported = append(reported, err)
	})

	l.Arm("blink", "./on-reply.sh")
	log.AppendDevice("one")
	log.AppendDevice("two")
	l.Wait()

	mu.Lock()
	defer mu.Unlock()
	if len(reported) != 2 {
		t.Errorf("reported = %v, want 2 failures", reported)
	}
	if n := len(runner.snapshot()); n != 2 {
		t.Errorf("runs = %d, want 2", n)
	}
}

func TestListener_CancelEndsEarly(t *testing.T) {
	log := terminal.NewLogStore()
	ctx, cancel := context.WithCancel(context.Background())
	l := NewListener(ctx, log, &fakeRunner{}, nil)

	l.Arm("blink", "./on-reply.sh")
	start := time.Now()
	cancel()
	l.Wait()

	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("Wait() took %v after cancel", elapsed)
	}
}
