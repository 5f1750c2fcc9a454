package tui

import (
	"errors"
	"reflect"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/muurk/devterm/internal/config"
	"github.com/muurk/devterm/internal/terminal"
	"github.com/muurk/devterm/internal/transport"
)

type fakeLink struct {
	mu      sync.Mutex
	state   transport.State
	sent    []string
	sendErr error
}

func (f *fakeLink) Name() string   { return "serial" }
func (f *fakeLink) Target() string { return "/dev/ttyTEST" }

func (f *fakeLink) State() transport.State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *fakeLink) Send(p []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, string(p))
	return nil
}

func (f *fakeLink) frames() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.sent...)
}

func newTestModel(t *testing.T) (Model, *fakeLink, *terminal.LogStore) {
	t.Helper()
	cfg := &config.Config{
		Prefix:   "AT+",
		Suffix:   "\r\n",
		Init:     "RESET",
		Commands: []string{"PING", "STATUS"},
		Macros: map[string]config.Macro{
			"led_on": {Commands: []string{"GPIO1=1"}},
		},
	}
	link := &fakeLink{state: transport.Connected}
	log := terminal.NewLogStore()
	engine := terminal.NewEngine(cfg, link, log, terminal.NewHistory(), nil)

	m := New(engine, log, link)
	m = update(t, m, tea.WindowSizeMsg{Width: 80, Height: 24})
	return m, link, log
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	out, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	return out
}

func press(t *testing.T, m Model, keys ...tea.KeyMsg) Model {
	t.Helper()
	for _, k := range keys {
		m = update(t, m, k)
	}
	return m
}

func runes(s string) []tea.KeyMsg {
	out := make([]tea.KeyMsg, 0, len(s))
	for _, r := range s {
		out = append(out, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return out
}

var (
	keyUp    = tea.KeyMsg{Type: tea.KeyUp}
	keyDown  = tea.KeyMsg{Type: tea.KeyDown}
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
	keyTab   = tea.KeyMsg{Type: tea.KeyTab}
	keyEsc   = tea.KeyMsg{Type: tea.KeyEsc}
)

func literals(p terminal.Palette) []string {
	out := make([]string, 0, len(p.Candidates()))
	for _, c := range p.Candidates() {
		out = append(out, c.Literal)
	}
	return out
}

func TestModel_SelectAndSend(t *testing.T) {
	m, link, _ := newTestModel(t)

	// led_on, PING, STATUS
	m = press(t, m, keyDown, keyDown, keyEnter)

	if got := link.frames(); !reflect.DeepEqual(got, []string{"AT+PING\r\n"}) {
		t.Fatalf("frames = %q", got)
	}
	p := m.Palette()
	if p.SelectedIndex() != 0 {
		t.Errorf("SelectedIndex() = %d, want sentinel after send", p.SelectedIndex())
	}
	if got := literals(p); got[0] != "PING" {
		t.Errorf("candidates = %v, want PING first as recent history", got)
	}
}

func TestModel_EnterOnMacroInvokesIt(t *testing.T) {
	m, link, _ := newTestModel(t)

	m = press(t, m, keyDown, keyEnter)

	if got := link.frames(); !reflect.DeepEqual(got, []string{"AT+GPIO1=1\r\n"}) {
		t.Errorf("frames = %q", got)
	}
	if got := literals(m.Palette())[:2]; !reflect.DeepEqual(got, []string{"GPIO1=1", "led_on"}) {
		t.Errorf("recent = %v", got)
	}
}

func TestModel_FilterThenNavigate(t *testing.T) {
	m, _, _ := newTestModel(t)

	m = press(t, m, runes("st")...)
	if m.Mode() != ModeFiltering {
		t.Errorf("Mode() = %v, want filter", m.Mode())
	}
	if got := literals(m.Palette()); !reflect.DeepEqual(got, []string{"STATUS"}) {
		t.Fatalf("candidates = %v", got)
	}

	m = press(t, m, keyDown)
	p := m.Palette()
	if m.Mode() != ModeNavigating || p.Filter() != "" {
		t.Errorf("mode = %v filter = %q, want navigating with no filter text", m.Mode(), p.Filter())
	}
	if c, ok := p.Selected(); !ok || c.Literal != "STATUS" {
		t.Errorf("Selected() = %v, %v", c, ok)
	}

	m = press(t, m, keyUp, keyEsc)
	if got := literals(m.Palette()); len(got) != 3 {
		t.Errorf("candidates after esc = %v, want full set", got)
	}
}

func TestModel_BackspaceWidensFilter(t *testing.T) {
	m, _, _ := newTestModel(t)

	m = press(t, m, runes("pix")...)
	if n := len(m.Palette().Candidates()); n != 0 {
		t.Fatalf("candidates = %d, want 0", n)
	}

	m = press(t, m, tea.KeyMsg{Type: tea.KeyBackspace})
	if got := literals(m.Palette()); !reflect.DeepEqual(got, []string{"PING"}) {
		t.Errorf("candidates = %v", got)
	}
}

func TestModel_InlineEditSendsEditedText(t *testing.T) {
	m, link, _ := newTestModel(t)

	m = press(t, m, keyTab)
	if m.Mode() != ModeNavigating {
		t.Fatalf("tab on the sentinel should be ignored, mode = %v", m.Mode())
	}

	m = press(t, m, keyDown, keyDown, keyTab)
	if m.Mode() != ModeInlineEdit || m.Input.Value() != "PING" {
		t.Fatalf("mode = %v input = %q", m.Mode(), m.Input.Value())
	}

	// q is text while editing
	m = press(t, m, runes(" q")...)
	m = press(t, m, keyEnter)

	if got := link.frames(); !reflect.DeepEqual(got, []string{"AT+PING q\r\n"}) {
		t.Errorf("frames = %q", got)
	}
	if m.Mode() != ModeNavigating {
		t.Errorf("Mode() = %v after commit", m.Mode())
	}
}

func TestModel_FreeEntry(t *testing.T) {
	m, link, _ := newTestModel(t)

	m = press(t, m, keyEnter)
	if m.Mode() != ModeFreeEntry {
		t.Fatalf("Mode() = %v, want free entry", m.Mode())
	}
	m = press(t, m, runes("VERSION")...)
	m = press(t, m, keyEnter)

	if got := link.frames(); !reflect.DeepEqual(got, []string{"AT+VERSION\r\n"}) {
		t.Errorf("frames = %q", got)
	}
}

func TestModel_EscCancelsEdit(t *testing.T) {
	m, link, _ := newTestModel(t)

	m = press(t, m, keyEnter)
	m = press(t, m, runes("REBOOT")...)
	m = press(t, m, keyEsc)

	if m.Mode() != ModeNavigating {
		t.Errorf("Mode() = %v", m.Mode())
	}
	if n := len(link.frames()); n != 0 {
		t.Errorf("sent %d frames after cancel", n)
	}

	// Empty free entry sends nothing
	m = press(t, m, keyEnter, keyEnter)
	if n := len(link.frames()); n != 0 {
		t.Errorf("sent %d frames for an empty line", n)
	}
}

func TestModel_CancelRebuildsPalette(t *testing.T) {
	m, link, _ := newTestModel(t)

	m = press(t, m, runes("p")...)
	m = press(t, m, keyDown, keyTab)
	if m.Mode() != ModeInlineEdit || m.Input.Value() != "PING" {
		t.Fatalf("mode = %v input = %q", m.Mode(), m.Input.Value())
	}

	m = press(t, m, keyEsc)

	p := m.Palette()
	if got, want := literals(p), []string{"led_on", "PING", "STATUS"}; !reflect.DeepEqual(got, want) {
		t.Errorf("candidates after cancel = %v, want %v", got, want)
	}
	if p.SelectedIndex() != 0 {
		t.Errorf("SelectedIndex() = %d after cancel, want the sentinel", p.SelectedIndex())
	}
	if n := len(link.frames()); n != 0 {
		t.Errorf("sent %d frames after cancel", n)
	}
}

func TestModel_Resize(t *testing.T) {
	m, _, _ := newTestModel(t)
	start := m.Palette().VisibleHeight()

	m = press(t, m, runes("+")...)
	if got := m.Palette().VisibleHeight(); got != start+1 {
		t.Errorf("after + height = %d, want %d", got, start+1)
	}
	m = press(t, m, runes("--")...)
	if got := m.Palette().VisibleHeight(); got != start-1 {
		t.Errorf("after -- height = %d, want %d", got, start-1)
	}
	if m.Mode() != ModeNavigating {
		t.Errorf("resize changed mode to %v", m.Mode())
	}
}

func TestModel_Quit(t *testing.T) {
	tests := []struct {
		name string
		keys []tea.KeyMsg
	}{
		{"q", runes("q")},
		{"q while filtering", runes("pq")},
		{"ctrl+c while editing", []tea.KeyMsg{keyEnter, {Type: tea.KeyCtrlC}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _, _ := newTestModel(t)
			var cmd tea.Cmd
			for _, k := range tt.keys {
				var next tea.Model
				next, cmd = m.Update(k)
				m = next.(Model)
			}
			if cmd == nil {
				t.Fatal("no command returned")
			}
			if _, ok := cmd().(tea.QuitMsg); !ok {
				t.Errorf("command did not quit")
			}
			if m.View() != "" {
				t.Errorf("View() after quit should be empty")
			}
		})
	}
}

func TestModel_WriteFailureStaysInSession(t *testing.T) {
	m, link, log := newTestModel(t)
	link.sendErr = errors.New("device gone")

	m = press(t, m, keyDown, keyDown, keyEnter)

	entries := log.Tail(1)
	if len(entries) != 1 || entries[0].Origin != terminal.OriginSystem {
		t.Fatalf("log = %+v, want a system notice", entries)
	}
	if !strings.Contains(m.View(), "device gone") {
		t.Errorf("failure notice not rendered")
	}
}

func TestModel_ViewShowsLogWithoutDirectives(t *testing.T) {
	m, link, log := newTestModel(t)
	log.AppendDevice("\x1b[31mERR\x1b[0m boot failed")

	view := m.View()
	if !strings.Contains(view, "ERR") || !strings.Contains(view, "boot failed") {
		t.Errorf("log line missing from view:\n%s", view)
	}
	if !strings.Contains(view, "[ new command ]") {
		t.Errorf("sentinel row missing:\n%s", view)
	}

	link.state = transport.Connecting
	if !strings.Contains(m.View(), "connecting") {
		t.Errorf("status line should show the connection state")
	}
}
