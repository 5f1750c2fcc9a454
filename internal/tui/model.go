package tui

import (
	"time"
	"unicode"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/muurk/devterm/internal/logging"
	"github.com/muurk/devterm/internal/terminal"
	"github.com/muurk/devterm/internal/transport"
)

// Mode is the input state of the palette.
type Mode int

const (
	// ModeNavigating moves the selection with the arrow keys.
	ModeNavigating Mode = iota
	// ModeFiltering narrows the candidates as letters are typed.
	ModeFiltering
	// ModeInlineEdit edits the selected candidate before sending it.
	ModeInlineEdit
	// ModeFreeEntry composes a new command from the sentinel row.
	ModeFreeEntry
)

func (m Mode) String() string {
	switch m {
	case ModeNavigating:
		return "navigate"
	case ModeFiltering:
		return "filter"
	case ModeInlineEdit:
		return "edit"
	case ModeFreeEntry:
		return "new"
	default:
		return "unknown"
	}
}

// Link is the connection shown in the status line.
type Link interface {
	Name() string
	Target() string
	State() transport.State
}

// tickMsg drives the redraw cadence so received lines show up promptly.
type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(transport.PollInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Model is the terminal screen: a command palette over a scrollback pane.
type Model struct {
	engine  *terminal.Engine
	log     *terminal.LogStore
	link    Link
	palette terminal.Palette
	mode    Mode

	// UI state
	Width    int
	Height   int
	Input    textinput.Model
	Spinner  spinner.Model
	Help     help.Model
	Keys     keyMap
	EditKeys editKeyMap
	quitting bool
}

// New creates the screen model. The palette is built from the engine's
// current history and configuration.
func New(engine *terminal.Engine, log *terminal.LogStore, link Link) Model {
	s := spinner.New()
	s.Spinner = spinner.Line
	s.Style = SpinnerStyle

	input := textinput.New()
	input.Prompt = "> "
	input.Placeholder = "command"
	input.CharLimit = 512

	m := Model{
		engine:   engine,
		log:      log,
		link:     link,
		palette:  terminal.NewPalette(),
		mode:     ModeNavigating,
		Input:    input,
		Spinner:  s,
		Help:     help.New(),
		Keys:     newKeyMap(),
		EditKeys: newEditKeyMap(),
	}
	engine.Candidates(&m.palette)
	return m
}

// Mode returns the current input mode.
func (m Model) Mode() Mode { return m.mode }

// Palette returns a copy of the palette state.
func (m Model) Palette() terminal.Palette { return m.palette }

// Init starts the redraw ticker and the connection spinner.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		tick(),
		m.Spinner.Tick,
		tea.SetWindowTitle(AppName+" "+m.link.Target()),
	)
}

// Update handles window, timer and key messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.Help.Width = msg.Width
		m.Input.Width = msg.Width - 8
		m.palette.SetTerminalRows(msg.Height)
		return m, nil

	case tickMsg:
		return m, tick()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m.quit()
		}
		if m.editing() {
			return m.updateEdit(msg)
		}
		return m.updatePalette(msg)
	}

	return m, nil
}

func (m Model) editing() bool {
	return m.mode == ModeInlineEdit || m.mode == ModeFreeEntry
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	m.quitting = true
	return m, tea.Quit
}

func (m Model) updatePalette(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.Keys.Quit):
		return m.quit()

	case key.Matches(msg, m.Keys.Up):
		m.palette.DropFilterText()
		m.palette.Navigate(-1)
		m.mode = ModeNavigating

	case key.Matches(msg, m.Keys.Down):
		m.palette.DropFilterText()
		m.palette.Navigate(1)
		m.mode = ModeNavigating

	case key.Matches(msg, m.Keys.Clear):
		m.engine.Candidates(&m.palette)
		m.mode = ModeNavigating

	case key.Matches(msg, m.Keys.Grow):
		m.palette.Resize(1)

	case key.Matches(msg, m.Keys.Shrink):
		m.palette.Resize(-1)

	case key.Matches(msg, m.Keys.Edit):
		c, ok := m.palette.Selected()
		if !ok {
			return m, nil
		}
		m.mode = ModeInlineEdit
		m.Input.SetValue(c.Literal)
		m.Input.CursorEnd()
		return m, m.Input.Focus()

	case key.Matches(msg, m.Keys.Send):
		c, ok := m.palette.Selected()
		if !ok {
			m.mode = ModeFreeEntry
			m.Input.Reset()
			return m, m.Input.Focus()
		}
		m.submit(c.Literal)

	case msg.Type == tea.KeyBackspace && m.mode == ModeFiltering:
		m.backspaceFilter()

	case msg.Type == tea.KeyRunes && len(msg.Runes) == 1 && unicode.IsLetter(msg.Runes[0]):
		m.palette.ApplyFilter(m.palette.Filter() + string(msg.Runes[0]))
		m.mode = ModeFiltering
	}

	return m, nil
}

// backspaceFilter removes the last filter character and re-filters the
// full candidate set.
func (m *Model) backspaceFilter() {
	text := []rune(m.palette.Filter())
	m.palette.ClearFilter()
	if len(text) <= 1 {
		m.mode = ModeNavigating
		return
	}
	m.palette.ApplyFilter(string(text[:len(text)-1]))
}

func (m Model) updateEdit(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.EditKeys.Cancel):
		m.endEdit()
		m.engine.Candidates(&m.palette)
		return m, nil

	case key.Matches(msg, m.EditKeys.Commit):
		text := m.Input.Value()
		m.endEdit()
		if text != "" {
			m.submit(text)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.Input, cmd = m.Input.Update(msg)
	return m, cmd
}

func (m *Model) endEdit() {
	m.Input.Blur()
	m.Input.Reset()
	m.mode = ModeNavigating
}

// submit dispatches text and rebuilds the palette. Send failures are already
// in the log, so they only reach the debug log here.
func (m *Model) submit(text string) {
	if err := m.engine.Submit(text); err != nil {
		logging.Debug("Submit finished with errors",
			zap.String("command", text),
			zap.Error(err),
		)
	}
	m.engine.Candidates(&m.palette)
	m.mode = ModeNavigating
}
