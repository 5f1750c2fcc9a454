package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/muurk/devterm/internal/terminal"
	"github.com/muurk/devterm/internal/transport"
)

const (
	// fallbackWidth and fallbackHeight apply until the first WindowSizeMsg.
	fallbackWidth  = 80
	fallbackHeight = 24

	// Rows outside the two panes: the status line.
	chromeRows = 1
	// Rows taken by a pane's border.
	borderRows = 2
)

const sentinelLabel = "[ new command ]"

// View renders the palette pane, the log pane and the status line.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	width, height := m.Width, m.Height
	if width <= 0 {
		width = fallbackWidth
	}
	if height <= 0 {
		height = fallbackHeight
	}
	inner := width - 2
	if inner < 10 {
		inner = 10
	}

	palette := m.renderPalette(inner)
	logRows := height - lipgloss.Height(palette) - chromeRows - borderRows

	// The help line gives way to the log on short terminals
	showHelp := logRows > 3
	if showHelp {
		logRows--
	}
	if logRows < 1 {
		logRows = 1
	}

	parts := []string{palette, m.renderLog(inner, logRows), m.renderStatus(width)}
	if showHelp {
		parts = append(parts, m.renderHelp())
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// renderPalette draws the sentinel row followed by as many candidates as the
// pane height allows.
func (m Model) renderPalette(width int) string {
	p := m.palette
	rows := make([]string, 0, p.VisibleHeight())

	rows = append(rows, m.renderSentinel(width))

	shown := p.Candidates()
	limit := p.VisibleHeight() - 2
	if limit > len(shown) {
		limit = len(shown)
	}
	for i := 0; i < limit; i++ {
		rows = append(rows, m.renderCandidate(shown[i], i+1 == p.SelectedIndex(), width))
	}
	// Keep the pane height stable while filtering
	for len(rows) < p.VisibleHeight()-1 {
		rows = append(rows, "")
	}

	body := lipgloss.JoinVertical(lipgloss.Left, rows...)
	return PaneStyle.Width(width).Render(body)
}

func (m Model) renderSentinel(width int) string {
	switch m.mode {
	case ModeInlineEdit, ModeFreeEntry:
		return lipgloss.NewStyle().MaxWidth(width).Render(m.Input.View())
	}
	row := SentinelStyle.Render(sentinelLabel)
	if m.palette.SelectedIndex() == 0 {
		row = SelectedCandidateStyle.Render("→ " + sentinelLabel)
	}
	if f := m.palette.Filter(); f != "" {
		row += "  " + FilterStyle.Render("/"+f)
	}
	return lipgloss.NewStyle().MaxWidth(width).Render(row)
}

func (m Model) renderCandidate(c terminal.Candidate, selected bool, width int) string {
	var tag string
	switch c.Source {
	case terminal.SourceMacro:
		tag = " " + MacroTagStyle.Render("macro")
	case terminal.SourceHistory:
		tag = " " + HistoryTagStyle.Render("recent")
	}

	var row string
	if selected {
		row = SelectedCandidateStyle.Render("→ "+c.Literal) + tag
	} else {
		row = CandidateStyle.Render(c.Literal) + tag
	}
	return lipgloss.NewStyle().MaxWidth(width).Render(row)
}

// renderLog draws the newest entries that fit, oldest first.
func (m Model) renderLog(width, rows int) string {
	entries := m.log.Tail(rows)
	lines := make([]string, rows)
	offset := rows - len(entries)
	clip := lipgloss.NewStyle().MaxWidth(width)
	for i, e := range entries {
		lines[offset+i] = clip.Render(RenderEntry(e.Text))
	}
	return PaneStyle.Width(width).Render(strings.Join(lines, "\n"))
}

func (m Model) renderStatus(width int) string {
	state := m.link.State()

	var indicator string
	if state == transport.Connected {
		indicator = ConnectedStyle.Render("● " + state.String())
	} else {
		indicator = m.Spinner.View() + " " + DisconnectedStyle.Render(state.String())
	}

	line := fmt.Sprintf("%s v%s │ %s %s │ %s │ %s │ log %d",
		AppName, AppVersion(),
		m.link.Name(), m.link.Target(),
		indicator,
		m.mode,
		m.log.Len(),
	)
	return StatusBarStyle.MaxWidth(width).Render(line)
}

func (m Model) renderHelp() string {
	if m.editing() {
		return HelpStyle.Render(m.Help.View(m.EditKeys))
	}
	return HelpStyle.Render(m.Help.View(m.Keys))
}
