package tui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/muurk/devterm/internal/terminal"
	"github.com/muurk/devterm/internal/version"
)

// AppName is shown in the status line.
const AppName = "devterm"

// AppVersion returns the application version from the centralized version package
func AppVersion() string {
	return version.Version
}

// Color palette
var (
	PrimaryColor   = lipgloss.Color("#7D56F4") // Purple
	SecondaryColor = lipgloss.Color("#43BF6D") // Green
	WarningColor   = lipgloss.Color("#FFA500") // Orange
	ErrorColor     = lipgloss.Color("#FF0000") // Red

	TextColor       = lipgloss.Color("#FFFFFF") // White
	SubtleColor     = lipgloss.Color("#626262") // Gray
	BorderColor     = lipgloss.Color("#7D56F4") // Purple (same as primary)
	HighlightColor  = lipgloss.Color("#43BF6D") // Green (same as secondary)
	BackgroundColor = lipgloss.Color("#1A1A1A") // Dark gray
)

// Common styles
var (
	// Pane boxes
	PaneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(BorderColor)

	// Palette rows
	CandidateStyle = lipgloss.NewStyle().
			PaddingLeft(2).
			Foreground(TextColor)

	SelectedCandidateStyle = lipgloss.NewStyle().
				Foreground(HighlightColor).
				Bold(true)

	SentinelStyle = lipgloss.NewStyle().
			PaddingLeft(2).
			Foreground(SubtleColor).
			Italic(true)

	// Source tags next to candidates
	MacroTagStyle = lipgloss.NewStyle().
			Foreground(WarningColor)

	HistoryTagStyle = lipgloss.NewStyle().
			Foreground(SubtleColor)

	FilterStyle = lipgloss.NewStyle().
			Foreground(WarningColor).
			Bold(true)

	// Status bar style
	StatusBarStyle = lipgloss.NewStyle().
			Foreground(SubtleColor).
			Background(BackgroundColor).
			Padding(0, 1)

	ConnectedStyle = lipgloss.NewStyle().
			Foreground(SecondaryColor).
			Bold(true)

	DisconnectedStyle = lipgloss.NewStyle().
				Foreground(ErrorColor).
				Bold(true)

	// Spinner style
	SpinnerStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor)

	// Help text style
	HelpStyle = lipgloss.NewStyle().
			Foreground(SubtleColor)
)

// spanStyle maps a decoded log style onto the terminal's basic ANSI colors.
func spanStyle(s terminal.Style) lipgloss.Style {
	style := lipgloss.NewStyle()
	if s.Fg != terminal.NoColor {
		style = style.Foreground(lipgloss.Color(strconv.Itoa(int(s.Fg))))
	}
	if s.Bg != terminal.NoColor {
		style = style.Background(lipgloss.Color(strconv.Itoa(int(s.Bg))))
	}
	return style
}

// RenderEntry renders one log entry with its inline colors applied.
func RenderEntry(text string) string {
	var b strings.Builder
	for _, span := range terminal.Decode(text) {
		if span.Style == terminal.BaseStyle {
			b.WriteString(span.Text)
			continue
		}
		b.WriteString(spanStyle(span.Style).Render(span.Text))
	}
	return b.String()
}
