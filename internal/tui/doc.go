// Package tui implements the devterm screen: a command palette above a
// scrollback pane, with a status line at the bottom.
//
// Built on Bubble Tea, the model follows the Model-Update-View pattern. A
// 20ms ticker redraws the screen so lines from the receive task appear
// without a keypress; the render loop only reads the shared log store.
//
// # Modes
//
//   - Navigating: arrow keys move through the candidates
//   - Filtering: letters narrow the candidates by a case-insensitive pattern
//   - InlineEdit: Tab copies the selected candidate into an edit line
//   - FreeEntry: Enter on the sentinel row opens an empty edit line
//
// Enter sends, Esc clears a filter or cancels an edit, +/- resize the
// palette and q quits. Every send goes through the engine's dispatch and
// rebuilds the palette with the sentinel selected.
//
// # Framework Components
//
//   - bubbles/textinput: inline edit and free entry
//   - bubbles/spinner: connection indicator while the link is down
//   - bubbles/help and bubbles/key: key bindings and the help line
//   - lipgloss: panes, colors and truncation
//
// # Usage Example
//
//	model := tui.New(engine, log, link)
//	program := tea.NewProgram(model, tea.WithAltScreen())
//	if _, err := program.Run(); err != nil {
//	    return err
//	}
package tui
