package terminal

import "regexp"

// Source tags where a palette candidate came from.
type Source int

const (
	SourceHistory Source = iota
	SourceMacro
	SourceStatic
)

func (s Source) String() string {
	switch s {
	case SourceHistory:
		return "history"
	case SourceMacro:
		return "macro"
	case SourceStatic:
		return "static"
	default:
		return "unknown"
	}
}

// Candidate is one selectable palette entry.
type Candidate struct {
	Source  Source
	Literal string
}

const (
	// HistoryShown is how many recent commands lead the palette.
	HistoryShown = 5

	// DefaultVisibleHeight is the palette pane height at startup.
	DefaultVisibleHeight = 10

	// MinVisibleHeight is the smallest palette pane height.
	MinVisibleHeight = 5

	// reservedRows is kept for the log pane below the palette.
	reservedRows = 5
)

// Palette holds the candidate list, filter and selection. Index 0 of the
// selection is the raw-edit sentinel; 1..N select the Nth displayed
// candidate.
type Palette struct {
	all      []Candidate
	shown    []Candidate
	filter   string
	selected int
	height   int
	termRows int
}

// NewPalette creates a palette with the default pane height.
func NewPalette() Palette {
	return Palette{height: DefaultVisibleHeight}
}

// Rebuild replaces the candidates with history[:HistoryShown], then macro
// names, then static commands. A literal appearing more than once keeps its
// first position, so history outranks macros and macros outrank static
// commands. The filter is cleared and the sentinel selected.
func (p *Palette) Rebuild(history, macros, static []string) {
	all := make([]Candidate, 0, HistoryShown+len(macros)+len(static))
	if len(history) > HistoryShown {
		history = history[:HistoryShown]
	}
	for _, h := range history {
		all = append(all, Candidate{Source: SourceHistory, Literal: h})
	}
	for _, m := range macros {
		all = append(all, Candidate{Source: SourceMacro, Literal: m})
	}
	for _, s := range static {
		all = append(all, Candidate{Source: SourceStatic, Literal: s})
	}

	p.all = dedupe(all)
	p.shown = p.all
	p.filter = ""
	p.selected = 0
}

// ApplyFilter narrows the displayed candidates to those whose literal starts
// with a match of text as a case-insensitive regular expression. It filters
// the currently displayed set, so successive calls narrow progressively. An
// invalid pattern matches nothing.
func (p *Palette) ApplyFilter(text string) {
	p.filter = text

	re, err := regexp.Compile("(?i)" + text)
	if err != nil {
		p.shown = nil
		p.clamp()
		return
	}

	var kept []Candidate
	for _, c := range p.shown {
		if loc := re.FindStringIndex(c.Literal); loc != nil && loc[0] == 0 {
			kept = append(kept, c)
		}
	}
	p.shown = dedupe(kept)
	p.clamp()
}

// DropFilterText forgets the filter text but keeps the displayed candidates,
// so a filtered list can still be navigated.
func (p *Palette) DropFilterText() {
	p.filter = ""
}

// ClearFilter restores the full rebuilt candidate set.
func (p *Palette) ClearFilter() {
	p.filter = ""
	p.shown = p.all
	p.clamp()
}

// Navigate moves the selection by delta, clamped to the selectable range.
func (p *Palette) Navigate(delta int) {
	p.selected += delta
	p.clamp()
}

// Resize grows or shrinks the pane height within its bounds.
func (p *Palette) Resize(delta int) {
	p.height += delta
	p.clampHeight()
	p.clamp()
}

// SetTerminalRows records the terminal height that bounds the pane height.
func (p *Palette) SetTerminalRows(rows int) {
	p.termRows = rows
	p.clampHeight()
	p.clamp()
}

// Filter returns the active filter text.
func (p Palette) Filter() string { return p.filter }

// Candidates returns the displayed candidates.
func (p Palette) Candidates() []Candidate { return p.shown }

// All returns the unfiltered candidates.
func (p Palette) All() []Candidate { return p.all }

// SelectedIndex returns 0 for the sentinel or the 1-based candidate index.
func (p Palette) SelectedIndex() int { return p.selected }

// VisibleHeight returns the pane height.
func (p Palette) VisibleHeight() int { return p.height }

// Selected returns the selected candidate, or false for the sentinel.
func (p Palette) Selected() (Candidate, bool) {
	if p.selected == 0 || p.selected > len(p.shown) {
		return Candidate{}, false
	}
	return p.shown[p.selected-1], true
}

// MaxIndex is the largest valid selection: min(height-2, len(candidates)).
func (p Palette) MaxIndex() int {
	limit := p.height - 2
	if len(p.shown) < limit {
		limit = len(p.shown)
	}
	if limit < 0 {
		limit = 0
	}
	return limit
}

func (p *Palette) clamp() {
	if p.selected < 0 {
		p.selected = 0
	}
	if limit := p.MaxIndex(); p.selected > limit {
		p.selected = limit
	}
}

func (p *Palette) clampHeight() {
	upper := p.termRows - reservedRows
	if p.termRows == 0 || upper < MinVisibleHeight {
		// Unknown or tiny terminal: only the lower bound applies
		upper = p.height
		if upper < MinVisibleHeight {
			upper = MinVisibleHeight
		}
	}
	if p.height > upper {
		p.height = upper
	}
	if p.height < MinVisibleHeight {
		p.height = MinVisibleHeight
	}
}

func dedupe(in []Candidate) []Candidate {
	seen := make(map[string]bool, len(in))
	out := make([]Candidate, 0, len(in))
	for _, c := range in {
		if seen[c.Literal] {
			continue
		}
		seen[c.Literal] = true
		out = append(out, c)
	}
	return out
}
