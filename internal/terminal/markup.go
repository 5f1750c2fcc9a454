package terminal

import (
	"strconv"
	"strings"
)

// Color is one of the eight basic terminal colors, or NoColor.
type Color int8

const (
	NoColor Color = iota - 1
	Black
	Red
	Green
	Yellow
	Blue
	Magenta
	Cyan
	White
)

// Style is the foreground and background applied to a run of text.
type Style struct {
	Fg Color
	Bg Color
}

// BaseStyle is in effect at the start of every entry and after a reset.
var BaseStyle = Style{Fg: NoColor, Bg: NoColor}

// Span is a run of text sharing one style.
type Span struct {
	Text  string
	Style Style
}

const esc = 0x1b

// Decode splits an entry into styled spans. Directives are SGR sequences
// (ESC [ params m) from a closed set:
//
//	0 or empty  reset
//	30-37       foreground color
//	39          default foreground
//	40-47       background color
//	49          default background
//
// Any other parameter, any non-SGR escape sequence and a dangling ESC all
// act as a reset. Directives never appear in the output. Carriage returns
// and other control bytes are dropped; tabs become spaces.
func Decode(text string) []Span {
	var spans []Span
	var run strings.Builder
	style := BaseStyle

	flush := func() {
		if run.Len() > 0 {
			spans = append(spans, Span{Text: run.String(), Style: style})
			run.Reset()
		}
	}

	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case c == esc:
			flush()
			next, params, ok := scanCSI(text, i)
			if ok {
				style = applySGR(style, params)
			} else {
				style = BaseStyle
			}
			i = next - 1
		case c == '\t':
			run.WriteByte(' ')
		case c < 0x20 || c == 0x7f:
			// Control bytes, including the CR of CRLF line endings
		default:
			run.WriteByte(c)
		}
	}
	flush()

	return spans
}

// scanCSI parses the escape sequence starting at text[start]. It returns the
// index just past the sequence, the SGR parameters, and whether the sequence
// was a well-formed SGR directive.
func scanCSI(text string, start int) (next int, params string, ok bool) {
	i := start + 1
	if i >= len(text) || text[i] != '[' {
		return i, "", false
	}
	i++
	paramStart := i
	for i < len(text) {
		c := text[i]
		if c >= 0x40 && c <= 0x7e {
			return i + 1, text[paramStart:i], c == 'm'
		}
		if c < 0x20 || c > 0x3f {
			// Not a parameter byte: abandon the sequence here
			return i, "", false
		}
		i++
	}
	return i, "", false
}

func applySGR(style Style, params string) Style {
	if params == "" {
		return BaseStyle
	}
	for _, p := range strings.Split(params, ";") {
		n, err := strconv.Atoi(p)
		switch {
		case p == "" || err != nil || n == 0:
			style = BaseStyle
		case n >= 30 && n <= 37:
			style.Fg = Color(n - 30)
		case n == 39:
			style.Fg = NoColor
		case n >= 40 && n <= 47:
			style.Bg = Color(n - 40)
		case n == 49:
			style.Bg = NoColor
		default:
			style = BaseStyle
		}
	}
	return style
}

// Colorize wraps text in a foreground directive and a reset.
func Colorize(fg Color, text string) string {
	return "\x1b[" + strconv.Itoa(30+int(fg)) + "m" + text + "\x1b[0m"
}

// PlainText returns the text of an entry with all directives removed.
func PlainText(text string) string {
	var b strings.Builder
	for _, span := range Decode(text) {
		b.WriteString(span.Text)
	}
	return b.String()
}
