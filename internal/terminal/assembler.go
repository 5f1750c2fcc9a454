package terminal

import "github.com/muurk/devterm/internal/transport"

// Assembler turns received chunks into lines according to the transport's
// framing. It is not safe for concurrent use; each receive task owns one.
type Assembler struct {
	framing transport.Framing
	buf     []byte
}

// NewAssembler creates an assembler for the given framing.
func NewAssembler(framing transport.Framing) *Assembler {
	return &Assembler{framing: framing}
}

// Feed consumes a chunk and returns the lines it completed. For stream
// framing the line feed terminator is dropped and every other byte is kept;
// for message framing the whole chunk is one line. Empty lines are never
// returned.
func (a *Assembler) Feed(chunk []byte) []string {
	if a.framing == transport.FramingMessage {
		if len(chunk) == 0 {
			return nil
		}
		return []string{string(chunk)}
	}

	var lines []string
	for _, c := range chunk {
		if c != '\n' {
			a.buf = append(a.buf, c)
			continue
		}
		if len(a.buf) > 0 {
			lines = append(lines, string(a.buf))
			a.buf = a.buf[:0]
		}
	}
	return lines
}

// Pending returns the bytes of the line still being assembled.
func (a *Assembler) Pending() []byte {
	return a.buf
}
