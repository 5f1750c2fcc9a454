package terminal

// History is the list of sent commands, most recent first. Sending a command
// that is already present moves it to the front instead of duplicating it.
type History struct {
	items []string
}

// NewHistory creates an empty history.
func NewHistory() *History {
	return &History{}
}

// Touch records cmd as the most recent command. Empty commands are not
// recorded.
func (h *History) Touch(cmd string) {
	if cmd == "" {
		return
	}
	if len(h.items) > 0 && h.items[0] == cmd {
		return
	}
	for i, item := range h.items {
		if item == cmd {
			copy(h.items[1:i+1], h.items[:i])
			h.items[0] = cmd
			return
		}
	}
	h.items = append(h.items, "")
	copy(h.items[1:], h.items)
	h.items[0] = cmd
}

// Len returns the number of distinct commands recorded.
func (h *History) Len() int {
	return len(h.items)
}

// Top returns a copy of at most n most recent commands.
func (h *History) Top(n int) []string {
	if n > len(h.items) {
		n = len(h.items)
	}
	if n <= 0 {
		return nil
	}
	return append([]string(nil), h.items[:n]...)
}

// Items returns a copy of the whole history.
func (h *History) Items() []string {
	return h.Top(len(h.items))
}
