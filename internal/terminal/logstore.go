package terminal

import "sync"

// Origin records where a log entry came from.
type Origin int

const (
	// OriginDevice entries were assembled from transport data.
	OriginDevice Origin = iota
	// OriginEcho entries echo a command that was sent.
	OriginEcho
	// OriginSystem entries are engine notices (faults, reconnects).
	OriginSystem
)

func (o Origin) String() string {
	switch o {
	case OriginDevice:
		return "device"
	case OriginEcho:
		return "echo"
	case OriginSystem:
		return "system"
	default:
		return "unknown"
	}
}

// Entry is one scrollback line. Text may embed SGR color directives.
type Entry struct {
	Origin Origin
	Text   string
}

// LogStore is an append-only, concurrency-safe scrollback buffer.
type LogStore struct {
	mu      sync.RWMutex
	entries []Entry
}

// NewLogStore creates an empty store.
func NewLogStore() *LogStore {
	return &LogStore{}
}

// Append adds an entry at the end.
func (s *LogStore) Append(e Entry) {
	s.mu.Lock()
	s.entries = append(s.entries, e)
	s.mu.Unlock()
}

// AppendDevice adds a line received from the device.
func (s *LogStore) AppendDevice(line string) {
	s.Append(Entry{Origin: OriginDevice, Text: line})
}

// AppendSystem adds an engine notice.
func (s *LogStore) AppendSystem(text string) {
	s.Append(Entry{Origin: OriginSystem, Text: text})
}

// Len returns the number of entries appended so far.
func (s *LogStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Tail returns a copy of the last n entries in append order.
func (s *LogStore) Tail(n int) []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if n <= 0 {
		return nil
	}
	if n > len(s.entries) {
		n = len(s.entries)
	}
	out := make([]Entry, n)
	copy(out, s.entries[len(s.entries)-n:])
	return out
}

// Since returns a copy of the entries appended at index i and later.
func (s *LogStore) Since(i int) []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i < 0 {
		i = 0
	}
	if i >= len(s.entries) {
		return nil
	}
	out := make([]Entry, len(s.entries)-i)
	copy(out, s.entries[i:])
	return out
}
