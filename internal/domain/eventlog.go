package domain

// DefaultLogCapacity is the number of log lines kept when no capacity is configured.
const DefaultLogCapacity = 20

// EventLog is a bounded ring of human-readable match events. Once full, each
// append silently drops the oldest entry.
type EventLog struct {
	buf  []string
	head int // next write position
	size int
}

// NewEventLog returns a log holding at most capacity entries.
// A non-positive capacity selects DefaultLogCapacity.
func NewEventLog(capacity int) *EventLog {
	if capacity <= 0 {
		capacity = DefaultLogCapacity
	}
	return &EventLog{buf: make([]string, capacity)}
}

// Append records entry as the newest event.
func (l *EventLog) Append(entry string) {
	l.buf[l.head] = entry
	l.head = (l.head + 1) % len(l.buf)
	if l.size < len(l.buf) {
		l.size++
	}
}

// Entries returns a copy of the retained events, newest first.
func (l *EventLog) Entries() []string {
	out := make([]string, l.size)
	for i := 0; i < l.size; i++ {
		out[i] = l.buf[(l.head-1-i+len(l.buf))%len(l.buf)]
	}
	return out
}

// Latest returns the newest entry.
func (l *EventLog) Latest() (string, bool) {
	if l.size == 0 {
		return "", false
	}
	return l.buf[(l.head-1+len(l.buf))%len(l.buf)], true
}

// Len returns the number of retained entries.
func (l *EventLog) Len() int { return l.size }

// Cap returns the maximum number of retained entries.
func (l *EventLog) Cap() int { return len(l.buf) }
