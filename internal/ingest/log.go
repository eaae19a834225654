package ingest

import (
	"fmt"
	"sync"
	"time"
)

// DefaultLogCapacity is how many diagnostic entries a Log keeps.
const DefaultLogCapacity = 500

// LogEntry is one timestamped diagnostic line.
type LogEntry struct {
	Time    time.Time
	Message string
}

// String formats the entry the way the log view prints it.
func (e LogEntry) String() string {
	return fmt.Sprintf("[%s] %s", e.Time.Format("15:04:05"), e.Message)
}

// Log is a bounded, ordered diagnostic log. Once full, each append drops the
// oldest entry. It is safe for concurrent use.
type Log struct {
	mu      sync.Mutex
	entries []LogEntry
	start   int
	size    int
	dropped int
	now     func() time.Time
}

// NewLog creates a Log holding at most capacity entries. A non-positive
// capacity uses DefaultLogCapacity.
func NewLog(capacity int) *Log {
	if capacity <= 0 {
		capacity = DefaultLogCapacity
	}
	return &Log{entries: make([]LogEntry, capacity), now: time.Now}
}

// Append records msg with the current time.
func (l *Log) Append(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e := LogEntry{Time: l.now(), Message: msg}
	capacity := len(l.entries)
	if l.size < capacity {
		l.entries[(l.start+l.size)%capacity] = e
		l.size++
		return
	}
	l.entries[l.start] = e
	l.start = (l.start + 1) % capacity
	l.dropped++
}

// Appendf records a formatted message.
func (l *Log) Appendf(format string, args ...any) {
	l.Append(fmt.Sprintf(format, args...))
}

// Entries returns the retained entries, oldest first.
func (l *Log) Entries() []LogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.tailLocked(l.size)
}

// Tail returns the newest n entries, oldest first.
func (l *Log) Tail(n int) []LogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	if n > l.size {
		n = l.size
	}
	return l.tailLocked(n)
}

func (l *Log) tailLocked(n int) []LogEntry {
	out := make([]LogEntry, 0, n)
	capacity := len(l.entries)
	for i := l.size - n; i < l.size; i++ {
		out = append(out, l.entries[(l.start+i)%capacity])
	}
	return out
}

// Len returns the number of retained entries.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.size
}

// Dropped returns how many entries were evicted since the last Clear.
func (l *Log) Dropped() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.dropped
}

// Capacity returns the maximum number of retained entries.
func (l *Log) Capacity() int {
	return len(l.entries)
}

// Clear removes every entry.
func (l *Log) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	clear(l.entries)
	l.start, l.size, l.dropped = 0, 0, 0
}
