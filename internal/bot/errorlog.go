package bot

import (
	"sync"
	"time"
)

// LoggedError is one recorded submission failure.
type LoggedError struct {
	Time time.Time
	Err  error
}

// ErrorLog keeps the most recent submission failures per channel so users
// can ask what went wrong with an ambient submission after the fact.
type ErrorLog struct {
	mu       sync.Mutex
	max      int // per channel, 0 = unbounded
	channels map[string][]LoggedError
}

func NewErrorLog(max int) *ErrorLog {
	return &ErrorLog{max: max, channels: make(map[string][]LoggedError)}
}

// Append records a failure for the channel, evicting the oldest entry when
// the per-channel cap is reached.
func (l *ErrorLog) Append(channel string, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entries := append(l.channels[channel], LoggedError{Time: time.Now(), Err: err})
	if l.max > 0 && len(entries) > l.max {
		entries = entries[len(entries)-l.max:]
	}
	l.channels[channel] = entries
}

// Recent returns up to n entries for the channel, newest first.
func (l *ErrorLog) Recent(channel string, n int) []LoggedError {
	l.mu.Lock()
	defer l.mu.Unlock()

	entries := l.channels[channel]
	if len(entries) < n {
		n = len(entries)
	}

	out := make([]LoggedError, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, entries[len(entries)-1-i])
	}
	return out
}
