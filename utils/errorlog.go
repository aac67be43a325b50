package utils

import (
	"fmt"
	"io"
	"sync"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

// ErrorLog accumulates recovered extraction errors. Every entry is kept
// in memory for the caller to inspect and, when a path is configured,
// appended to a size-rotated log file.
type ErrorLog struct {
	mu      sync.Mutex
	entries []string
	sink    io.WriteCloser
}

// NewErrorLog creates an ErrorLog. An empty path keeps the log in-memory only.
func NewErrorLog(path string) *ErrorLog {
	el := &ErrorLog{}
	if path != "" {
		el.sink = &lumberjack.Logger{
			Filename:   path,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
		}
	}
	return el
}

// Append records one recovered error.
func (el *ErrorLog) Append(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)

	el.mu.Lock()
	defer el.mu.Unlock()
	el.entries = append(el.entries, msg)
	if el.sink != nil {
		fmt.Fprintf(el.sink, "%s %s\n", time.Now().Format(time.RFC3339), msg)
	}
}

// Entries returns a copy of everything recorded so far.
func (el *ErrorLog) Entries() []string {
	el.mu.Lock()
	defer el.mu.Unlock()
	out := make([]string, len(el.entries))
	copy(out, el.entries)
	return out
}

// Close releases the file sink, if any.
func (el *ErrorLog) Close() error {
	el.mu.Lock()
	defer el.mu.Unlock()
	if el.sink == nil {
		return nil
	}
	return el.sink.Close()
}
