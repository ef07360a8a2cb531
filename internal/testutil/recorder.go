package testutil

import (
	"strings"
	"sync"
)

// Recorder is an in-memory line sink that satisfies session.Sender.
type Recorder struct {
	mu    sync.Mutex
	lines []string
}

// WriteLine records text.
func (r *Recorder) WriteLine(text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = append(r.lines, text)
	return nil
}

// Lines returns a copy of everything recorded so far.
func (r *Recorder) Lines() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.lines...)
}

// Last returns the most recent line, or "" if nothing was recorded.
func (r *Recorder) Last() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.lines) == 0 {
		return ""
	}
	return r.lines[len(r.lines)-1]
}

// Contains reports whether any recorded line contains substr.
func (r *Recorder) Contains(substr string) bool {
	for _, l := range r.Lines() {
		if strings.Contains(l, substr) {
			return true
		}
	}
	return false
}

// Reset discards everything recorded.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = nil
}
