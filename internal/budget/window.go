// Package budget implements a generic N-per-rolling-window limiter, used
// throughout the core for tool-call, expensive-call, injection-response,
// and research budgets (component B).
package budget

import (
	"sync"
	"time"
)

// Window tracks how many events occurred within the trailing Window
// duration and answers whether another is currently allowed. A Limit of
// zero or less means unlimited — Allow always returns true and Record is a
// no-op, matching the reference RollingWindowBudget.
type Window struct {
	mu         sync.Mutex
	limit      int
	window     time.Duration
	name       string
	timestamps []time.Time
}

// New returns a rolling-window budget of limit events per window. name is
// purely diagnostic (surfaced in logs/metrics).
func New(limit int, window time.Duration, name string) *Window {
	return &Window{limit: limit, window: window, name: name}
}

// Limit returns the configured cap.
func (w *Window) Limit() int { return w.limit }

// WindowDuration returns the configured rolling window.
func (w *Window) WindowDuration() time.Duration { return w.window }

// Name returns the diagnostic name.
func (w *Window) Name() string { return w.name }

// Allow reports whether another event is currently permitted without
// recording one.
func (w *Window) Allow(now time.Time) bool {
	if w.limit <= 0 {
		return true
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.pruneLocked(now)
	return len(w.timestamps) < w.limit
}

// Record prunes expired timestamps and appends now, counting against the
// budget. Callers that want an atomic check-then-record should use
// TryRecord instead.
func (w *Window) Record(now time.Time) {
	if w.limit <= 0 {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.pruneLocked(now)
	w.timestamps = append(w.timestamps, now)
}

// TryRecord atomically checks Allow and, if permitted, Records now in a
// single critical section, preventing a race between separate Allow and
// Record calls under concurrent access.
func (w *Window) TryRecord(now time.Time) bool {
	if w.limit <= 0 {
		return true
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.pruneLocked(now)
	if len(w.timestamps) >= w.limit {
		return false
	}
	w.timestamps = append(w.timestamps, now)
	return true
}

// Remaining returns how many more events are allowed within the window
// right now.
func (w *Window) Remaining(now time.Time) int {
	if w.limit <= 0 {
		return -1
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.pruneLocked(now)
	remaining := w.limit - len(w.timestamps)
	if remaining < 0 {
		remaining = 0
	}
	return remaining
}

func (w *Window) pruneLocked(now time.Time) {
	cutoff := now.Add(-w.window)
	i := 0
	for i < len(w.timestamps) && w.timestamps[i].Before(cutoff) {
		i++
	}
	if i > 0 {
		w.timestamps = w.timestamps[i:]
	}
}
