package eventbus

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Bus is a thread-safe bounded queue of Events. Publishers may be any
// goroutine; a single consumer (or several) calls GetNext to drain it in
// priority order. The zero value is not usable; construct with New.
type Bus struct {
	mu     sync.Mutex
	cond   *sync.Cond
	maxLen int
	queue  []Event
	closed bool
	mirror *KafkaMirror
}

// SetMirror installs (or clears, with nil) an optional KafkaMirror every
// successful Publish is replayed to, for offline analysis of stimulus
// traffic. Mirroring never blocks or perturbs delivery: it runs on its own
// goroutine and a nil mirror is a no-op.
func (b *Bus) SetMirror(mirror *KafkaMirror) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.mirror = mirror
}

// New returns a Bus bounded to maxLen pending events. A non-positive maxLen
// falls back to 200, matching the reference implementation's default.
func New(maxLen int) *Bus {
	if maxLen <= 0 {
		maxLen = 200
	}
	b := &Bus{maxLen: maxLen}
	b.cond = sync.NewCond(&b.mu)
	return b
}

// Publish appends event to the queue. When coalesce is true and the event
// carries a DedupeKey, any pending event with the same key is removed first
// so at most one instance of it is ever queued. If the queue is already at
// capacity, the oldest pending event is dropped (and a warning logged)
// before the new one is appended.
func (b *Bus) Publish(event Event, coalesce bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	if coalesce && event.DedupeKey != "" {
		b.removeMatchingLocked(event.DedupeKey)
	}
	if len(b.queue) >= b.maxLen {
		dropped := b.queue[0]
		b.queue = b.queue[1:]
		log.Warn().Str("source", dropped.Source).Int("maxlen", b.maxLen).
			Msg("event bus full; dropping oldest event")
	}
	b.queue = append(b.queue, event)
	b.cond.Broadcast()
	mirror := b.mirror
	if mirror != nil {
		go mirror.Record(context.Background(), event)
	}
}

// PublishText is a convenience constructor for simple system messages,
// mirroring the reference implementation's publish_text helper.
func (b *Bus) PublishText(source, kind, content string, priority Priority, metadata map[string]any) {
	b.Publish(Event{
		Source:    source,
		Kind:      kind,
		Priority:  priority,
		Content:   content,
		Metadata:  metadata,
		CreatedAt: time.Now(),
	}, false)
}

// GetNext blocks up to timeout (zero means no timeout) for a pending
// event and returns the highest-priority one, breaking ties by FIFO order.
// It returns (Event{}, false) on timeout, on empty queue after wake, or
// once the bus has been closed with no events left.
func (b *Bus) GetNext(timeout time.Duration) (Event, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.queue) == 0 && !b.closed {
		if timeout <= 0 {
			b.cond.Wait()
		} else {
			b.waitWithTimeoutLocked(timeout)
		}
	}
	if len(b.queue) == 0 {
		return Event{}, false
	}
	return b.popHighestPriorityLocked(), true
}

// waitWithTimeoutLocked waits on the condition variable until the next
// wake-up (Publish, Notify, Close) or until timeout elapses, whichever comes
// first. b.mu must be held on entry and is held on return.
func (b *Bus) waitWithTimeoutLocked(timeout time.Duration) {
	timer := time.AfterFunc(timeout, func() {
		b.mu.Lock()
		b.cond.Broadcast()
		b.mu.Unlock()
	})
	defer timer.Stop()

	b.cond.Wait()
}

// Drain atomically removes and returns every pending event.
func (b *Bus) Drain() []Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := b.queue
	b.queue = nil
	return out
}

// Notify wakes every goroutine blocked in GetNext without publishing
// anything; used to unblock consumers during shutdown.
func (b *Bus) Notify() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cond.Broadcast()
}

// Close marks the bus closed and wakes all waiters. No event published
// after Close takes effect is ever delivered; anything already queued can
// still be drained or fetched via GetNext until it runs dry.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	b.cond.Broadcast()
}

// Len reports the number of pending events.
func (b *Bus) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.queue)
}

func (b *Bus) removeMatchingLocked(dedupeKey string) {
	for i, e := range b.queue {
		if e.DedupeKey == dedupeKey {
			b.queue = append(b.queue[:i], b.queue[i+1:]...)
			return
		}
	}
}

// popHighestPriorityLocked removes and returns the event with the highest
// priority, breaking ties by insertion order (lowest index wins). b.mu must
// be held by the caller.
func (b *Bus) popHighestPriorityLocked() Event {
	if len(b.queue) == 1 {
		e := b.queue[0]
		b.queue = nil
		return e
	}
	bestIdx := 0
	bestScore := Priority(-1)
	for i, e := range b.queue {
		if e.Priority > bestScore {
			bestScore = e.Priority
			bestIdx = i
			if bestScore == PriorityCritical {
				break
			}
		}
	}
	e := b.queue[bestIdx]
	b.queue = append(b.queue[:bestIdx], b.queue[bestIdx+1:]...)
	return e
}
