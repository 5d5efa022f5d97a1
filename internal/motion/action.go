package motion

// Action is a prioritized, time-stamped sequence of keyframes scheduled on
// the motion controller. Keyframes within one action always execute in
// link order; the action completes once the cursor advances past the tail.
type Action struct {
	Priority    int
	TimestampMs int64
	Name        string

	head    *Keyframe
	current *Keyframe
}

// NewAction builds an Action whose cursor starts at head.
func NewAction(priority int, timestampMs int64, name string, head *Keyframe) *Action {
	return &Action{Priority: priority, TimestampMs: timestampMs, Name: name, head: head, current: head}
}

// CurrentFrame returns the keyframe the scheduler should be driving toward,
// or nil once the action has completed.
func (a *Action) CurrentFrame() *Keyframe { return a.current }

// Advance moves the cursor to the next keyframe in the chain.
func (a *Action) Advance() { a.current = a.current.Next }

// Done reports whether the cursor has advanced past the tail.
func (a *Action) Done() bool { return a.current == nil }

// ResetFrameTimes clears initialization/timing state on every keyframe in
// the chain, called when an action is popped off the queue so a previously
// built (but not-yet-run, or re-queued) action starts its timing fresh.
func (a *Action) ResetFrameTimes() {
	for f := a.head; f != nil; f = f.Next {
		f.resetTiming()
	}
	a.current = a.head
}

// actionHeap is a container/heap.Interface ordering Actions by
// (-priority, timestamp): higher priority first, ties broken by earlier
// enqueue time.
type actionHeap []*Action

func (h actionHeap) Len() int { return len(h) }

func (h actionHeap) Less(i, j int) bool {
	if h[i].Priority != h[j].Priority {
		return h[i].Priority > h[j].Priority
	}
	return h[i].TimestampMs < h[j].TimestampMs
}

func (h actionHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *actionHeap) Push(x any) {
	*h = append(*h, x.(*Action))
}

func (h *actionHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return item
}
