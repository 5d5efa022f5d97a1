// Package stimuli implements the debounced coalescing coordinator (§4.I):
// injected triggers are merged by name over a debounce window and emitted
// as a single summarized event.
package stimuli

import (
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Summary is the coalesced payload handed to the emit callback.
type Summary struct {
	EventCount      int
	Triggers        []string
	Counts          map[string]int
	LatestMetadata  map[string]map[string]any
	DebounceWindowS float64
}

// EmitFunc delivers the chosen trigger and its coalesced summary.
type EmitFunc func(trigger string, summary Summary)

type stimulusEvent struct {
	trigger   string
	timestamp time.Time
	priority  int
	metadata  map[string]any
	count     int
}

// Coordinator coalesces enqueued stimuli over a debounce window, dropping
// low-priority stimuli while a cooldown from the last emission is active.
type Coordinator struct {
	debounceWindow time.Duration
	cooldown       time.Duration
	emit           EmitFunc
	now            func() time.Time

	mu       sync.Mutex
	queue    map[string]*stimulusEvent
	order    []string
	pending  bool
	lastEmit time.Time
	haveEmit bool
}

// New constructs a Coordinator. emit is invoked on its own goroutine once
// per debounce cycle; it must not block indefinitely.
func New(debounceWindow, cooldown time.Duration, emit EmitFunc) *Coordinator {
	return &Coordinator{
		debounceWindow: maxDuration(0, debounceWindow),
		cooldown:       maxDuration(0, cooldown),
		emit:           emit,
		now:            time.Now,
		queue:          make(map[string]*stimulusEvent),
	}
}

func maxDuration(a, b time.Duration) time.Duration {
	if a > b {
		return a
	}
	return b
}

// Enqueue merges a trigger into the pending batch. priority <= 0 stimuli are
// dropped outright while a cooldown from the last emission is in effect.
func (c *Coordinator) Enqueue(trigger string, metadata map[string]any, priority int) {
	now := c.now()

	c.mu.Lock()
	if c.cooldown > 0 && priority <= 0 && c.haveEmit {
		elapsed := now.Sub(c.lastEmit)
		if elapsed < c.cooldown {
			c.mu.Unlock()
			log.Info().Str("trigger", trigger).Dur("remaining", c.cooldown-elapsed).
				Msg("stimulus_dropped_cooldown")
			return
		}
	}

	if existing, ok := c.queue[trigger]; ok {
		existing.timestamp = now
		existing.metadata = metadata
		existing.count++
		if priority > existing.priority {
			existing.priority = priority
		}
	} else {
		c.queue[trigger] = &stimulusEvent{
			trigger:   trigger,
			timestamp: now,
			priority:  priority,
			metadata:  metadata,
			count:     1,
		}
		c.order = append(c.order, trigger)
	}

	needsSpawn := !c.pending
	if needsSpawn {
		c.pending = true
	}
	c.mu.Unlock()

	if needsSpawn {
		go c.debounceAndEmit()
	}
}

func (c *Coordinator) debounceAndEmit() {
	if c.debounceWindow > 0 {
		time.Sleep(c.debounceWindow)
	}

	c.mu.Lock()
	if len(c.queue) == 0 {
		c.pending = false
		c.mu.Unlock()
		return
	}
	events := make([]*stimulusEvent, 0, len(c.order))
	for _, key := range c.order {
		if ev, ok := c.queue[key]; ok {
			events = append(events, ev)
		}
	}
	c.queue = make(map[string]*stimulusEvent)
	c.order = nil
	c.mu.Unlock()

	chosen := chooseEvent(events)
	summary := buildSummary(events, c.debounceWindow)
	c.emit(chosen.trigger, summary)

	c.mu.Lock()
	c.lastEmit = c.now()
	c.haveEmit = true
	if len(c.queue) > 0 {
		c.mu.Unlock()
		c.debounceAndEmit()
		return
	}
	c.pending = false
	c.mu.Unlock()
}

func chooseEvent(events []*stimulusEvent) *stimulusEvent {
	best := events[0]
	for _, ev := range events[1:] {
		if ev.priority > best.priority || (ev.priority == best.priority && ev.timestamp.After(best.timestamp)) {
			best = ev
		}
	}
	return best
}

func buildSummary(events []*stimulusEvent, debounceWindow time.Duration) Summary {
	counts := make(map[string]int, len(events))
	latest := make(map[string]map[string]any, len(events))
	triggers := make([]string, 0, len(events))
	total := 0
	for _, ev := range events {
		counts[ev.trigger] = ev.count
		latest[ev.trigger] = ev.metadata
		triggers = append(triggers, ev.trigger)
		total += ev.count
	}
	sort.Strings(triggers)
	return Summary{
		EventCount:      total,
		Triggers:        triggers,
		Counts:          counts,
		LatestMetadata:  latest,
		DebounceWindowS: debounceWindow.Seconds(),
	}
}
