// Package injector implements the background event injector (§4.K): it
// drains the event bus into the realtime session's inject callback,
// dropping expired events and rate-limiting non-critical events by
// dedupe key.
package injector

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"theo/internal/eventbus"
)

// InjectFunc delivers a single bus event into the realtime session. A
// returned error is logged; the injector continues with the next event.
type InjectFunc func(ctx context.Context, event eventbus.Event) error

// ReadyFunc reports whether the session is currently ready to receive
// injected events.
type ReadyFunc func() bool

// Config tunes the injector's polling and cooldown behavior.
type Config struct {
	// PollInterval is how often the injector checks ReadyFunc while the
	// session is not yet ready, and how long GetNext blocks per poll.
	PollInterval time.Duration
	// DefaultCooldown applies to events that don't carry their own
	// Cooldown, when they carry a DedupeKey.
	DefaultCooldown time.Duration
}

// Injector runs the background drain loop.
type Injector struct {
	bus    *eventbus.Bus
	ready  ReadyFunc
	inject InjectFunc
	config Config

	mu            sync.Mutex
	lastSentByKey map[string]time.Time
}

// New constructs an Injector.
func New(bus *eventbus.Bus, ready ReadyFunc, inject InjectFunc, config Config) *Injector {
	if config.PollInterval <= 0 {
		config.PollInterval = 100 * time.Millisecond
	}
	return &Injector{
		bus:           bus,
		ready:         ready,
		inject:        inject,
		config:        config,
		lastSentByKey: make(map[string]time.Time),
	}
}

// Run drains the bus until ctx is canceled. It waits for the session to
// become ready before attempting to pop an event; once popped, an event is
// dropped if expired, dropped if its dedupe key is on cooldown (unless
// priority is critical), otherwise delivered via inject.
func (i *Injector) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		if !i.ready() {
			select {
			case <-ctx.Done():
				return
			case <-time.After(i.config.PollInterval):
			}
			continue
		}

		event, ok := i.bus.GetNext(i.config.PollInterval)
		if !ok {
			continue
		}

		i.process(ctx, event)
	}
}

func (i *Injector) process(ctx context.Context, event eventbus.Event) {
	now := time.Now()

	if event.IsExpired(now) {
		log.Debug().Str("source", event.Source).Str("kind", event.Kind).Msg("injector_dropped_expired")
		return
	}

	if event.DedupeKey != "" && event.Priority != eventbus.PriorityCritical {
		if i.onCooldown(event, now) {
			log.Debug().Str("dedupe_key", event.DedupeKey).Msg("injector_dropped_cooldown")
			return
		}
	}

	if err := i.inject(ctx, event); err != nil {
		log.Error().Err(err).Str("source", event.Source).Str("kind", event.Kind).Msg("injector_inject_failed")
		return
	}

	if event.DedupeKey != "" {
		i.mu.Lock()
		i.lastSentByKey[event.DedupeKey] = now
		i.mu.Unlock()
	}
}

func (i *Injector) onCooldown(event eventbus.Event, now time.Time) bool {
	cooldown := event.Cooldown
	if cooldown <= 0 {
		cooldown = i.config.DefaultCooldown
	}
	if cooldown <= 0 {
		return false
	}

	i.mu.Lock()
	defer i.mu.Unlock()
	last, ok := i.lastSentByKey[event.DedupeKey]
	if !ok {
		return false
	}
	return now.Sub(last) < cooldown
}
