// Package alerts formats sensor/system alerts into bus events, applying a
// per-key cooldown so a noisy sensor cannot flood the conversation
// (component C).
package alerts

import (
	"strings"
	"sync"
	"time"

	"theo/internal/eventbus"
)

var severityPriority = map[string]eventbus.Priority{
	"critical": eventbus.PriorityCritical,
	"high":     eventbus.PriorityHigh,
	"warning":  eventbus.PriorityHigh,
	"info":     eventbus.PriorityNormal,
	"low":      eventbus.PriorityLow,
}

// Alert is a caller-supplied notification awaiting policy evaluation.
type Alert struct {
	Key             string
	Message         string
	Severity        string // critical | high | warning | info | low
	Metadata        map[string]any
	TTL             time.Duration // zero uses the policy default
	Cooldown        time.Duration // zero uses the policy default
	RequestResponse *bool         // nil defers to severity-based default
	// Source overrides the emitted event's Source field (§3: "battery",
	// "camera", "imu", "alert", "system"). Empty defers to "alert", the
	// policy's own generic-notification source.
	Source string
}

// Policy maps alert severities to bus priorities and throttles repeats of
// the same key via a monotonic last-emitted timestamp.
type Policy struct {
	mu           sync.Mutex
	defaultTTL   time.Duration
	defaultCool  time.Duration
	lastEmitted  map[string]time.Time
}

// Config holds the policy's tunables, normally sourced from the operator
// configuration document.
type Config struct {
	CooldownS float64
	TTLS      float64
}

// New builds a Policy from explicit defaults.
func New(defaultCooldown, defaultTTL time.Duration) *Policy {
	return &Policy{
		defaultTTL:  defaultTTL,
		defaultCool: defaultCooldown,
		lastEmitted: make(map[string]time.Time),
	}
}

// FromConfig builds a Policy from a Config, defaulting to 60s cooldown /
// 120s TTL when unset, matching the reference implementation.
func FromConfig(cfg Config) *Policy {
	cooldown := cfg.CooldownS
	if cooldown <= 0 {
		cooldown = 60.0
	}
	ttl := cfg.TTLS
	if ttl <= 0 {
		ttl = 120.0
	}
	return New(time.Duration(cooldown*float64(time.Second)), time.Duration(ttl*float64(time.Second)))
}

// Emit publishes alert onto bus as a coalescing Event if its key is not
// currently on cooldown. Returns false (without publishing) when
// suppressed.
func (p *Policy) Emit(bus *eventbus.Bus, alert Alert, now time.Time) bool {
	p.mu.Lock()
	cooldown := alert.Cooldown
	if cooldown <= 0 {
		cooldown = p.defaultCool
	}
	if last, ok := p.lastEmitted[alert.Key]; ok && now.Sub(last) < cooldown {
		p.mu.Unlock()
		return false
	}
	p.lastEmitted[alert.Key] = now
	p.mu.Unlock()

	ttl := alert.TTL
	if ttl <= 0 {
		ttl = p.defaultTTL
	}
	severity := strings.ToLower(alert.Severity)
	priority, ok := severityPriority[severity]
	if !ok {
		priority = eventbus.PriorityNormal
	}

	requestResponse := severity == "critical" || severity == "high"
	if alert.RequestResponse != nil {
		requestResponse = *alert.RequestResponse
	}

	metadata := make(map[string]any, len(alert.Metadata)+1)
	metadata["severity"] = severity
	for k, v := range alert.Metadata {
		metadata[k] = v
	}

	source := alert.Source
	if source == "" {
		source = "alert"
	}

	bus.Publish(eventbus.Event{
		Source:          source,
		Kind:            "alert",
		Priority:        priority,
		Content:         alert.Message,
		Metadata:        metadata,
		DedupeKey:       alert.Key,
		TTL:             ttl,
		Cooldown:        cooldown,
		RequestResponse: requestResponse,
		HasRequestResp:  true,
		CreatedAt:       now,
	}, true)
	return true
}
