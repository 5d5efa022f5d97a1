// Package volume implements the output-volume control tools (get/set
// output volume) against an injected Backend, grounded on
// services/output_volume.py's OutputVolumeController: a rate-limited
// setter with an emergency bypass, percent bounds enforced before any
// backend call.
package volume

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Status is the current output volume state.
type Status struct {
	Percent int
	Muted   bool
}

// Backend is the real mixer/ALSA adapter's seam (amixer in the source);
// the actual subprocess call is an external collaborator per §1.
type Backend interface {
	GetVolume(ctx context.Context) (Status, error)
	SetVolume(ctx context.Context, percent int) (Status, error)
}

// Controller enforces the percent bounds and rate limit in front of a
// Backend, matching OutputVolumeController.set_volume.
type Controller struct {
	backend      Backend
	rateLimit    time.Duration
	minPercent   int
	maxPercent   int

	mu          sync.Mutex
	lastSetTime time.Time
	haveSet     bool
}

// Config tunes the controller's bounds and rate limit.
type Config struct {
	MinPercent int
	MaxPercent int
	RateLimit  time.Duration
}

// DefaultConfig returns the §6 bounds (1-100%) and the source's 1s
// non-emergency rate limit.
func DefaultConfig() Config {
	return Config{MinPercent: 1, MaxPercent: 100, RateLimit: time.Second}
}

// New constructs a Controller over backend.
func New(backend Backend, cfg Config) *Controller {
	if cfg.MaxPercent <= 0 {
		cfg.MaxPercent = 100
	}
	if cfg.MinPercent <= 0 {
		cfg.MinPercent = 1
	}
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = time.Second
	}
	return &Controller{backend: backend, minPercent: cfg.MinPercent, maxPercent: cfg.MaxPercent, rateLimit: cfg.RateLimit}
}

// GetVolume reads the current status from the backend.
func (c *Controller) GetVolume(ctx context.Context) (Status, error) {
	return c.backend.GetVolume(ctx)
}

// RetryAfterError reports the remaining rate-limit wait, surfaced to the
// caller as a retry hint per §8's boundary-behavior test.
type RetryAfterError struct {
	RetryAfter time.Duration
}

func (e *RetryAfterError) Error() string {
	return fmt.Sprintf("volume change rate-limited, retry after %.2fs", e.RetryAfter.Seconds())
}

// RangeError reports a requested percent outside [minPercent, maxPercent].
type RangeError struct {
	Percent, Min, Max int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("volume percent must be within %d-%d, got %d", e.Min, e.Max, e.Percent)
}

// SetVolume validates percent against the configured bounds, applies the
// rate limit unless emergency is set, and forwards to the backend.
func (c *Controller) SetVolume(ctx context.Context, percent int, emergency bool) (Status, error) {
	if percent < c.minPercent || percent > c.maxPercent {
		return Status{}, &RangeError{Percent: percent, Min: c.minPercent, Max: c.maxPercent}
	}

	now := time.Now()
	c.mu.Lock()
	if !emergency && c.haveSet {
		elapsed := now.Sub(c.lastSetTime)
		if elapsed < c.rateLimit {
			retryAfter := c.rateLimit - elapsed
			c.mu.Unlock()
			return Status{}, &RetryAfterError{RetryAfter: retryAfter}
		}
	}
	c.lastSetTime = now
	c.haveSet = true
	c.mu.Unlock()

	return c.backend.SetVolume(ctx, percent)
}

// memBackend is an in-memory Backend for tests, matching the reference
// amixer-backed controller's observable shape without a real mixer.
type memBackend struct {
	mu      sync.Mutex
	percent int
	muted   bool
}

// NewMemoryBackend returns a Backend for tests, starting at percent.
func NewMemoryBackend(percent int) Backend {
	return &memBackend{percent: percent}
}

func (m *memBackend) GetVolume(context.Context) (Status, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Status{Percent: m.percent, Muted: m.muted}, nil
}

func (m *memBackend) SetVolume(_ context.Context, percent int) (Status, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.percent = percent
	return Status{Percent: m.percent, Muted: m.muted}, nil
}
