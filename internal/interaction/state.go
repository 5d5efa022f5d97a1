// Package interaction implements the interaction state manager (§4.M):
// idle/listening/thinking/speaking transitions that gate gesture and
// earcon cue dispatch behind a minimum state duration and per-state delay.
package interaction

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// State is one of the four interaction-loop phases.
type State string

const (
	Idle      State = "idle"
	Listening State = "listening"
	Thinking  State = "thinking"
	Speaking  State = "speaking"
)

// Handler reacts to a state becoming cue-eligible. Handlers run on their
// own goroutine and must not block the caller.
type Handler func(State)

// CueConfig tunes cue dispatch timing.
type CueConfig struct {
	CuesEnabled        bool
	GestureEnabled     bool
	EarconEnabled      bool
	MinStateDurationMs int64
	CueDelaysMs        map[State]int64
}

// DefaultCueConfig returns the reference per-state delays.
func DefaultCueConfig() CueConfig {
	return CueConfig{
		CuesEnabled:        true,
		GestureEnabled:     true,
		EarconEnabled:      false,
		MinStateDurationMs: 150,
		CueDelaysMs: map[State]int64{
			Idle:      0,
			Listening: 0,
			Thinking:  150,
			Speaking:  0,
		},
	}
}

// Manager tracks the current interaction state and dispatches gesture/
// earcon cues on qualifying transitions.
type Manager struct {
	cueConfig CueConfig

	mu             sync.Mutex
	state          State
	lastTransition time.Time
	lastCueTime    time.Time
	pendingTimer   *time.Timer
	gestureHandler Handler
	earconHandler  Handler
}

// New constructs a Manager starting in the Idle state.
func New(cueConfig CueConfig) *Manager {
	return &Manager{cueConfig: cueConfig, state: Idle, lastTransition: time.Now()}
}

// SetGestureHandler installs (or clears, with nil) the gesture cue handler.
func (m *Manager) SetGestureHandler(h Handler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gestureHandler = h
}

// SetEarconHandler installs (or clears, with nil) the earcon cue handler.
func (m *Manager) SetEarconHandler(h Handler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.earconHandler = h
}

// StateNow returns the current interaction state.
func (m *Manager) StateNow() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// UpdateState transitions to newState. It returns false if newState equals
// the current state (a no-op). On an actual transition it cancels any
// pending cue dispatch, and — if cues are enabled and the minimum state
// duration has elapsed since the last cue — schedules (or immediately
// fires) the cue dispatch for newState.
func (m *Manager) UpdateState(newState State, reason string) bool {
	m.mu.Lock()
	if newState == m.state {
		m.mu.Unlock()
		return false
	}

	now := time.Now()
	last := m.state
	m.state = newState
	m.lastTransition = now

	if m.pendingTimer != nil {
		m.pendingTimer.Stop()
		m.pendingTimer = nil
	}

	logEvent := log.Info().Str("from", string(last)).Str("to", string(newState))
	if reason != "" {
		logEvent = logEvent.Str("reason", reason)
	}
	logEvent.Msg("interaction_state_transition")

	if !m.cueConfig.CuesEnabled {
		m.mu.Unlock()
		return true
	}

	elapsedMs := now.Sub(m.lastCueTime).Milliseconds()
	if !m.lastCueTime.IsZero() && elapsedMs < m.cueConfig.MinStateDurationMs {
		m.mu.Unlock()
		return true
	}

	delayMs := m.cueConfig.CueDelaysMs[newState]
	if delayMs > 0 {
		m.pendingTimer = time.AfterFunc(time.Duration(delayMs)*time.Millisecond, func() {
			m.fireDelayedCue(newState)
		})
		m.mu.Unlock()
		return true
	}

	m.mu.Unlock()
	m.emitCues(newState)
	return true
}

func (m *Manager) fireDelayedCue(state State) {
	m.mu.Lock()
	stillCurrent := m.state == state
	m.mu.Unlock()
	if stillCurrent {
		m.emitCues(state)
	}
}

func (m *Manager) emitCues(state State) {
	m.mu.Lock()
	m.lastCueTime = time.Now()
	gesture := m.gestureHandler
	earcon := m.earconHandler
	gestureOn := m.cueConfig.GestureEnabled
	earconOn := m.cueConfig.EarconEnabled
	m.mu.Unlock()

	if gestureOn && gesture != nil {
		dispatch(gesture, state, "gesture")
	}
	if earconOn && earcon != nil {
		dispatch(earcon, state, "earcon")
	}
}

func dispatch(handler Handler, state State, label string) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Error().Interface("panic", r).Str("cue", label).Str("state", string(state)).
					Msg("cue_handler_panicked")
			}
		}()
		handler(state)
	}()
}
