package interaction

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateStateNoOpWhenUnchanged(t *testing.T) {
	m := New(DefaultCueConfig())
	changed := m.UpdateState(Idle, "")
	assert.False(t, changed)
}

func TestUpdateStateReturnsTrueOnTransition(t *testing.T) {
	m := New(DefaultCueConfig())
	changed := m.UpdateState(Listening, "user started speaking")
	assert.True(t, changed)
	assert.Equal(t, Listening, m.StateNow())
}

func TestZeroDelayCueFiresImmediately(t *testing.T) {
	m := New(DefaultCueConfig())
	var mu sync.Mutex
	var got State
	fired := make(chan struct{}, 1)
	m.SetGestureHandler(func(s State) {
		mu.Lock()
		got = s
		mu.Unlock()
		fired <- struct{}{}
	})

	m.UpdateState(Listening, "")

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("gesture handler never fired")
	}
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, Listening, got)
}

func TestDelayedCueFiresAfterConfiguredDelay(t *testing.T) {
	cfg := DefaultCueConfig()
	cfg.MinStateDurationMs = 0
	m := New(cfg)
	fired := make(chan State, 1)
	m.SetGestureHandler(func(s State) { fired <- s })

	start := time.Now()
	m.UpdateState(Thinking, "")

	select {
	case s := <-fired:
		assert.Equal(t, Thinking, s)
		assert.GreaterOrEqual(t, time.Since(start), 140*time.Millisecond)
	case <-time.After(time.Second):
		t.Fatal("gesture handler never fired")
	}
}

func TestPendingCueCanceledByNewTransition(t *testing.T) {
	cfg := DefaultCueConfig()
	cfg.MinStateDurationMs = 0
	m := New(cfg)
	var mu sync.Mutex
	var calls []State
	m.SetGestureHandler(func(s State) {
		mu.Lock()
		calls = append(calls, s)
		mu.Unlock()
	})

	m.UpdateState(Thinking, "")
	m.UpdateState(Speaking, "")

	time.Sleep(250 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.NotContains(t, calls, Thinking, "pending thinking cue should have been canceled")
}

func TestCuesDisabledSuppressesDispatch(t *testing.T) {
	cfg := DefaultCueConfig()
	cfg.CuesEnabled = false
	m := New(cfg)
	called := false
	m.SetGestureHandler(func(State) { called = true })

	changed := m.UpdateState(Listening, "")
	require.True(t, changed)
	time.Sleep(20 * time.Millisecond)
	assert.False(t, called)
}

func TestMinStateDurationSuppressesRapidCues(t *testing.T) {
	cfg := DefaultCueConfig()
	cfg.MinStateDurationMs = 10_000
	m := New(cfg)
	var mu sync.Mutex
	calls := 0
	m.SetGestureHandler(func(State) {
		mu.Lock()
		calls++
		mu.Unlock()
	})

	m.UpdateState(Listening, "")
	time.Sleep(20 * time.Millisecond)
	mu.Lock()
	first := calls
	mu.Unlock()
	require.Equal(t, 1, first)

	m.UpdateState(Speaking, "")
	time.Sleep(20 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, calls, "second cue suppressed: within min_state_duration of the last cue")
}
