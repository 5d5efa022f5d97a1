package stimuli

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnqueueCoalescesByTrigger(t *testing.T) {
	emitted := make(chan struct {
		trigger string
		summary Summary
	}, 4)
	c := New(20*time.Millisecond, 0, func(trigger string, summary Summary) {
		emitted <- struct {
			trigger string
			summary Summary
		}{trigger, summary}
	})

	c.Enqueue("motion", map[string]any{"seq": 1}, 0)
	c.Enqueue("motion", map[string]any{"seq": 2}, 0)
	c.Enqueue("sound", map[string]any{"db": 80}, 0)

	select {
	case got := <-emitted:
		assert.Equal(t, 2, got.summary.Counts["motion"])
		assert.Equal(t, 1, got.summary.Counts["sound"])
		assert.Equal(t, 3, got.summary.EventCount)
		assert.Equal(t, map[string]any{"seq": 2}, got.summary.LatestMetadata["motion"])
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for emission")
	}
}

func TestChosenTriggerIsHighestPriorityThenLatest(t *testing.T) {
	emitted := make(chan string, 2)
	c := New(20*time.Millisecond, 0, func(trigger string, _ Summary) {
		emitted <- trigger
	})

	c.Enqueue("low", nil, 0)
	time.Sleep(2 * time.Millisecond)
	c.Enqueue("high", nil, 5)

	select {
	case got := <-emitted:
		assert.Equal(t, "high", got)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for emission")
	}
}

func TestCooldownDropsLowPriorityStimuli(t *testing.T) {
	var mu sync.Mutex
	var emittedTriggers []string
	c := New(5*time.Millisecond, time.Hour, func(trigger string, _ Summary) {
		mu.Lock()
		emittedTriggers = append(emittedTriggers, trigger)
		mu.Unlock()
	})

	c.Enqueue("first", nil, 0)
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(emittedTriggers) == 1
	}, time.Second, time.Millisecond)

	c.Enqueue("second", nil, 0)
	time.Sleep(20 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"first"}, emittedTriggers, "second enqueue should be dropped inside the cooldown window")
}

func TestCooldownDoesNotDropHighPriorityStimuli(t *testing.T) {
	var mu sync.Mutex
	var emittedTriggers []string
	c := New(5*time.Millisecond, time.Hour, func(trigger string, _ Summary) {
		mu.Lock()
		emittedTriggers = append(emittedTriggers, trigger)
		mu.Unlock()
	})

	c.Enqueue("first", nil, 0)
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(emittedTriggers) == 1
	}, time.Second, time.Millisecond)

	c.Enqueue("urgent", nil, 1)
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(emittedTriggers) == 2
	}, time.Second, time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"first", "urgent"}, emittedTriggers)
}

func TestAccumulationDuringDebounceTriggersAnotherPass(t *testing.T) {
	var mu sync.Mutex
	rounds := 0
	c := New(10*time.Millisecond, 0, func(trigger string, summary Summary) {
		mu.Lock()
		rounds++
		mu.Unlock()
		if rounds == 1 {
			c.Enqueue("followup", nil, 0)
		}
	})

	c.Enqueue("initial", nil, 0)

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return rounds >= 2
	}, time.Second, time.Millisecond)
}
