package vision

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNoisyCameraDoesNotSpam(t *testing.T) {
	// End-to-end scenario #1.
	policy := New(DefaultConfig())
	mads := []float64{20, 26, 21, 27, 22, 25, 19, 24}

	promotions := 0
	for i, mad := range mads {
		result := policy.Update(mad, float64(i))
		if result.Promoted {
			promotions++
		}
	}
	assert.Equal(t, 0, promotions)
}

func TestPromotionRequiresDebounceFrames(t *testing.T) {
	policy := New(Config{TriggerThreshold: 25, ClearThreshold: 15, DebounceFrames: 3, CooldownSeconds: 10, EMAAlpha: 1.0})

	r1 := policy.Update(30, 0)
	assert.False(t, r1.Promoted)
	assert.Equal(t, Boring, r1.State)

	r2 := policy.Update(30, 1)
	assert.False(t, r2.Promoted)

	r3 := policy.Update(30, 2)
	assert.True(t, r3.Promoted)
	assert.True(t, r3.StateChanged)
	assert.Equal(t, Interesting, r3.State)
}

func TestAtMostOnePromotionPerCooldownWindow(t *testing.T) {
	policy := New(Config{TriggerThreshold: 25, ClearThreshold: 15, DebounceFrames: 1, CooldownSeconds: 10, EMAAlpha: 1.0})

	r1 := policy.Update(30, 0)
	assert.True(t, r1.Promoted)

	_ = policy.Update(10, 1)
	r2 := policy.Update(30, 2)
	assert.False(t, r2.Promoted, "state returned to boring then re-triggered, still within cooldown")

	policy2 := New(Config{TriggerThreshold: 25, ClearThreshold: 15, DebounceFrames: 1, CooldownSeconds: 100, EMAAlpha: 1.0})
	first := policy2.Update(30, 0)
	assert.True(t, first.Promoted)
	_ = policy2.Update(10, 1)
	second := policy2.Update(30, 2)
	assert.False(t, second.Promoted, "still inside the 100s cooldown window")
}

func TestInterestingReturnsToBoringBelowClearThreshold(t *testing.T) {
	policy := New(Config{TriggerThreshold: 25, ClearThreshold: 15, DebounceFrames: 2, CooldownSeconds: 10, EMAAlpha: 1.0})
	policy.Update(30, 0)
	policy.Update(30, 1)
	assert.Equal(t, Interesting, policy.State())

	policy.Update(10, 2)
	r := policy.Update(10, 3)
	assert.True(t, r.StateChanged)
	assert.Equal(t, Boring, r.State)
}

func TestDebounceCountResetsOnNonQualifyingSample(t *testing.T) {
	policy := New(Config{TriggerThreshold: 25, ClearThreshold: 15, DebounceFrames: 3, CooldownSeconds: 10, EMAAlpha: 1.0})
	policy.Update(30, 0)
	policy.Update(30, 1)
	r := policy.Update(5, 2)
	assert.Equal(t, 0, r.DebounceCount)
	assert.Equal(t, Boring, r.State)
}

func TestResetReturnsToInitialState(t *testing.T) {
	policy := New(Config{TriggerThreshold: 25, ClearThreshold: 15, DebounceFrames: 1, CooldownSeconds: 10, EMAAlpha: 1.0})
	policy.Update(30, 0)
	assert.Equal(t, Interesting, policy.State())

	policy.Reset()
	assert.Equal(t, Boring, policy.State())
}
