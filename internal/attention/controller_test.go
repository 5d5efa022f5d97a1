package attention

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepeatedMADPromotesCurious(t *testing.T) {
	// End-to-end scenario #2.
	c := New(Config{
		Enabled:        true,
		MADRepeatCount: 2,
		MADWindowMs:    500,
	})

	s1 := c.Update(1000, true, nil)
	assert.Equal(t, Idle, s1)

	s2 := c.Update(1200, true, nil)
	assert.Equal(t, Curious, s2)
}

func TestInterestingDetectionPromotesCuriousImmediately(t *testing.T) {
	c := New(DefaultConfig())
	state := c.Update(0, false, []Detection{{Label: "person", Confidence: 0.9}})
	assert.Equal(t, Curious, state)
}

func TestBelowConfidenceThresholdIsNotInteresting(t *testing.T) {
	c := New(DefaultConfig())
	state := c.Update(0, false, []Detection{{Label: "person", Confidence: 0.1}})
	assert.Equal(t, Idle, state)
}

func TestCuriousPromotesToEngagedAfterConfirmDuration(t *testing.T) {
	c := New(Config{Enabled: true, EngageConfirmMs: 1200, MADRepeatCount: 2, MADWindowMs: 500})
	c.Update(0, false, []Detection{{Label: "person", Confidence: 0.9}})
	require.Equal(t, Curious, c.StateNow())

	still := c.Update(1000, false, []Detection{{Label: "person", Confidence: 0.9}})
	assert.Equal(t, Curious, still)

	now := c.Update(1200, false, []Detection{{Label: "person", Confidence: 0.9}})
	assert.Equal(t, Engaged, now)
}

func TestCuriousTimesOutToIdleWithoutInterest(t *testing.T) {
	c := New(Config{Enabled: true, CuriousTimeoutMs: 3000, MADRepeatCount: 2, MADWindowMs: 500})
	c.Update(0, false, []Detection{{Label: "person", Confidence: 0.9}})
	require.Equal(t, Curious, c.StateNow())

	state := c.Update(3000, false, nil)
	assert.Equal(t, Idle, state)
}

func TestEngagedDropsToCooldownWhenQuiet(t *testing.T) {
	c := New(Config{Enabled: true, EngageConfirmMs: 0, MADRepeatCount: 2, MADWindowMs: 500})
	c.Update(0, false, []Detection{{Label: "person", Confidence: 0.9}})
	c.Update(0, false, []Detection{{Label: "person", Confidence: 0.9}})
	require.Equal(t, Engaged, c.StateNow())

	state := c.Update(100, false, nil)
	assert.Equal(t, Cooldown, state)
}

func TestCooldownReengagesWithinWindow(t *testing.T) {
	c := New(Config{Enabled: true, EngageConfirmMs: 0, CooldownReengageWindowMs: 1500, MADRepeatCount: 2, MADWindowMs: 500})
	c.Update(0, false, []Detection{{Label: "person", Confidence: 0.9}})
	c.Update(0, false, []Detection{{Label: "person", Confidence: 0.9}})
	require.Equal(t, Engaged, c.StateNow())
	c.Update(100, false, nil)
	require.Equal(t, Cooldown, c.StateNow())

	state := c.Update(200, false, []Detection{{Label: "person", Confidence: 0.9}})
	assert.Equal(t, Engaged, state)
}

func TestCooldownExpiresToIdle(t *testing.T) {
	c := New(Config{Enabled: true, EngageConfirmMs: 0, CooldownTimeoutMs: 3500, MADRepeatCount: 2, MADWindowMs: 500})
	c.Update(0, false, []Detection{{Label: "person", Confidence: 0.9}})
	c.Update(0, false, []Detection{{Label: "person", Confidence: 0.9}})
	c.Update(100, false, nil)
	require.Equal(t, Cooldown, c.StateNow())

	state := c.Update(100+3500, false, nil)
	assert.Equal(t, Idle, state)
}

func TestDisabledControllerAlwaysReportsIdle(t *testing.T) {
	c := New(Config{Enabled: false})
	state := c.Update(0, true, []Detection{{Label: "person", Confidence: 0.99}})
	assert.Equal(t, Idle, state)
}

func TestShouldSendImage(t *testing.T) {
	c := New(DefaultConfig())
	assert.True(t, c.ShouldSendImage(Idle, true, nil))
	assert.True(t, c.ShouldSendImage(Idle, false, []Detection{{Label: "person", Confidence: 0.9}}))
	assert.True(t, c.ShouldSendImage(Curious, false, nil))
	assert.True(t, c.ShouldSendImage(Engaged, false, nil))
	assert.False(t, c.ShouldSendImage(Idle, false, nil))
}

func TestCapturePeriodUsesEngagedPeriodOnlyWhenEngaged(t *testing.T) {
	c := New(Config{Enabled: true, EngagedCapturePeriodMs: 1500})
	assert.Equal(t, int64(1500), c.CapturePeriodMs(Engaged, 4000))
	assert.Equal(t, int64(4000), c.CapturePeriodMs(Idle, 4000))
}

func TestBurstRespectsCooldownAndArming(t *testing.T) {
	c := New(Config{Enabled: true, BurstEnabled: true, BurstCount: 3, BurstCooldownMs: 2500, EngageConfirmMs: 0, MADRepeatCount: 2, MADWindowMs: 500})
	c.Update(0, false, []Detection{{Label: "person", Confidence: 0.9}})
	c.Update(0, false, []Detection{{Label: "person", Confidence: 0.9}})
	require.Equal(t, Engaged, c.StateNow())

	assert.True(t, c.ShouldBurst(Engaged))
	assert.False(t, c.ShouldBurst(Engaged), "burst cooldown should block immediate re-arm")
	assert.Equal(t, 3, c.BurstCount())
}
