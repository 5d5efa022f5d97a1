package sensors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIMUClassifierDetectsTilt(t *testing.T) {
	c := NewIMUClassifier(DefaultIMUConfig())
	events := c.Classify(IMUSample{TimestampMs: 0, Roll: 60, Pitch: 0})
	require.Len(t, events, 1)
	assert.Equal(t, "tilt", events[0].EventType)
}

func TestIMUClassifierDetectsSpin(t *testing.T) {
	c := NewIMUClassifier(DefaultIMUConfig())
	events := c.Classify(IMUSample{TimestampMs: 0, Gyro: [3]float64{200, 0, 0}})
	require.Len(t, events, 1)
	assert.Equal(t, "spin", events[0].EventType)
}

func TestIMUClassifierDetectsShakeBetweenSamples(t *testing.T) {
	c := NewIMUClassifier(DefaultIMUConfig())
	c.Classify(IMUSample{TimestampMs: 0, Roll: 0, Pitch: 0})
	events := c.Classify(IMUSample{TimestampMs: 600, Roll: 40, Pitch: 0})
	require.Len(t, events, 1)
	assert.Equal(t, "shake", events[0].EventType)
}

func TestIMUClassifierRateLimitsRepeatedEvents(t *testing.T) {
	c := NewIMUClassifier(DefaultIMUConfig())
	first := c.Classify(IMUSample{TimestampMs: 0, Roll: 60})
	require.Len(t, first, 1)
	second := c.Classify(IMUSample{TimestampMs: 100, Roll: 60})
	assert.Empty(t, second, "repeated tilt within min_event_interval_ms should be suppressed")
	third := c.Classify(IMUSample{TimestampMs: 600, Roll: 60})
	assert.Len(t, third, 1)
}
