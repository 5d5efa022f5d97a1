package alerts

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"theo/internal/eventbus"
)

func TestEmitMapsSeverityToPriority(t *testing.T) {
	p := New(time.Minute, 2*time.Minute)
	bus := eventbus.New(10)
	now := time.Now()

	ok := p.Emit(bus, Alert{Key: "battery", Message: "low", Severity: "critical"}, now)
	require.True(t, ok)
	e, found := bus.GetNext(0)
	require.True(t, found)
	assert.Equal(t, eventbus.PriorityCritical, e.Priority)
	assert.True(t, e.RequestResponse)
}

func TestEmitSuppressedWithinCooldown(t *testing.T) {
	p := New(time.Minute, 2*time.Minute)
	bus := eventbus.New(10)
	now := time.Now()

	assert.True(t, p.Emit(bus, Alert{Key: "imu", Message: "tilt", Severity: "warning"}, now))
	assert.False(t, p.Emit(bus, Alert{Key: "imu", Message: "tilt again", Severity: "warning"}, now.Add(time.Second)))
	assert.True(t, p.Emit(bus, Alert{Key: "imu", Message: "tilt third", Severity: "warning"}, now.Add(2*time.Minute)))
}

func TestBatteryEnterWarningRequestsResponseSteadyDoesNot(t *testing.T) {
	// End-to-end scenario #4: first transition requests a response, the
	// steady-state repeat does not.
	p := New(0, time.Minute)
	bus := eventbus.New(10)
	now := time.Now()

	reqTrue := true
	reqFalse := false
	assert.True(t, p.Emit(bus, Alert{
		Key: "battery-status", Message: "entering warning", Severity: "warning",
		RequestResponse: &reqTrue,
	}, now))
	e, _ := bus.GetNext(0)
	assert.True(t, e.RequestResponse)

	assert.True(t, p.Emit(bus, Alert{
		Key: "battery-status", Message: "steady warning", Severity: "warning",
		RequestResponse: &reqFalse,
	}, now.Add(time.Millisecond)))
	e2, _ := bus.GetNext(0)
	assert.False(t, e2.RequestResponse)
}
