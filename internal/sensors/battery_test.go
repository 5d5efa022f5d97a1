package sensors

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBatteryInitialSeverityClassification(t *testing.T) {
	m := NewBatteryMonitor(DefaultBatteryConfig())
	status, clear := m.Sample(8.4)
	assert.Equal(t, "info", status.Severity)
	assert.Equal(t, "initial_info", status.Transition)
	assert.Nil(t, clear)
}

func TestBatteryEnterWarningThenSteadyWarning(t *testing.T) {
	m := NewBatteryMonitor(DefaultBatteryConfig())
	_, _ = m.Sample(8.4) // info baseline

	// 50% of [7.0, 8.4] = 7.7V -> warning threshold boundary.
	enter, _ := m.Sample(7.65)
	assert.Equal(t, "warning", enter.Severity)
	assert.Equal(t, "enter_warning", enter.Transition)

	steady, _ := m.Sample(7.64)
	assert.Equal(t, "warning", steady.Severity)
	assert.Equal(t, "steady_warning", steady.Transition)
}

func TestBatteryRecoveryEmitsClearEvent(t *testing.T) {
	m := NewBatteryMonitor(DefaultBatteryConfig())
	_, _ = m.Sample(7.6) // warning
	recovered, clear := m.Sample(8.4)
	assert.Equal(t, "info", recovered.Severity)
	if assert.NotNil(t, clear) {
		assert.Equal(t, "clear", clear.EventType)
	}
}

func TestBatteryRapidDropDetected(t *testing.T) {
	m := NewBatteryMonitor(DefaultBatteryConfig())
	_, _ = m.Sample(8.4)
	dropped, _ := m.Sample(7.0)
	assert.True(t, dropped.RapidDrop)
}

func TestEnteredWarningOrCritical(t *testing.T) {
	assert.True(t, EnteredWarningOrCritical("enter_warning"))
	assert.True(t, EnteredWarningOrCritical("enter_critical"))
	assert.False(t, EnteredWarningOrCritical("steady_warning"))
}
