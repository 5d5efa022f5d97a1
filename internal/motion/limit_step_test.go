package motion

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLimitStepSnapsWithinEpsilon(t *testing.T) {
	v := &AxisVelocity{V: 5}
	next := LimitStep(0.99, 1.0, v, 0.1, 1.0, 1.0, 0.05)
	assert.Equal(t, 1.0, next)
	assert.Equal(t, 0.0, v.V)
}

func TestLimitStepRespectsVelocityAndAccelCeilings(t *testing.T) {
	v := &AxisVelocity{}
	next := LimitStep(0, 100, v, 0.1, 1.0, 1.0, 1e-3)
	assert.LessOrEqual(t, next, 1.0*0.1+1e-9)
	assert.LessOrEqual(t, v.V, 1.0+1e-9)
}

func TestLimitStepNeverOvershoots(t *testing.T) {
	// End-to-end scenario #6.
	v := &AxisVelocity{}
	next := LimitStep(0, 1, v, 0.1, 1, 1, 1e-3)
	assert.Greater(t, next, 0.0)
	assert.LessOrEqual(t, next, 1.0)

	for i := 0; i < 50 && next < 1.0; i++ {
		next = LimitStep(next, 1, v, 0.1, 1, 1, 1e-3)
	}
	assert.Equal(t, 1.0, next)
	assert.Equal(t, 0.0, v.V)
}

func TestScaledPanStepRampsWithDistance(t *testing.T) {
	assert.InDelta(t, 0.2, ScaledPanStep(0), 1e-9)
	assert.InDelta(t, 1.6, ScaledPanStep(90), 1e-9)
	assert.InDelta(t, 1.6, ScaledPanStep(200), 1e-9)
	mid := ScaledPanStep(45)
	assert.Greater(t, mid, 0.2)
	assert.Less(t, mid, 1.6)
}
