package motion

// AxisVelocity carries the per-axis velocity state threaded through
// successive LimitStep calls for one servo.
type AxisVelocity struct {
	V float64
}

// clamp restricts x to [lo, hi].
func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

func clamp01(x float64) float64 { return clamp(x, 0, 1) }

// LimitStep is the acceleration-limited velocity follower described in
// §4.D: given the current position, a target, a mutable per-axis velocity
// state, a time step, and velocity/acceleration ceilings, it returns the
// next position for this tick.
//
//  1. If the error is within eps, the axis snaps to target and its stored
//     velocity is cleared.
//  2. Otherwise the desired velocity is the error over dt, clamped to
//     ±vMax.
//  3. The velocity is accelerated toward that desired value by at most
//     aMax*dt, then clamped again to ±vMax.
//  4. The candidate next position is current + v*dt. If taking that step
//     would overshoot the target (the error changes sign, or becomes
//     zero), the axis snaps to target instead and velocity is cleared —
//     overshoot is structurally impossible.
func LimitStep(current, target float64, v *AxisVelocity, dtS, vMax, aMax, eps float64) float64 {
	err := target - current
	if abs(err) <= eps {
		v.V = 0
		return target
	}

	dt := dtS
	if dt < 1e-6 {
		dt = 1e-6
	}
	vDes := clamp(err/dt, -vMax, vMax)

	dvMax := aMax * dtS
	dv := clamp(vDes-v.V, -dvMax, dvMax)
	newV := clamp(v.V+dv, -vMax, vMax)

	next := current + newV*dtS

	if (target-current)*(target-next) <= 0 {
		v.V = 0
		return target
	}

	v.V = newV
	return next
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

// Pan velocity ceilings, matching the reference implementation's tuned
// constants: a slower, more deliberate pan for small corrections and a
// snappier one for large reorientations.
const (
	panStepMinDegPerTick = 0.2
	panStepMaxDegPerTick = 1.6
	panScaleRangeDeg     = 90.0
)

// ScaledPanStep returns the per-tick pan step ceiling for a remaining
// distance distDeg, ramping linearly from panStepMinDegPerTick at zero
// distance up to panStepMaxDegPerTick once the remaining distance reaches
// panScaleRangeDeg or more.
func ScaledPanStep(distDeg float64) float64 {
	ratio := clamp01(abs(distDeg) / panScaleRangeDeg)
	return panStepMinDegPerTick + (panStepMaxDegPerTick-panStepMinDegPerTick)*ratio
}
