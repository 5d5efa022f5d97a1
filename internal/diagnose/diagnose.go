// Package diagnose runs a bring-up self-check over the companion core's
// in-process subsystems without requiring attached hardware or a live
// realtime session, matching the teacher's pattern of a standalone
// diagnostics entry point (cmd/agentd's health-check flags) adapted to this
// domain's §6 "--offline --base-dir <path>" contract.
package diagnose

import (
	"context"
	"fmt"
	"time"

	"theo/internal/eventbus"
	"theo/internal/gesture"
	"theo/internal/governance"
	"theo/internal/motion"
)

// Check is the outcome of one self-check.
type Check struct {
	Name string
	OK   bool
	Err  error
}

// Report is the full set of checks run by Run, in execution order.
type Report struct {
	Checks []Check
}

// Passed reports whether every check in the report succeeded.
func (r Report) Passed() bool {
	for _, c := range r.Checks {
		if !c.OK {
			return false
		}
	}
	return true
}

// Options tunes which checks Run performs.
type Options struct {
	// Offline skips any check that would dial the realtime API or another
	// network collaborator; only in-process subsystems are exercised.
	Offline bool
	// BaseDir is the directory diagnostics reads/writes scratch state under.
	// No current check reads it: the gesture check uses an in-memory store.
	BaseDir string
}

// Run exercises the governance layer, event bus, motion controller (over a
// fake in-memory servo backend), and gesture library, and returns a Report
// describing which passed. Every check builds and tears down its own
// scratch subsystems, so it is safe to call repeatedly in one process.
func Run(opts Options) Report {
	var r Report

	r.Checks = append(r.Checks, checkEventBus())
	r.Checks = append(r.Checks, checkGovernance())
	r.Checks = append(r.Checks, checkGestureLibrary())
	r.Checks = append(r.Checks, checkMotionController())

	if opts.Offline {
		r.Checks = append(r.Checks, Check{Name: "realtime_dial", OK: true, Err: nil})
	} else {
		r.Checks = append(r.Checks, checkRealtimeReachability())
	}

	return r
}

func pass(name string) Check            { return Check{Name: name, OK: true} }
func fail(name string, err error) Check { return Check{Name: name, OK: false, Err: err} }

// checkEventBus verifies priority ordering and coalescing on a scratch bus,
// grounded on the same invariants bus_test.go exercises.
func checkEventBus() Check {
	const name = "event_bus"
	bus := eventbus.New(10)
	bus.Publish(eventbus.Event{Source: "low", Priority: eventbus.PriorityLow}, false)
	bus.Publish(eventbus.Event{Source: "critical", Priority: eventbus.PriorityCritical}, false)
	for i := 0; i < 3; i++ {
		bus.Publish(eventbus.Event{Source: "dup", DedupeKey: "scratch", Priority: eventbus.PriorityNormal}, true)
	}
	if bus.Len() != 3 {
		return fail(name, fmt.Errorf("expected 3 queued events after coalescing, got %d", bus.Len()))
	}
	first, delivered := bus.GetNext(0)
	if !delivered || first.Source != "critical" {
		return fail(name, fmt.Errorf("expected critical event first, got %+v (ok=%v)", first, delivered))
	}
	bus.Close()
	return pass(name)
}

// checkGovernance verifies the admission pipeline denies in observe-only and
// approves a cheap tier-0 tool once autonomy is opened up.
func checkGovernance() Check {
	const name = "governance"
	specs := map[string]governance.ToolSpec{
		"get_servo_position": {Tier: 0, Reversible: true, CostHint: governance.CostCheap},
	}
	locked := governance.New(specs, governance.Config{AutonomyLevel: "observe-only"})
	action := locked.BuildActionPacket("get_servo_position", "diag-1", nil)
	if !locked.Review(action).Denied() {
		return fail(name, fmt.Errorf("observe-only autonomy did not deny a tool call"))
	}

	opened := governance.New(specs, governance.Config{AutonomyLevel: "act-with-bounds", ToolCallsPerMinute: 5})
	decision := opened.Review(opened.BuildActionPacket("get_servo_position", "diag-2", nil))
	if !decision.Approved() {
		return fail(name, fmt.Errorf("act-with-bounds did not approve a tier-0 cheap tool: %s", decision.Reason))
	}
	return pass(name)
}

// checkGestureLibrary loads the default gesture set over an in-memory store
// and resolves one built-in gesture into a motion Action.
func checkGestureLibrary() Check {
	const name = "gesture_library"
	lib, err := gesture.Load(&gesture.InMemoryStore{})
	if err != nil {
		return fail(name, fmt.Errorf("load gesture library: %w", err))
	}
	lib.EnsureDefaults()
	names := lib.ListGestures()
	if len(names) == 0 {
		return fail(name, fmt.Errorf("no default gestures registered"))
	}
	limits := map[string]gesture.ServoLimits{
		"pan":  {Min: -90, Max: 90},
		"tilt": {Min: -45, Max: 45},
	}
	action, err := lib.BuildAction(names[0], 0, 1.0, map[string]float64{"pan": 0, "tilt": 0}, limits, time.Now().UnixMilli())
	if err != nil {
		return fail(name, fmt.Errorf("build action for gesture %q: %w", names[0], err))
	}
	if action == nil {
		return fail(name, fmt.Errorf("gesture %q built a nil action", names[0]))
	}
	return pass(name)
}

// checkMotionController drives a controller over a pair of in-memory servos
// (the fake backend the teacher's tests use) through one queued action and
// confirms the control loop drains it.
func checkMotionController() Check {
	const name = "motion_controller"
	registry := motion.NewMemoryRegistry(
		motion.NewMemoryServo("pan", 0, -90, 90),
		motion.NewMemoryServo("tilt", 0, -45, 45),
	)
	ctrl := motion.NewController(registry, motion.Config{
		TickPeriod:         10 * time.Millisecond,
		FailOpenOnDeadline: true,
		TransitionMs:       200,
	})
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	ctrl.StartControlLoop(ctx)
	defer ctrl.StopControlLoop()

	frame := &motion.Keyframe{Target: map[string]float64{"pan": 20, "tilt": -10}, FinalTargetTime: 100}
	ctrl.AddActionToQueue(motion.NewAction(1, time.Now().UnixMilli(), "diag-sweep", frame))

	deadline := time.Now().Add(500 * time.Millisecond)
	for ctrl.IsMoving() || ctrl.QueueLen() > 0 {
		if time.Now().After(deadline) {
			return fail(name, fmt.Errorf("action did not drain within 500ms"))
		}
		time.Sleep(5 * time.Millisecond)
	}
	return pass(name)
}

// checkRealtimeReachability dials nothing: the composition root owns the
// actual websocket.Dialer and API key. It always reports failure, so a run
// without Offline never passes.
func checkRealtimeReachability() Check {
	return fail("realtime_dial", fmt.Errorf("online diagnostics mode is not implemented: no realtime endpoint was dialed"))
}
