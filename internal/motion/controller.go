package motion

import (
	"container/heap"
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	// Acceleration ceilings (deg/s^2), matching the reference tuning.
	panAccelDegPerSec2  = 600.0
	tiltAccelDegPerSec2 = 400.0
	// tiltStepDegPerTick is tilt's fixed per-tick velocity ceiling
	// (degrees/ms expressed as deg-per-tick then divided by dt).
	tiltStepDegPerTick = 1.5
	// positionEps is how close current must be to target to call a frame
	// "at destination".
	positionEps = 0.5

	defaultTickPeriod   = 20 * time.Millisecond
	defaultTransitionMs = 1500
)

// Config tunes the controller's tick cadence and failure behavior.
type Config struct {
	TickPeriod          time.Duration // defaults to 20ms
	FailOpenOnDeadline  bool
	TransitionMs        int // duration of the home/sit pose sweeps
}

// Controller is the singleton-turned-injected owner of the servo table and
// the pending action queue. All servo writes happen exclusively from its
// own tick goroutine; add_action_to_queue is the only thread-safe entry
// point other goroutines may call concurrently with the tick loop.
type Controller struct {
	registry Registry
	cfg      Config

	queueMu sync.Mutex
	queue   actionHeap

	current      *Action
	currentPos   map[string]float64
	axisV        map[string]*AxisVelocity

	moving   atomic.Bool
	stopCh   chan struct{}
	doneCh   chan struct{}
	running  atomic.Bool

	tickJitterMu sync.Mutex
	tickJitter   []time.Duration
}

// NewController builds a Controller over registry. Axes present in the
// registry are tracked; servos are expected to include at least "pan" and
// "tilt" for the acceleration-limited pan/tilt profile described in §4.E,
// but the controller tracks whatever names the registry exposes.
func NewController(registry Registry, cfg Config) *Controller {
	if cfg.TickPeriod <= 0 {
		cfg.TickPeriod = defaultTickPeriod
	}
	if cfg.TransitionMs <= 0 {
		cfg.TransitionMs = defaultTransitionMs
	}
	c := &Controller{
		registry:   registry,
		cfg:        cfg,
		currentPos: make(map[string]float64),
		axisV:      make(map[string]*AxisVelocity),
	}
	for _, name := range registry.Names() {
		s, _ := registry.Servo(name)
		c.currentPos[name] = s.Read()
		c.axisV[name] = &AxisVelocity{}
	}
	return c
}

func nowMs() int64 { return time.Now().UnixMilli() }

// AddActionToQueue enqueues an Action, thread-safe against concurrent
// callers and the tick loop.
func (c *Controller) AddActionToQueue(a *Action) {
	c.queueMu.Lock()
	defer c.queueMu.Unlock()
	heap.Push(&c.queue, a)
}

// IsMoving reports whether a keyframe is currently being executed
// (edge-triggered on entry/exit of move_to_keyframe, matching
// moving_event in the reference implementation).
func (c *Controller) IsMoving() bool { return c.moving.Load() }

// QueueLen reports the number of pending (not-yet-started) actions.
func (c *Controller) QueueLen() int {
	c.queueMu.Lock()
	defer c.queueMu.Unlock()
	return len(c.queue)
}

func (c *Controller) popReadyAction(now int64) *Action {
	c.queueMu.Lock()
	defer c.queueMu.Unlock()
	if len(c.queue) == 0 || c.queue[0].TimestampMs > now {
		return nil
	}
	a := heap.Pop(&c.queue).(*Action)
	a.ResetFrameTimes()
	return a
}

func (c *Controller) basePose(pan, tilt float64) *Keyframe {
	return &Keyframe{
		Name:            "base",
		Target:          map[string]float64{"pan": pan, "tilt": tilt},
		FinalTargetTime: c.cfg.TransitionMs,
	}
}

// StartControlLoop performs a synchronous home-pose sweep (sit, then
// alert) and then launches the tick loop on a dedicated goroutine. It
// returns once the sweep completes and the loop has started; Stop the
// loop with StopControlLoop.
func (c *Controller) StartControlLoop(ctx context.Context) {
	if c.running.Load() {
		return
	}
	c.driveToCompletion(c.basePose(0, -40))
	time.Sleep(time.Second)
	c.driveToCompletion(c.basePose(0, 25))

	c.stopCh = make(chan struct{})
	c.doneCh = make(chan struct{})
	c.running.Store(true)
	go c.tickLoop(ctx)
}

// StopControlLoop signals the tick loop to exit, waits for it, then drives
// to a safe sit pose and relaxes the servo table.
func (c *Controller) StopControlLoop() {
	if !c.running.Load() {
		return
	}
	close(c.stopCh)
	<-c.doneCh
	c.running.Store(false)

	sit := c.basePose(0, -40)
	sit.FinalTargetTime = 1000
	c.driveToCompletion(sit)
	c.relaxAll()
}

func (c *Controller) relaxAll() {
	for _, name := range c.registry.Names() {
		if s, ok := c.registry.Servo(name); ok {
			s.Relax()
		}
	}
}

// driveToCompletion synchronously ticks MoveToKeyframe until it reports
// done, used for the startup/shutdown pose sweeps which must complete
// before the async tick loop takes over (or before final relaxation).
func (c *Controller) driveToCompletion(frame *Keyframe) {
	for !c.MoveToKeyframe(frame) {
		time.Sleep(c.cfg.TickPeriod)
	}
}

func (c *Controller) tickLoop(ctx context.Context) {
	defer close(c.doneCh)
	next := time.Now()
	for {
		select {
		case <-c.stopCh:
			return
		case <-ctx.Done():
			return
		default:
		}

		now := time.Now()
		for now.After(next) || now.Equal(next) {
			c.safeUpdatePose()
			c.recordJitter(now.Sub(next))
			next = next.Add(c.cfg.TickPeriod)
			now = time.Now()
		}
		time.Sleep(time.Millisecond)
	}
}

func (c *Controller) recordJitter(d time.Duration) {
	c.tickJitterMu.Lock()
	defer c.tickJitterMu.Unlock()
	c.tickJitter = append(c.tickJitter, d)
	if len(c.tickJitter) > 100 {
		c.tickJitter = c.tickJitter[1:]
	}
}

// safeUpdatePose runs UpdatePose and recovers from any panic, matching the
// reference implementation's "log and retry next tick" failure model for
// hardware errors in the control loop.
func (c *Controller) safeUpdatePose() {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("motion_tick_panic_recovered")
		}
	}()
	c.updatePose()
}

func (c *Controller) updatePose() {
	if c.current == nil {
		c.current = c.popReadyAction(nowMs())
	}
	if c.current == nil {
		return
	}
	frame := c.current.CurrentFrame()
	if frame == nil {
		c.current = c.popReadyAction(nowMs())
		return
	}
	if c.MoveToKeyframe(frame) {
		c.current.Advance()
		if c.current.Done() {
			c.current = c.popReadyAction(nowMs())
		}
	}
}

// MoveToKeyframe drives one tick's worth of motion toward frame, writing
// clamped angles to every tracked servo. It initializes the frame on first
// visit, applies the acceleration-limited follower per axis (with the
// pan/tilt-specific velocity ceilings from §4.D/4.E when those axes are
// present), and returns true once the frame is done: either every axis is
// within position tolerance of its target, or — when FailOpenOnDeadline is
// set — the frame's deadline has elapsed regardless of position.
func (c *Controller) MoveToKeyframe(frame *Keyframe) bool {
	c.moving.Store(true)
	now := nowMs()

	if !frame.IsInitialized() {
		frame.init(now, c.currentPos)
		log.Info().Str("frame", frame.Name).Int("duration_ms", frame.FinalTargetTime).
			Msg("motion_frame_started")
	}

	dtS := float64(c.cfg.TickPeriod) / float64(time.Second)
	atDest := true
	for axis, target := range frame.Target {
		current := c.currentPos[axis]
		v := c.axisVelocity(axis)

		vMax, aMax := c.axisLimits(axis, dtS, target-current)
		next := LimitStep(current, target, v, dtS, vMax, aMax, 0.05)

		c.currentPos[axis] = next
		if s, ok := c.registry.Servo(axis); ok {
			s.Write(clamp(next, s.MinAngle(), s.MaxAngle()))
		}
		if abs(next-target) > positionEps {
			atDest = false
		}
	}

	done := c.frameDone(frame, atDest, now)
	if done {
		for axis, target := range frame.Target {
			c.currentPos[axis] = target
			if s, ok := c.registry.Servo(axis); ok {
				s.Write(clamp(target, s.MinAngle(), s.MaxAngle()))
			}
		}
		c.moving.Store(false)
	}
	return done
}

func (c *Controller) axisVelocity(axis string) *AxisVelocity {
	v, ok := c.axisV[axis]
	if !ok {
		v = &AxisVelocity{}
		c.axisV[axis] = v
	}
	return v
}

func (c *Controller) axisLimits(axis string, dtS, remaining float64) (vMax, aMax float64) {
	switch axis {
	case "pan":
		return ScaledPanStep(remaining) / dtS, panAccelDegPerSec2
	case "tilt":
		return tiltStepDegPerTick / dtS, tiltAccelDegPerSec2
	default:
		return tiltStepDegPerTick / dtS, tiltAccelDegPerSec2
	}
}

func (c *Controller) frameDone(frame *Keyframe, atDest bool, nowMs int64) bool {
	if atDest || !frame.hasDeadline() {
		return atDest
	}
	if c.cfg.FailOpenOnDeadline && nowMs >= frame.deadlineMs {
		log.Warn().Str("frame", frame.Name).Msg("motion_frame_missed_deadline_advancing")
		return true
	}
	return false
}

// CurrentPosition returns a copy of the controller's tracked servo
// positions, safe to call from any goroutine (best-effort consistency; the
// tick loop may be mutating it concurrently, matching the reference
// implementation's unsynchronized reads of current_servo_position).
func (c *Controller) CurrentPosition() map[string]float64 {
	out := make(map[string]float64, len(c.currentPos))
	for k, v := range c.currentPos {
		out[k] = v
	}
	return out
}
