// Package attention implements the idle/curious/engaged/cooldown attention
// state machine (§4.H) driven by camera MAD changes and object detections.
package attention

import "strings"

// State is one of the four attention modes.
type State int

const (
	Idle State = iota
	Curious
	Engaged
	Cooldown
)

func (s State) String() string {
	switch s {
	case Curious:
		return "curious"
	case Engaged:
		return "engaged"
	case Cooldown:
		return "cooldown"
	default:
		return "idle"
	}
}

// Detection is a single labeled, confidence-scored object detection.
type Detection struct {
	Label      string
	Confidence float64
}

// Config tunes the state machine. Defaults mirror the reference tuning.
type Config struct {
	Enabled                  bool
	CuriousTimeoutMs         int64
	EngageConfirmMs          int64
	CooldownTimeoutMs        int64
	CooldownReengageWindowMs int64
	MADRepeatCount           int
	MADWindowMs              int64
	EngagedCapturePeriodMs   int64
	BurstEnabled             bool
	BurstCount               int
	BurstCooldownMs          int64
	InterestingLabels        []string
	MinConfidence            float64
}

// DefaultConfig returns the reference tuning.
func DefaultConfig() Config {
	return Config{
		Enabled:                  true,
		CuriousTimeoutMs:         3000,
		EngageConfirmMs:          1200,
		CooldownTimeoutMs:        3500,
		CooldownReengageWindowMs: 1500,
		MADRepeatCount:           2,
		MADWindowMs:              1200,
		EngagedCapturePeriodMs:   1500,
		BurstEnabled:             true,
		BurstCount:               3,
		BurstCooldownMs:          2500,
		InterestingLabels:        []string{"person"},
		MinConfidence:            0.45,
	}
}

// Controller is the attention state machine. It is not a singleton: callers
// own their own instance, typically one per running session.
type Controller struct {
	config Config

	state          State
	stateSinceMs   int64
	lastInterestMs int64
	curiousStartMs int64
	madHitsMs      []int64
	lastBurstMs    int64
	burstArmed     bool
}

// New constructs a Controller in the Idle state.
func New(config Config) *Controller {
	return &Controller{config: config, state: Idle, burstArmed: true, lastBurstMs: -config.BurstCooldownMs}
}

// StateNow returns the controller's current state.
func (c *Controller) StateNow() State { return c.state }

// IsInterestingEvent reports whether any detection carries a configured
// label at or above the minimum confidence.
func (c *Controller) IsInterestingEvent(detections []Detection) bool {
	if len(detections) == 0 {
		return false
	}
	labels := make(map[string]struct{}, len(c.config.InterestingLabels))
	for _, l := range c.config.InterestingLabels {
		labels[strings.ToLower(l)] = struct{}{}
	}
	for _, d := range detections {
		if _, ok := labels[strings.ToLower(d.Label)]; ok && d.Confidence >= c.config.MinConfidence {
			return true
		}
	}
	return false
}

// Update folds the current tick's signals into the state machine and
// returns the resulting state.
func (c *Controller) Update(nowMs int64, madChanged bool, detections []Detection) State {
	if !c.config.Enabled {
		c.state = Idle
		return c.state
	}

	interesting := c.IsInterestingEvent(detections)
	if interesting {
		c.lastInterestMs = nowMs
	}
	if madChanged {
		c.madHitsMs = append(c.madHitsMs, nowMs)
	}
	madRepeated := c.hasRepeatedMAD(nowMs)

	switch c.state {
	case Idle:
		if interesting {
			c.curiousStartMs = nowMs
			c.transition(Curious, nowMs)
		} else if madRepeated {
			c.curiousStartMs = nowMs
			c.transition(Curious, nowMs)
		}

	case Curious:
		if interesting && (nowMs-c.curiousStartMs) >= c.config.EngageConfirmMs {
			c.transition(Engaged, nowMs)
		} else if !interesting && (nowMs-c.stateSinceMs) >= c.config.CuriousTimeoutMs {
			c.transition(Idle, nowMs)
		}

	case Engaged:
		if !interesting && !madChanged {
			c.transition(Cooldown, nowMs)
		}

	case Cooldown:
		quietForMs := nowMs - c.stateSinceMs
		if interesting && quietForMs <= c.config.CooldownReengageWindowMs {
			c.transition(Engaged, nowMs)
		} else if quietForMs >= c.config.CooldownTimeoutMs {
			c.transition(Idle, nowMs)
		}
	}

	return c.state
}

// ShouldSendImage reports whether the vision loop should encourage a
// capture/send for this tick.
func (c *Controller) ShouldSendImage(state State, madChanged bool, detections []Detection) bool {
	interesting := c.IsInterestingEvent(detections)
	if !c.config.Enabled {
		return madChanged || interesting
	}
	if madChanged || interesting {
		return true
	}
	return state == Curious || state == Engaged
}

// CapturePeriodMs returns the effective camera loop period for state.
func (c *Controller) CapturePeriodMs(state State, basePeriodMs int64) int64 {
	if !c.config.Enabled {
		return basePeriodMs
	}
	if state == Engaged {
		if c.config.EngagedCapturePeriodMs > 100 {
			return c.config.EngagedCapturePeriodMs
		}
		return 100
	}
	return basePeriodMs
}

// ShouldBurst reports whether a burst capture should arm for state, and
// updates internal burst-cooldown bookkeeping as a side effect.
func (c *Controller) ShouldBurst(state State) bool {
	if !c.config.Enabled || !c.config.BurstEnabled {
		return false
	}
	if state != Engaged {
		c.burstArmed = true
		return false
	}
	if !c.burstArmed {
		return false
	}
	if (c.stateSinceMs - c.lastBurstMs) < c.config.BurstCooldownMs {
		return false
	}
	c.burstArmed = false
	c.lastBurstMs = c.stateSinceMs
	return true
}

// BurstCount returns the number of frames to capture during a burst.
func (c *Controller) BurstCount() int {
	if c.config.BurstCount < 1 {
		return 1
	}
	return c.config.BurstCount
}

func (c *Controller) hasRepeatedMAD(nowMs int64) bool {
	windowStart := nowMs - c.config.MADWindowMs
	i := 0
	for i < len(c.madHitsMs) && c.madHitsMs[i] < windowStart {
		i++
	}
	c.madHitsMs = c.madHitsMs[i:]
	return len(c.madHitsMs) >= c.config.MADRepeatCount
}

func (c *Controller) transition(newState State, nowMs int64) {
	if newState == c.state {
		return
	}
	c.state = newState
	c.stateSinceMs = nowMs
	if newState != Engaged {
		c.burstArmed = true
	}
}
