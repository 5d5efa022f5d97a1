// Package vision implements the camera change detection policy (§4.G): an
// EMA-smoothed, hysteresis-and-debounce gated state machine over the
// frame-to-frame mean absolute difference signal.
package vision

// InterestState is the camera change policy's two-valued state.
type InterestState int

const (
	Boring InterestState = iota
	Interesting
)

func (s InterestState) String() string {
	if s == Interesting {
		return "interesting"
	}
	return "boring"
}

// Config tunes the policy. Defaults match the reference tuning in §4.G.
type Config struct {
	TriggerThreshold float64
	ClearThreshold   float64
	DebounceFrames   int
	CooldownSeconds  float64
	EMAAlpha         float64
}

// DefaultConfig returns the typical tuning named in §4.G.
func DefaultConfig() Config {
	return Config{
		TriggerThreshold: 25.0,
		ClearThreshold:   15.0,
		DebounceFrames:   3,
		CooldownSeconds:  10.0,
		EMAAlpha:         0.3,
	}
}

// Result is the outcome of a single Update call.
type Result struct {
	MAD               float64
	EMAMAD            float64
	State             InterestState
	StateChanged      bool
	DebounceCount     int
	Promoted          bool
	CooldownRemaining float64
}

// CameraChangePolicy is the boring/interesting promotion state machine.
type CameraChangePolicy struct {
	config        Config
	state         InterestState
	emaMAD        float64
	haveEMA       bool
	debounceCount int
	cooldownUntil float64
}

// New constructs a policy in the Boring state.
func New(config Config) *CameraChangePolicy {
	return &CameraChangePolicy{config: config, state: Boring}
}

// State returns the policy's current state.
func (p *CameraChangePolicy) State() InterestState { return p.state }

// Reset returns the policy to its initial Boring state.
func (p *CameraChangePolicy) Reset() {
	p.state = Boring
	p.haveEMA = false
	p.emaMAD = 0
	p.debounceCount = 0
	p.cooldownUntil = 0
}

// Update folds a new MAD sample into the EMA and advances the state machine.
func (p *CameraChangePolicy) Update(mad float64, nowS float64) Result {
	if !p.haveEMA {
		p.emaMAD = mad
		p.haveEMA = true
	} else {
		alpha := p.config.EMAAlpha
		p.emaMAD = alpha*mad + (1.0-alpha)*p.emaMAD
	}

	debounceFrames := p.config.DebounceFrames
	if debounceFrames < 1 {
		debounceFrames = 1
	}

	promoted := false
	stateChanged := false

	switch p.state {
	case Boring:
		if p.emaMAD >= p.config.TriggerThreshold {
			p.debounceCount++
			if p.debounceCount >= debounceFrames {
				p.state = Interesting
				stateChanged = true
				p.debounceCount = 0
				if nowS >= p.cooldownUntil {
					promoted = true
					p.cooldownUntil = nowS + p.config.CooldownSeconds
				}
			}
		} else {
			p.debounceCount = 0
		}
	case Interesting:
		if p.emaMAD <= p.config.ClearThreshold {
			p.debounceCount++
			if p.debounceCount >= debounceFrames {
				p.state = Boring
				stateChanged = true
				p.debounceCount = 0
			}
		} else {
			p.debounceCount = 0
		}
	}

	cooldownRemaining := p.cooldownUntil - nowS
	if cooldownRemaining < 0 {
		cooldownRemaining = 0
	}

	return Result{
		MAD:               mad,
		EMAMAD:            p.emaMAD,
		State:             p.state,
		StateChanged:      stateChanged,
		DebounceCount:     p.debounceCount,
		Promoted:          promoted,
		CooldownRemaining: cooldownRemaining,
	}
}
