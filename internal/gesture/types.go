// Package gesture implements the named keyframe-sequence library described
// in §4.F: persistent gesture definitions that build intensity-scaled,
// servo-limit-clamped Actions for the motion controller.
package gesture

// FrameSpec is a single keyframe offset within a gesture definition,
// expressed relative to whatever pose the servos are in when the gesture
// is built.
type FrameSpec struct {
	Name       string  `yaml:"name"`
	PanOffset  float64 `yaml:"pan_offset"`
	TiltOffset float64 `yaml:"tilt_offset"`
	DurationMs int     `yaml:"duration_ms"`
}

// Definition is a named, prioritized sequence of FrameSpecs.
type Definition struct {
	Name     string      `yaml:"name"`
	Priority int         `yaml:"priority"`
	Frames   []FrameSpec `yaml:"frames"`
}

// document is the on-disk shape of the gesture library, round-tripped
// through Store.
type document struct {
	Gestures []Definition `yaml:"gestures"`
}
