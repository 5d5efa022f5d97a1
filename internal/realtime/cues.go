package realtime

import "theo/internal/interaction"

// CueGestureForState maps an interaction state to the gesture library entry
// name the composition root should queue through the gesture cue handler
// (§4.M "cue dispatch ... gesture and earcon").
func CueGestureForState(state interaction.State) string {
	switch state {
	case interaction.Listening:
		return "attention_snap"
	case interaction.Thinking:
		return "curious_tilt"
	case interaction.Speaking:
		return "nod"
	default:
		return "idle"
	}
}
