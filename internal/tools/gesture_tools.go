package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"theo/internal/gesture"
	"theo/internal/motion"
)

// gestureArgs is the common argument shape for every gesture_* tool,
// matching §6's "delay_ms ≥ 0, intensity ∈ [0.1, 2.0]" contract.
type gestureArgs struct {
	DelayMs   int64   `json:"delay_ms"`
	Intensity float64 `json:"intensity"`
}

func (a *gestureArgs) normalize() {
	if a.DelayMs < 0 {
		a.DelayMs = 0
	}
	if a.Intensity <= 0 {
		a.Intensity = 1.0
	}
	if a.Intensity < 0.1 {
		a.Intensity = 0.1
	}
	if a.Intensity > 2.0 {
		a.Intensity = 2.0
	}
}

var gestureToolNames = []string{"idle", "nod", "no", "look_around", "curious_tilt", "attention_snap"}

// RegisterGestureTools adds one gesture_<name> tool per entry in
// gestureToolNames, each building an Action from the library against the
// controller's current pose and enqueueing it.
func RegisterGestureTools(reg Registry, lib *gesture.Library, controller *motion.Controller, limits map[string]gesture.ServoLimits) {
	for _, name := range gestureToolNames {
		name := name
		reg.Register(NewFuncTool("gesture_"+name, Schema{
			Description: fmt.Sprintf("Play the %q gesture.", name),
			Parameters: objectSchema(map[string]any{
				"delay_ms":  integerProp("Milliseconds to wait before starting the gesture.", n(0), nil),
				"intensity": numberProp("Scale factor applied to the gesture's offsets.", f(0.1), f(2.0)),
			}),
		}, func(ctx context.Context, raw json.RawMessage) (any, error) {
			var args gestureArgs
			if len(raw) > 0 {
				if err := json.Unmarshal(raw, &args); err != nil {
					return nil, fmt.Errorf("invalid arguments: %w", err)
				}
			}
			args.normalize()

			action, err := lib.BuildAction(name, args.DelayMs, args.Intensity, controller.CurrentPosition(), limits, time.Now().UnixMilli())
			if err != nil {
				return nil, err
			}
			controller.AddActionToQueue(action)
			return map[string]any{"status": "queued", "gesture": name}, nil
		}))
	}
}
