package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"theo/internal/motion"
)

const directToolPriority = 5
const directToolDurationMs = 600

type axisArgs struct {
	Degrees float64 `json:"degrees"`
}

// RegisterMotionTools adds set_pan, set_tilt, and get_servo_position,
// each a direct single-axis move enqueued onto the controller alongside
// whatever gesture actions are already scheduled.
func RegisterMotionTools(reg Registry, controller *motion.Controller, registry motion.Registry) {
	reg.Register(NewFuncTool("set_pan", Schema{
		Description: "Set the pan (left/right) servo angle in degrees.",
		Parameters:  objectSchema(map[string]any{"degrees": numberProp("Target pan angle in degrees.", f(-90), f(90))}, "degrees"),
	}, axisSetter(controller, "pan")))

	reg.Register(NewFuncTool("set_tilt", Schema{
		Description: "Set the tilt (up/down) servo angle in degrees.",
		Parameters:  objectSchema(map[string]any{"degrees": numberProp("Target tilt angle in degrees.", f(-45), f(45))}, "degrees"),
	}, axisSetter(controller, "tilt")))

	reg.Register(NewFuncTool("get_servo_position", Schema{
		Description: "Read the current angle of a named servo axis.",
		Parameters:  objectSchema(map[string]any{"servo_name": stringProp("Which axis to read.", "pan", "tilt")}, "servo_name"),
	}, func(ctx context.Context, raw json.RawMessage) (any, error) {
		var args struct {
			ServoName string `json:"servo_name"`
		}
		if err := json.Unmarshal(raw, &args); err != nil {
			return nil, fmt.Errorf("invalid arguments: %w", err)
		}
		if args.ServoName != "pan" && args.ServoName != "tilt" {
			return nil, fmt.Errorf("unknown servo %q", args.ServoName)
		}
		servo, ok := registry.Servo(args.ServoName)
		if !ok {
			return nil, fmt.Errorf("servo %q not registered", args.ServoName)
		}
		return map[string]any{"servo_name": args.ServoName, "degrees": servo.Read()}, nil
	}))
}

func axisSetter(controller *motion.Controller, axis string) func(context.Context, json.RawMessage) (any, error) {
	return func(ctx context.Context, raw json.RawMessage) (any, error) {
		var args axisArgs
		if err := json.Unmarshal(raw, &args); err != nil {
			return nil, fmt.Errorf("invalid arguments: %w", err)
		}
		frame := &motion.Keyframe{
			Name:            "set_" + axis,
			Target:          map[string]float64{axis: args.Degrees},
			FinalTargetTime: directToolDurationMs,
		}
		action := motion.NewAction(directToolPriority, nowMillis(), "set_"+axis, frame)
		controller.AddActionToQueue(action)
		return map[string]any{"status": "queued", "axis": axis, "degrees": args.Degrees}, nil
	}
}
