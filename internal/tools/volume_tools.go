package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"theo/internal/volume"
)

// RegisterVolumeTools adds get_output_volume and set_output_volume.
func RegisterVolumeTools(reg Registry, controller *volume.Controller) {
	reg.Register(NewFuncTool("get_output_volume", Schema{
		Description: "Read the current output volume percent and mute state.",
		Parameters:  objectSchema(nil),
	}, func(ctx context.Context, _ json.RawMessage) (any, error) {
		return controller.GetVolume(ctx)
	}))

	reg.Register(NewFuncTool("set_output_volume", Schema{
		Description: "Set the output volume percent, optionally bypassing the rate limit for an emergency.",
		Parameters: objectSchema(map[string]any{
			"percent":   integerProp("Target volume percent.", n(1), n(100)),
			"emergency": map[string]any{"type": "boolean", "description": "Bypass the non-emergency rate limit."},
		}, "percent"),
	}, func(ctx context.Context, raw json.RawMessage) (any, error) {
		var args struct {
			Percent   int  `json:"percent"`
			Emergency bool `json:"emergency"`
		}
		if err := json.Unmarshal(raw, &args); err != nil {
			return nil, fmt.Errorf("invalid arguments: %w", err)
		}
		return controller.SetVolume(ctx, args.Percent, args.Emergency)
	}))
}
