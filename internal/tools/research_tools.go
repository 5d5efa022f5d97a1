package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"theo/internal/research"
)

// RegisterResearchTools adds perform_research, delegating to svc (the
// NullService when the subsystem is disabled).
func RegisterResearchTools(reg Registry, svc research.Service) {
	reg.Register(NewFuncTool("perform_research", Schema{
		Description: "Look up external information (e.g. a datasheet) for the given query.",
		Parameters: objectSchema(map[string]any{
			"query":   stringProp("What to research."),
			"context": map[string]any{"type": "object", "description": "Optional free-form context for the lookup."},
		}, "query"),
	}, func(ctx context.Context, raw json.RawMessage) (any, error) {
		var args struct {
			Query   string         `json:"query"`
			Context map[string]any `json:"context"`
		}
		if err := json.Unmarshal(raw, &args); err != nil {
			return nil, fmt.Errorf("invalid arguments: %w", err)
		}
		packet, err := svc.Request(ctx, research.Request{Prompt: args.Query, Context: args.Context})
		if err != nil {
			return nil, err
		}
		return packet, nil
	}))
}
