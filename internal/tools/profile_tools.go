package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"theo/internal/memory"
)

// RegisterProfileTools adds update_user_profile, touching last-seen and
// merging whichever fields the caller actually provided, matching
// update_profile_fields's "only overwrite what was explicitly passed"
// semantics at this handler layer.
func RegisterProfileTools(reg Registry, store memory.ProfileStore, userID string) {
	reg.Register(NewFuncTool("update_user_profile", Schema{
		Description: "Update the current user's stored name, preferences, or favorites.",
		Parameters: objectSchema(map[string]any{
			"name":        stringProp("The user's preferred name."),
			"preferences": map[string]any{"type": "object", "description": "Free-form preference key/value pairs."},
			"favorites":   arrayOfStringsProp("List of things the user likes."),
		}),
	}, func(ctx context.Context, raw json.RawMessage) (any, error) {
		var args struct {
			Name        *string         `json:"name"`
			Preferences map[string]any  `json:"preferences"`
			Favorites   []string        `json:"favorites"`
		}
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &args); err != nil {
				return nil, fmt.Errorf("invalid arguments: %w", err)
			}
		}

		profile, _ := store.Get(userID)
		profile.UserID = userID
		if args.Name != nil {
			profile.Name = *args.Name
		}
		if args.Preferences != nil {
			if profile.Preferences == nil {
				profile.Preferences = make(map[string]any, len(args.Preferences))
			}
			for k, v := range args.Preferences {
				profile.Preferences[k] = v
			}
		}
		if args.Favorites != nil {
			profile.Favorites = args.Favorites
		}
		store.Upsert(profile)
		return profile, nil
	}))
}
