package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"theo/internal/memory"
)

// RegisterMemoryTools adds remember_memory, recall_memories, and
// forget_memory against a single MemoryStore.
func RegisterMemoryTools(reg Registry, store memory.MemoryStore) {
	reg.Register(NewFuncTool("remember_memory", Schema{
		Description: "Store a fact to recall in future conversations.",
		Parameters: objectSchema(map[string]any{
			"content":    stringProp("The fact to remember."),
			"tags":       arrayOfStringsProp("Optional topical tags."),
			"importance": integerProp("How important this memory is.", n(1), n(5)),
		}, "content"),
	}, func(ctx context.Context, raw json.RawMessage) (any, error) {
		var args struct {
			Content    string   `json:"content"`
			Tags       []string `json:"tags"`
			Importance int      `json:"importance"`
		}
		if err := json.Unmarshal(raw, &args); err != nil {
			return nil, fmt.Errorf("invalid arguments: %w", err)
		}
		if args.Importance < 1 {
			args.Importance = 1
		}
		if args.Importance > 5 {
			args.Importance = 5
		}
		entry := store.Append(args.Content, args.Tags, args.Importance, nowMillis())
		return entry, nil
	}))

	reg.Register(NewFuncTool("recall_memories", Schema{
		Description: "Search remembered facts by content substring.",
		Parameters: objectSchema(map[string]any{
			"query": stringProp("Substring to search memory content for."),
			"limit": integerProp("Maximum number of memories to return.", n(1), n(10)),
		}, "query"),
	}, func(ctx context.Context, raw json.RawMessage) (any, error) {
		var args struct {
			Query string `json:"query"`
			Limit int    `json:"limit"`
		}
		if err := json.Unmarshal(raw, &args); err != nil {
			return nil, fmt.Errorf("invalid arguments: %w", err)
		}
		if args.Limit <= 0 || args.Limit > 10 {
			args.Limit = 10
		}
		return store.Search(args.Query, args.Limit), nil
	}))

	reg.Register(NewFuncTool("forget_memory", Schema{
		Description: "Delete a previously remembered fact by its ID.",
		Parameters:  objectSchema(map[string]any{"memory_id": integerProp("ID of the memory to delete.", n(1), nil)}, "memory_id"),
	}, func(ctx context.Context, raw json.RawMessage) (any, error) {
		var args struct {
			MemoryID int `json:"memory_id"`
		}
		if err := json.Unmarshal(raw, &args); err != nil {
			return nil, fmt.Errorf("invalid arguments: %w", err)
		}
		deleted := store.Delete(args.MemoryID)
		return map[string]any{"deleted": deleted, "memory_id": args.MemoryID}, nil
	}))
}
