package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWithNoDocument(t *testing.T) {
	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, "act-with-bounds", cfg.Autonomy.Level)
	assert.Equal(t, 20, cfg.Motion.TickPeriodMs)
	assert.Equal(t, 200, cfg.EventBusMaxLen)
}

func TestLoadOverlayOverridesDefaults(t *testing.T) {
	doc := RawDocument{
		"autonomy": map[string]any{
			"level":                 "observe-only",
			"tool_calls_per_minute": 5,
		},
		"motion": map[string]any{"tick_period_ms": 25},
	}
	cfg, err := Load(doc)
	require.NoError(t, err)
	assert.Equal(t, "observe-only", cfg.Autonomy.Level)
	assert.Equal(t, 5, cfg.Autonomy.ToolCallsPerMinute)
	assert.Equal(t, 25, cfg.Motion.TickPeriodMs)
}

func TestRequireOpenAIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.Error(t, cfg.RequireOpenAIKey())

	os.Setenv("OPENAI_API_KEY", "sk-test")
	t.Cleanup(func() { os.Unsetenv("OPENAI_API_KEY") })
	cfg, err = Load(nil)
	require.NoError(t, err)
	assert.NoError(t, cfg.RequireOpenAIKey())
}
