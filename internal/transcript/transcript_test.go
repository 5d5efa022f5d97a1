package transcript

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"theo/internal/research"
)

func sampleRecord() Record {
	return Record{
		ResearchID: "research_abcdef1234567890",
		RunID:      "42",
		CreatedAt:  time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Query:      "lookup part",
		Context:    map[string]any{"api_key": "sk-secret", "user_id": "alice"},
		Packet: research.Packet{
			Status:        "ok",
			AnswerSummary: "found it",
			Sources:       []research.Source{{Title: "Vendor", URL: "https://vendor.example.com/part.pdf"}},
		},
	}
}

func TestFileSinkWritesPairedArtifactsWithMatchingStems(t *testing.T) {
	dir := t.TempDir()
	sink := NewFileSink(dir)

	jsonPath, err := sink.Write(sampleRecord())
	require.NoError(t, err)

	mdPath := jsonPath[:len(jsonPath)-len(filepath.Ext(jsonPath))] + ".md"
	_, err = os.Stat(mdPath)
	require.NoError(t, err, "markdown sibling should exist next to the json artifact")

	raw, err := os.ReadFile(jsonPath)
	require.NoError(t, err)
	var payload map[string]any
	require.NoError(t, json.Unmarshal(raw, &payload))

	request := payload["request"].(map[string]any)
	assert.Equal(t, "***redacted***", request["api_key"])
	assert.Equal(t, "alice", request["user_id"])
	assert.Equal(t, "lookup part", request["query"])
}

func TestFileSinkMarkdownListsSources(t *testing.T) {
	dir := t.TempDir()
	sink := NewFileSink(dir)

	jsonPath, err := sink.Write(sampleRecord())
	require.NoError(t, err)
	mdPath := jsonPath[:len(jsonPath)-len(filepath.Ext(jsonPath))] + ".md"

	body, err := os.ReadFile(mdPath)
	require.NoError(t, err)
	assert.Contains(t, string(body), "https://vendor.example.com/part.pdf")
}

func TestMemorySinkRoundTrip(t *testing.T) {
	sink := NewMemorySink()
	record := sampleRecord()
	_, err := sink.Write(record)
	require.NoError(t, err)

	got, ok := sink.Get(record.ResearchID)
	require.True(t, ok)
	assert.Equal(t, record.Query, got.Query)
	assert.Equal(t, []string{record.ResearchID}, sink.IDs())
}
