// Package research implements the optional research subsystem described
// in §9's SUPPLEMENTED FEATURES: a structured, budget-gated web lookup a
// tool call can request, grounded on services/research/{models,service,
// openai_service,firecrawl_client}.py. The real web_search/Firecrawl
// network calls are external collaborators per §1; this package owns the
// request/response shape, budget gating, deduping, sanitization, and URL
// allowlist policy around them.
package research

// Schema is the stable packet identifier carried in every response, used
// so downstream consumers can evolve without breaking older callers.
const Schema = "research_packet_v1"

// Request is the input to a research lookup.
type Request struct {
	Prompt  string
	Context map[string]any
}

// Source is a cited reference in a packet.
type Source struct {
	Title string
	URL   string
}

// Packet is the structured result handed back to the tool caller,
// matching ResearchPacket.to_realtime_payload's field set.
type Packet struct {
	Schema        string
	Status        string // "ok", "error", "disabled"
	AnswerSummary string
	ExtractedFacts []string
	Sources       []Source
	SafetyNotes   []string
	Metadata      map[string]any
}

// disabledPacket matches NullResearchService's fixed response shape.
func disabledPacket(req Request) Packet {
	keys := make([]string, 0, len(req.Context))
	for k := range req.Context {
		keys = append(keys, k)
	}
	return Packet{
		Schema:        Schema,
		Status:        "disabled",
		AnswerSummary: "Research subsystem disabled",
		SafetyNotes:   []string{"research_disabled"},
		Metadata: map[string]any{
			"reason":        "research_disabled",
			"prompt_length": len(req.Prompt),
			"context_keys":  keys,
		},
	}
}

func errorPacket(reason string) Packet {
	return Packet{
		Schema:        Schema,
		Status:        "error",
		AnswerSummary: "Research unavailable; proceeding without web results.",
		SafetyNotes:   []string{"research_error:" + reason},
		Metadata:      map[string]any{"provider": "openai_responses_web_search"},
	}
}
