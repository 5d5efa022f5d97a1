package realtime

// WireConn is the minimal websocket surface the session controller needs,
// satisfied directly by *websocket.Conn (ReadJSON/WriteJSON/Close/
// SetReadDeadline/SetPongHandler/WriteControl are all native gorilla
// methods) and by a fake in tests, matching fastview/client.go's
// serialize-reads-and-writes pattern without requiring a live socket to
// exercise the session's decision logic.
type WireConn interface {
	ReadJSON(v any) error
	WriteJSON(v any) error
	Close() error
}

// VADConfig is the server-side voice-activity-detection tuning carried in
// session.update.session, matching §4.L item 2.
type VADConfig struct {
	Type                string  `json:"type"`
	Threshold           float64 `json:"threshold"`
	PrefixPaddingMs     int     `json:"prefix_padding_ms"`
	SilenceDurationMs   int     `json:"silence_duration_ms"`
	CreateResponse      bool    `json:"create_response"`
	InterruptResponse   bool    `json:"interrupt_response"`
}

// DefaultVADConfig matches the reference server-VAD tuning.
func DefaultVADConfig() VADConfig {
	return VADConfig{
		Type:              "server_vad",
		Threshold:         0.5,
		PrefixPaddingMs:   300,
		SilenceDurationMs: 500,
		CreateResponse:    true,
		InterruptResponse: true,
	}
}

// ToolCatalogEntry is one tool's wire representation inside
// session.update.session.tools, matching "each tool: name, type=function,
// parameters JSON-Schema, description".
type ToolCatalogEntry struct {
	Type        string         `json:"type"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// SessionConfig is the session.update.session payload.
type SessionConfig struct {
	Model             string             `json:"model"`
	Voice             string             `json:"voice"`
	OutputModalities  []string           `json:"modalities"`
	InputAudioFormat  string             `json:"input_audio_format"`
	OutputAudioFormat string             `json:"output_audio_format"`
	TurnDetection     VADConfig          `json:"turn_detection"`
	Instructions      string             `json:"instructions"`
	Tools             []ToolCatalogEntry `json:"tools"`
}

type outboundFrame struct {
	Type    string `json:"type"`
	Session *SessionConfig `json:"session,omitempty"`
	Audio   string `json:"audio,omitempty"`
	Item    any    `json:"item,omitempty"`
	Response *responseCreateBody `json:"response,omitempty"`
}

type responseCreateBody struct {
	Metadata map[string]any `json:"metadata,omitempty"`
}

type conversationMessageItem struct {
	Type    string                    `json:"type"`
	Role    string                    `json:"role"`
	Content []conversationContentPart `json:"content"`
}

type conversationContentPart struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type functionCallOutputItem struct {
	Type   string `json:"type"`
	CallID string `json:"call_id"`
	Output string `json:"output"`
}

// inboundEnvelope is a structurally-typed superset of the incoming frame
// shapes listed in §6, read once per frame and dispatched on Type.
type inboundEnvelope struct {
	Type string `json:"type"`

	Item struct {
		ID     string `json:"id"`
		Type   string `json:"type"`
		CallID string `json:"call_id"`
		Name   string `json:"name"`
	} `json:"item"`

	CallID    string `json:"call_id"`
	Delta     string `json:"delta"`
	Arguments string `json:"arguments"`
	Transcript string `json:"transcript"`

	Error struct {
		Message string `json:"message"`
	} `json:"error"`

	RateLimits []RateLimit `json:"rate_limits"`
}

// RateLimit is one entry from a rate_limits.updated frame.
type RateLimit struct {
	Name      string  `json:"name"`
	Limit     int     `json:"limit"`
	Remaining int     `json:"remaining"`
	ResetSeconds float64 `json:"reset_seconds"`
}
