// Package config loads the companion core's configuration from environment
// variables overlaid with an in-memory YAML-derived document, matching the
// teacher's internal/config.Config shape and env-default idiom. The
// operator-facing YAML file itself is parsed by the embedding application
// (out of scope per §1); this package only ever touches a RawDocument the
// caller has already decoded.
package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

// RawDocument is the decoded YAML overlay, produced by whatever loader the
// embedding application uses. A nil document is valid: every field then
// falls back to its environment-or-default value.
type RawDocument map[string]any

// AutonomyConfig mirrors governance.Config's shape for the config layer,
// avoiding a dependency from config -> governance.
type AutonomyConfig struct {
	Level                string
	ToolCallsPerMinute    int
	ExpensiveCallsPerDay  int
	RiskThreshold         float64
}

// MotionConfig tunes the motion controller.
type MotionConfig struct {
	TickPeriodMs       int
	FailOpenOnDeadline bool
	TransitionMs       int
}

// VoiceConfig tunes the realtime session's voice/session-config message.
type VoiceConfig struct {
	Voice              string
	Model              string
	SilenceThresholdDB float64
	PrefixPaddingMs    int
	SilenceDurationMs  int
	CreateResponseOnEnd bool
	InterruptOnSpeech  bool
}

// TelemetryConfig controls OpenTelemetry tracing/metrics.
type TelemetryConfig struct {
	Enabled     bool
	Endpoint    string
	ServiceName string
}

// RedisConfig configures the optional distributed budget backing store.
type RedisConfig struct {
	Enabled bool
	Addr    string
}

// KafkaConfig configures the optional event-bus mirror.
type KafkaConfig struct {
	Enabled bool
	Brokers string
	Topic   string
}

// ResearchConfig tunes the perform_research tool and its daily budget.
type ResearchConfig struct {
	Enabled            bool
	FirecrawlAPIKey    string
	DailyBudget        int
	RequestTimeoutS    int
}

// Config is the fully-resolved, process-wide configuration.
type Config struct {
	OpenAIAPIKey     string
	LogLevel         string
	LogPath          string
	AudioDebug       bool
	LogSessionFull   bool
	EventBusMaxLen   int
	Autonomy         AutonomyConfig
	Motion           MotionConfig
	Voice            VoiceConfig
	Telemetry        TelemetryConfig
	Redis            RedisConfig
	Kafka            KafkaConfig
	Research         ResearchConfig
	InjectionPerMinute int
	StimulusCooldownMs int
}

// Load resolves Config from doc, falling back to built-in defaults for any
// key doc does not set. The API keys and the THEO_* debug toggles are read
// only from environment variables; no other field consults the environment.
func Load(doc RawDocument) (Config, error) {
	cfg := Config{
		LogLevel:       stringOr(doc, "log_level", "info"),
		LogPath:        stringOr(doc, "log_path", ""),
		EventBusMaxLen: intOr(doc, "event_bus_max_len", 200),
		Autonomy: AutonomyConfig{
			Level:                stringOr(doc, "autonomy.level", "act-with-bounds"),
			ToolCallsPerMinute:   intOr(doc, "autonomy.tool_calls_per_minute", 20),
			ExpensiveCallsPerDay: intOr(doc, "autonomy.expensive_calls_per_day", 10),
			RiskThreshold:        floatOr(doc, "autonomy.risk_threshold", 0.6),
		},
		Motion: MotionConfig{
			TickPeriodMs:       intOr(doc, "motion.tick_period_ms", 20),
			FailOpenOnDeadline: boolOr(doc, "motion.fail_open_on_deadline", true),
			TransitionMs:       intOr(doc, "motion.transition_ms", 1500),
		},
		Voice: VoiceConfig{
			Voice:               stringOr(doc, "voice.voice", "alloy"),
			Model:               stringOr(doc, "voice.model", "gpt-realtime"),
			SilenceThresholdDB:  floatOr(doc, "voice.silence_threshold_db", 0.5),
			PrefixPaddingMs:     intOr(doc, "voice.prefix_padding_ms", 300),
			SilenceDurationMs:   intOr(doc, "voice.silence_duration_ms", 500),
			CreateResponseOnEnd: boolOr(doc, "voice.create_response_on_end", true),
			InterruptOnSpeech:   boolOr(doc, "voice.interrupt_on_speech", true),
		},
		Telemetry: TelemetryConfig{
			Enabled:     boolOr(doc, "otel.enabled", false),
			Endpoint:    stringOr(doc, "otel.endpoint", ""),
			ServiceName: stringOr(doc, "otel.service_name", "theo"),
		},
		Redis: RedisConfig{
			Enabled: boolOr(doc, "redis.enabled", false),
			Addr:    stringOr(doc, "redis.addr", "localhost:6379"),
		},
		Kafka: KafkaConfig{
			Enabled: boolOr(doc, "kafka.enabled", false),
			Brokers: stringOr(doc, "kafka.brokers", "localhost:9092"),
			Topic:   stringOr(doc, "kafka.topic", "theo.events"),
		},
		Research: ResearchConfig{
			Enabled:         boolOr(doc, "research.enabled", true),
			FirecrawlAPIKey: os.Getenv("FIRECRAWL_API_KEY"),
			DailyBudget:     intOr(doc, "research.daily_budget", 20),
			RequestTimeoutS: intOr(doc, "research.request_timeout_s", 30),
		},
		InjectionPerMinute: intOr(doc, "injection.responses_per_minute", 6),
		StimulusCooldownMs: intOr(doc, "injection.trigger_cooldown_ms", 15000),
	}

	cfg.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	cfg.AudioDebug = os.Getenv("THEO_AUDIO_DEBUG") != ""
	cfg.LogSessionFull = os.Getenv("THEO_LOG_SESSION_FULL") != ""

	if cfg.Research.FirecrawlAPIKey == "" {
		log.Info().Msg("firecrawl_api_key_unset_markdown_extraction_disabled")
	}

	return cfg, nil
}

// RequireOpenAIKey validates the one hard startup requirement named in §6:
// OPENAI_API_KEY must be set.
func (c Config) RequireOpenAIKey() error {
	if strings.TrimSpace(c.OpenAIAPIKey) == "" {
		return errMissingAPIKey
	}
	return nil
}

var errMissingAPIKey = configError("OPENAI_API_KEY is required")

type configError string

func (e configError) Error() string { return string(e) }

func lookup(doc RawDocument, dottedKey string) (any, bool) {
	if doc == nil {
		return nil, false
	}
	parts := strings.Split(dottedKey, ".")
	var cur any = map[string]any(doc)
	for _, part := range parts {
		m, ok := cur.(map[string]any)
		if !ok {
			if rd, ok2 := cur.(RawDocument); ok2 {
				m = map[string]any(rd)
			} else {
				return nil, false
			}
		}
		v, ok := m[part]
		if !ok {
			return nil, false
		}
		cur = v
	}
	return cur, true
}

func stringOr(doc RawDocument, key, fallback string) string {
	if v, ok := lookup(doc, key); ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return fallback
}

func intOr(doc RawDocument, key string, fallback int) int {
	if v, ok := lookup(doc, key); ok {
		switch n := v.(type) {
		case int:
			return n
		case int64:
			return int(n)
		case float64:
			return int(n)
		case string:
			if parsed, err := strconv.Atoi(n); err == nil {
				return parsed
			}
		}
	}
	return fallback
}

func floatOr(doc RawDocument, key string, fallback float64) float64 {
	if v, ok := lookup(doc, key); ok {
		switch n := v.(type) {
		case float64:
			return n
		case int:
			return float64(n)
		case string:
			if parsed, err := strconv.ParseFloat(n, 64); err == nil {
				return parsed
			}
		}
	}
	return fallback
}

func boolOr(doc RawDocument, key string, fallback bool) bool {
	if v, ok := lookup(doc, key); ok {
		switch b := v.(type) {
		case bool:
			return b
		case string:
			if parsed, err := strconv.ParseBool(b); err == nil {
				return parsed
			}
		}
	}
	return fallback
}
