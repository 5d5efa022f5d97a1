package eventbus

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"
)

// KafkaMirrorConfig configures the optional Kafka mirror of bus publishes,
// used for offline analysis of stimulus traffic. Disabled by default.
type KafkaMirrorConfig struct {
	Enabled bool
	Brokers string
	Topic   string
}

// KafkaMirror republishes every event handed to Record onto a Kafka topic.
// Grounded on the teacher's internal/workspaces.KafkaCommitPublisher: a nil
// receiver (or disabled config) makes every method a safe no-op so callers
// never need to branch on whether mirroring is configured.
type KafkaMirror struct {
	writer *kafka.Writer
}

// NewKafkaMirror returns nil (not an error) when mirroring is disabled.
func NewKafkaMirror(cfg KafkaMirrorConfig) *KafkaMirror {
	if !cfg.Enabled {
		return nil
	}
	return &KafkaMirror{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(cfg.Brokers),
			Topic:    cfg.Topic,
			Balancer: &kafka.LeastBytes{},
		},
	}
}

type mirroredEvent struct {
	Source    string         `json:"source"`
	Kind      string         `json:"kind"`
	Priority  string         `json:"priority"`
	Content   string         `json:"content,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	DedupeKey string         `json:"dedupe_key,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// Record mirrors a single published event. Errors are logged, never
// returned — a broker outage must never perturb the realtime control loop.
func (m *KafkaMirror) Record(ctx context.Context, e Event) {
	if m == nil || m.writer == nil {
		return
	}
	payload, err := json.Marshal(mirroredEvent{
		Source: e.Source, Kind: e.Kind, Priority: e.Priority.String(),
		Content: e.Content, Metadata: e.Metadata, DedupeKey: e.DedupeKey,
		CreatedAt: e.CreatedAt,
	})
	if err != nil {
		log.Warn().Err(err).Msg("event_bus_mirror_encode_failed")
		return
	}
	if err := m.writer.WriteMessages(ctx, kafka.Message{Value: payload, Time: time.Now()}); err != nil {
		log.Warn().Err(err).Msg("event_bus_mirror_write_failed")
	}
}

// Close shuts down the underlying writer.
func (m *KafkaMirror) Close() {
	if m == nil || m.writer == nil {
		return
	}
	if err := m.writer.Close(); err != nil {
		log.Warn().Err(err).Msg("event_bus_mirror_close_failed")
	}
}
