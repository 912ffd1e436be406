// Package kafka adapts the ingestion pipeline to Kafka: a consumer-group
// reader for raw sample cycles and a producer for alert events.
package kafka

import (
	"context"
	"log/slog"

	"github.com/floodwatch/water-level-service/internal/config"
	"github.com/floodwatch/water-level-service/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Reader consumes raw sample-cycle messages from the source topic.
// It implements pipeline.CycleExtractor.
type Reader struct {
	reader *kafkago.Reader
	logger *slog.Logger
}

// NewReader creates a consumer-group reader for the configured source topic.
// Offsets are committed explicitly via each cycle's Commit function once the
// pipeline has ingested or permanently rejected the message.
func NewReader(cfg *config.Config, logger *slog.Logger) *Reader {
	r := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers: cfg.KafkaBrokers,
		GroupID: cfg.KafkaGroupID,
		Topic:   cfg.KafkaSourceTopic,
	})
	return &Reader{reader: r, logger: logger}
}

// Extract fetches the next raw cycle, blocking until a message arrives or
// the context is cancelled.
func (r *Reader) Extract(ctx context.Context) (domain.RawCycle, error) {
	msg, err := r.reader.FetchMessage(ctx)
	if err != nil {
		return domain.RawCycle{}, err
	}
	raw := mapMessageToRawCycle(msg)
	raw.Commit = func(ctx context.Context) error {
		return r.reader.CommitMessages(ctx, msg)
	}
	return raw, nil
}

func (r *Reader) Close() error {
	return r.reader.Close()
}

// mapMessageToRawCycle converts a Kafka message into a domain RawCycle.
func mapMessageToRawCycle(msg kafkago.Message) domain.RawCycle {
	return domain.RawCycle{
		Key:       msg.Key,
		Value:     msg.Value,
		Topic:     msg.Topic,
		Partition: msg.Partition,
		Offset:    msg.Offset,
		Timestamp: msg.Time,
	}
}
