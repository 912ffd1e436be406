package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/floodwatch/water-level-service/internal/config"
	"github.com/floodwatch/water-level-service/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Publisher produces alert events to the alert topic.
// It implements pipeline.AlertPublisher.
type Publisher struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewPublisher creates a Kafka producer for the configured alert topic.
func NewPublisher(cfg *config.Config, logger *slog.Logger) *Publisher {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaAlertTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Publisher{writer: w, logger: logger}
}

// PublishAlert serializes and publishes one alert event. Keyed by sensor id
// so a sensor's alerts stay ordered within one partition.
func (p *Publisher) PublishAlert(ctx context.Context, event domain.AlertEvent) error {
	msg, err := serializeAlert(event)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, msg)
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

// serializeAlert marshals an AlertEvent into a Kafka message.
func serializeAlert(event domain.AlertEvent) (kafkago.Message, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize alert event: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(strconv.Itoa(event.SensorID)),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "severity", Value: []byte(event.Severity)},
			{Key: "emitted_at", Value: []byte(event.Timestamp.Format(time.RFC3339))},
		},
	}, nil
}
