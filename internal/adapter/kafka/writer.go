package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/mersey-rowing/condition-checker/internal/config"
	"github.com/mersey-rowing/condition-checker/internal/domain"
)

// Writer publishes boat checks to a Kafka topic.
// It implements checker.Publisher.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaTopic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &Writer{writer: w, logger: logger}
}

// Publish serializes a boat check and writes it to the topic. Checks for the
// same observed hour share a key so they land on the same partition.
func (w *Writer) Publish(ctx context.Context, check domain.BoatCheck) error {
	msg, err := serializeToMessage(check)
	if err != nil {
		return err
	}
	if err := w.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write boat check: %w", err)
	}
	w.logger.Debug("boat check published", "topic", w.writer.Topic, "key", string(msg.Key))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a BoatCheck into a Kafka message.
func serializeToMessage(check domain.BoatCheck) (kafkago.Message, error) {
	data, err := json.Marshal(check)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize boat check: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(check.ObservedAt.UTC().Format("2006-01-02T15")),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "outcome", Value: []byte(check.BoatsAllowed.Outcome())},
			{Key: "checked_at", Value: []byte(check.CheckedAt.Format(time.RFC3339))},
		},
	}, nil
}
