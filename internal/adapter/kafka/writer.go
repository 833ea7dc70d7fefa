// Package kafka publishes transformed places to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/couchcryptid/accessibility-etl/internal/config"
	"github.com/couchcryptid/accessibility-etl/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Writer produces one message per place to a Kafka topic.
// It implements pipeline.Loader.
type Writer struct {
	writer *kafkago.Writer
	topic  string
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, topic: cfg.KafkaTopic, logger: logger}
}

func (w *Writer) Name() string { return "kafka:" + w.topic }

// Load publishes every place of the table in a single WriteMessages call.
func (w *Writer) Load(ctx context.Context, t domain.Table) error {
	if len(t.Places) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(t.Places))
	for i := range t.Places {
		msg, err := serializeToMessage(t.Places[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("publish %d places to %s: %w", len(msgs), w.topic, err)
	}
	w.logger.Debug("places published", "topic", w.topic, "count", len(msgs))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// messageKey is the place id once assigned by combine, otherwise its name.
func messageKey(p domain.Place) []byte {
	if p.ID > 0 {
		return []byte(strconv.Itoa(p.ID))
	}
	return []byte(p.Name)
}

// serializeToMessage marshals a Place into a Kafka message.
func serializeToMessage(p domain.Place) (kafkago.Message, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize place %q: %w", p.Name, err)
	}
	headers := []kafkago.Header{{Key: "category", Value: []byte(p.Category)}}
	if !p.ProcessedAt.IsZero() {
		headers = append(headers, kafkago.Header{Key: "processed_at", Value: []byte(p.ProcessedAt.Format(time.RFC3339))})
	}
	return kafkago.Message{
		Key:     messageKey(p),
		Value:   data,
		Headers: headers,
	}, nil
}
