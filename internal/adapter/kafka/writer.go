package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/tephralabs/lavaflow/internal/config"
	"github.com/tephralabs/lavaflow/internal/domain"
)

// Writer publishes breakthrough events to a Kafka topic.
// It implements pipeline.EventSink.
type Writer struct {
	writer  *kafkago.Writer
	volcano string
	logger  *slog.Logger
}

// NewWriter creates a Kafka producer for the configured breakthrough topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, volcano: cfg.Volcano, logger: logger}
}

// PublishBreakthroughs serializes and publishes the events in a single
// WriteMessages call so downstream consumers see a whole cycle's output
// together.
func (w *Writer) PublishBreakthroughs(ctx context.Context, events []domain.BreakthroughEvent) error {
	if len(events) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(events))
	for i := range events {
		msg, err := serializeToMessage(w.volcano, events[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return err
	}
	w.logger.Debug("published breakthrough events", "count", len(events))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a BreakthroughEvent into a Kafka message. The
// key combines the volcano and event date so consumers partitioning by key
// keep one volcano's timeline together.
func serializeToMessage(volcano string, event domain.BreakthroughEvent) (kafkago.Message, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize breakthrough event: %w", err)
	}
	key := fmt.Sprintf("%s/%s", volcano, event.Date.Format("2006-01-02"))
	headers := []kafkago.Header{
		{Key: "volcano", Value: []byte(volcano)},
		{Key: "produced_at", Value: []byte(domain.Now().UTC().Format(time.RFC3339))},
	}
	if event.Satellite != "" {
		headers = append(headers, kafkago.Header{Key: "satellite", Value: []byte(event.Satellite)})
	}
	return kafkago.Message{
		Key:     []byte(key),
		Value:   data,
		Headers: headers,
	}, nil
}
