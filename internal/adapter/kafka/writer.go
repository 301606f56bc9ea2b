package kafka

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/aqi-warning-service/internal/config"
	"github.com/couchcryptid/aqi-warning-service/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Writer produces assessment messages to a Kafka topic.
// It implements pipeline.BatchLoader.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured sink topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSinkTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// LoadBatch serializes and publishes assessments in a single WriteMessages
// call. Messages are keyed by reading ID so a station's replays land on the
// same partition.
func (w *Writer) LoadBatch(ctx context.Context, events []domain.AssessmentEvent) error {
	if len(events) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(events))
	for i := range events {
		msg, err := serializeToMessage(events[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	return w.writer.WriteMessages(ctx, msgs...)
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals an AssessmentEvent into a Kafka message.
func serializeToMessage(event domain.AssessmentEvent) (kafkago.Message, error) {
	out, err := domain.SerializeAssessmentEvent(event)
	if err != nil {
		return kafkago.Message{}, err
	}
	return kafkago.Message{
		Key:   out.Key,
		Value: out.Value,
		Headers: []kafkago.Header{
			{Key: "tier", Value: []byte(out.Headers["tier"])},
			{Key: "assessed_at", Value: []byte(out.Headers["assessed_at"])},
		},
	}, nil
}
