package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/farmsecure/outbreak-sync-service/internal/config"
	"github.com/farmsecure/outbreak-sync-service/internal/domain"
	"github.com/farmsecure/outbreak-sync-service/internal/observability"
)

// Writer publishes proximity notification requests to a Kafka topic for
// the downstream delivery service.
type Writer struct {
	writer  *kafkago.Writer
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewWriter creates a Kafka producer for the configured notification topic.
func NewWriter(cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaNotifyTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, metrics: metrics, logger: logger}
}

// Publish serializes and writes all notification requests in a single
// WriteMessages call. Messages are keyed by farm ID so alerts for the same
// farm stay ordered within a partition.
func (w *Writer) Publish(ctx context.Context, requests []domain.NotificationRequest) error {
	if len(requests) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(requests))
	for i := range requests {
		msg, err := serializeToMessage(requests[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("publish notifications: %w", err)
	}
	w.metrics.NotificationsEmitted.Add(float64(len(requests)))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a NotificationRequest into a Kafka message.
func serializeToMessage(req domain.NotificationRequest) (kafkago.Message, error) {
	data, err := json.Marshal(req)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize notification request: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(req.FarmID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "owner_id", Value: []byte(req.OwnerID)},
			{Key: "alert_count", Value: []byte(strconv.Itoa(len(req.Alerts)))},
		},
	}, nil
}
