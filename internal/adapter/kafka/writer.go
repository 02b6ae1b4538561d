// Package kafka publishes safety reports to a Kafka topic for
// downstream consumers (dashboards, long-term archival). The sink is
// optional; the monitor runs fine without brokers configured.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/ospreycove/hazmon/internal/domain"
)

// Writer produces one Kafka message per safety report. It implements
// aggregator.ReportSink.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the report topic.
func NewWriter(brokers []string, topic string, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// Publish serializes one report and writes it keyed by the run
// timestamp, so replays and compaction keep one message per run.
func (w *Writer) Publish(ctx context.Context, report *domain.SafetyReport) error {
	msg, err := serializeToMessage(report)
	if err != nil {
		return err
	}
	return w.writer.WriteMessages(ctx, msg)
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a SafetyReport into a Kafka message.
func serializeToMessage(report *domain.SafetyReport) (kafkago.Message, error) {
	data, err := json.Marshal(report)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize safety report: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(report.GeneratedAt.UTC().Format(time.RFC3339)),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "verdict", Value: []byte(report.Verdict)},
			{Key: "generated_at", Value: []byte(report.GeneratedAt.UTC().Format(time.RFC3339))},
		},
	}, nil
}
