package producer

import (
	"context"

	"github.com/k-obata-3/leave-connect-api/internal/messaging/kafka"

	kafkago "github.com/segmentio/kafka-go"
)

func publishEvent(ctx context.Context, writer *kafkago.Writer, event kafka.OutboxEvent) error {
	msg := kafkago.Message{
		Topic: event.Topic,
		Key:   []byte(event.AggregateID),
		Value: event.Payload,
		Headers: []kafkago.Header{
			{Key: "event_type", Value: []byte(event.EventType)},
			{Key: "aggregate_type", Value: []byte(event.AggregateType)},
			{Key: "request_id", Value: []byte(event.RequestID)},
		},
	}

	return writer.WriteMessages(ctx, msg)
}
