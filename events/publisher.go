// Package events publishes domain events about products and orders.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"blockflow/logger"

	"github.com/segmentio/kafka-go"
)

const (
	ProductCreated = "product.created"
	ProductUpdated = "product.updated"
	ProductDeleted = "product.deleted"
	ProductViewed  = "product.viewed"
	OrderCreated   = "order.created"
)

type Publisher interface {
	Publish(ctx context.Context, eventType, key string, event interface{}) error
}

// Nop discards every event.
type Nop struct{}

func (Nop) Publish(context.Context, string, string, interface{}) error { return nil }

// Envelope wraps an event payload with its type and emission time.
type Envelope struct {
	Type      string      `json:"type"`
	Payload   interface{} `json:"payload"`
	Timestamp time.Time   `json:"timestamp"`
}

// Kafka writes events as JSON envelopes to a single topic, keyed by entity id.
// The event type travels both in the envelope and in the "type" header.
type Kafka struct {
	writer *kafka.Writer
}

func NewKafka(brokers []string, topic string) *Kafka {
	return &Kafka{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireOne,
			AllowAutoTopicCreation: true,
			BatchTimeout:           50 * time.Millisecond,
		},
	}
}

func (k *Kafka) Publish(ctx context.Context, eventType, key string, event interface{}) error {
	body, err := json.Marshal(Envelope{Type: eventType, Payload: event, Timestamp: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("encode %s event: %w", eventType, err)
	}

	msg := kafka.Message{
		Key:     []byte(key),
		Value:   body,
		Headers: []kafka.Header{{Key: "type", Value: []byte(eventType)}},
	}
	if err := k.writer.WriteMessages(ctx, msg); err != nil {
		logger.Error(ctx, "kafka publish failed", "type", eventType, "key", key, "error", err)
		return fmt.Errorf("publish %s event: %w", eventType, err)
	}
	return nil
}

func (k *Kafka) Close() error {
	return k.writer.Close()
}
