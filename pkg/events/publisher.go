package events

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	PaymentCreated   = "payment.created"
	PaymentSucceeded = "payment.success"
	PaymentFailed    = "payment.failed"
	OrderCreated     = "order.created"
)

// Envelope wraps every event emitted by the gateway.
type Envelope struct {
	EventID      string      `json:"event_id"`
	EventName    string      `json:"event_name"`
	EventVersion int         `json:"event_version"`
	Producer     string      `json:"producer"`
	PartitionKey string      `json:"partition_key"`
	OccurredAt   time.Time   `json:"occurred_at"`
	Payload      interface{} `json:"payload"`
}

type Publisher interface {
	Publish(ctx context.Context, eventName, partitionKey string, payload interface{}) error
	Close() error
}

func NewEnvelope(producer, eventName, partitionKey string, payload interface{}) Envelope {
	return Envelope{
		EventID:      uuid.NewString(),
		EventName:    eventName,
		EventVersion: 1,
		Producer:     producer,
		PartitionKey: partitionKey,
		OccurredAt:   time.Now().UTC(),
		Payload:      payload,
	}
}

// LogPublisher writes events to the log. Used when no broker is configured.
type LogPublisher struct {
	log *zap.Logger
}

func NewLogPublisher(log *zap.Logger) *LogPublisher {
	return &LogPublisher{log: log}
}

func (p *LogPublisher) Publish(_ context.Context, eventName, partitionKey string, _ interface{}) error {
	p.log.Info("event published",
		zap.String("event", eventName),
		zap.String("partition_key", partitionKey))
	return nil
}

func (p *LogPublisher) Close() error { return nil }
