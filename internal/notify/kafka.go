package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"visuplant/internal/platform/kafka"
)

// KafkaPublisher publishes events to the unit-events topic, keyed by unit
// code so per-unit ordering is preserved.
type KafkaPublisher struct {
	producer *kafka.Producer
}

func NewKafkaPublisher(producer *kafka.Producer) *KafkaPublisher {
	return &KafkaPublisher{producer: producer}
}

func (p *KafkaPublisher) Publish(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal unit event: %w", err)
	}
	return p.producer.Publish(ctx, []byte(event.UnitCode), payload)
}
