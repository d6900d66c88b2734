package sink

import (
	"context"
	"encoding/json"
	"fmt"

	"securedeal/internal/platform/kafka"
	"securedeal/internal/validation/models"
)

// KafkaEmitter publishes finished runs to a topic, keyed by opportunity so
// consumers see one partition per deal.
type KafkaEmitter struct {
	producer *kafka.Producer
}

func NewKafkaEmitter(producer *kafka.Producer) *KafkaEmitter {
	return &KafkaEmitter{producer: producer}
}

func (e *KafkaEmitter) Emit(ctx context.Context, result models.RunResult) error {
	value, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal run %s: %w", result.ID, err)
	}
	key := []byte(result.OpportunityID)
	if len(key) == 0 {
		key = []byte(result.ID)
	}
	return e.producer.Publish(ctx, key, value)
}
