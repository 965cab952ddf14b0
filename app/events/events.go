package events

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// TopicProductionCommitted is the default topic for committed production runs.
const TopicProductionCommitted = "production.committed"

// Publisher defines an interface for publishing events to a message broker.
type Publisher interface {
	PublishEvent(ctx context.Context, topic string, key string, event any) error
	Close() error
}

// MaterialConsumed is one material deduction inside a committed run.
type MaterialConsumed struct {
	MaterialID     uint  `json:"materialId"`
	Quantity       int64 `json:"quantity"`
	RemainingStock int64 `json:"remainingStock"`
}

// ProductionCommitted is emitted after a production run has been committed.
type ProductionCommitted struct {
	RunID       uuid.UUID          `json:"runId"`
	ProductID   uint               `json:"productId"`
	ProductName string             `json:"productName"`
	Quantity    int64              `json:"quantity"`
	Consumed    []MaterialConsumed `json:"consumed"`
	CommittedAt time.Time          `json:"committedAt"`
}

// Notifier publishes production events on a fixed topic.
type Notifier struct {
	publisher Publisher
	topic     string
}

func NewNotifier(p Publisher, topic string) *Notifier {
	if topic == "" {
		topic = TopicProductionCommitted
	}
	return &Notifier{publisher: p, topic: topic}
}

// ProductionCommitted publishes e keyed by product id, so runs of one product
// stay ordered within a partition.
func (n *Notifier) ProductionCommitted(ctx context.Context, e ProductionCommitted) error {
	key := "product-" + strconv.FormatUint(uint64(e.ProductID), 10)
	return n.publisher.PublishEvent(ctx, n.topic, key, e)
}
