package events

import (
	"context"
	"encoding/json"
	"log/slog"
)

// LogPublisher writes events to the log instead of a broker. It is used when
// no brokers are configured.
type LogPublisher struct {
	log *slog.Logger
}

func NewLogPublisher(log *slog.Logger) *LogPublisher {
	return &LogPublisher{log: log}
}

func (p *LogPublisher) PublishEvent(ctx context.Context, topic string, key string, event any) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	p.log.InfoContext(ctx, "event", "topic", topic, "key", key, "payload", json.RawMessage(payload))
	return nil
}

func (p *LogPublisher) Close() error { return nil }

// New picks the Kafka publisher when brokers are configured.
func New(brokers []string, log *slog.Logger) Publisher {
	if len(brokers) == 0 {
		return NewLogPublisher(log)
	}
	return NewKafkaPublisher(brokers)
}
