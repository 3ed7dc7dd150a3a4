package kafka

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Producer publishes dropship integration events. Publishing is best-effort:
// callers log-and-continue on failure, a broker outage never fails an order.
type Producer struct {
	writer *kafka.Writer
	topic  string
}

func NewProducer(brokers []string, topic string) *Producer {
	writer := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Topic:    topic,
		Balancer: &kafka.LeastBytes{},
	}
	return &Producer{writer: writer, topic: topic}
}

// Publish marshals the event and writes it keyed by key.
func (p *Producer) Publish(ctx context.Context, key string, event interface{}) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: data,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		zap.L().Warn("failed to write kafka message",
			zap.String("topic", p.topic),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func (p *Producer) Close() {
	_ = p.writer.Close()
}
