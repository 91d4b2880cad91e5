package events

import (
	"context"
	"fmt"

	"github.com/segmentio/kafka-go"
)

type KafkaPublisher struct {
	writer *kafka.Writer
}

func NewKafkaPublisher(topic string, brokers ...string) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
	}
	return &KafkaPublisher{writer: w}
}

func (p *KafkaPublisher) Publish(ctx context.Context, e Event) error {
	msg := kafka.Message{
		Key:   []byte(e.Key),
		Value: e.Payload,
		Headers: []kafka.Header{
			{Key: headerEventType, Value: []byte(e.Type)},
			{Key: headerEventID, Value: []byte(e.ID)},
			{Key: headerSource, Value: []byte(e.Source)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish %s event %s: %w", e.Type, e.ID, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

func header(m kafka.Message, key string) string {
	for _, h := range m.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}
