package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

// KafkaPublisher writes envelopes to a single topic keyed by location id, so
// events of one location keep their order within a partition.
type KafkaPublisher struct {
	w *kafka.Writer
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		w: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			BatchTimeout: 50 * time.Millisecond,
			WriteTimeout: 5 * time.Second,
		},
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, envelopes ...Envelope) error {
	if len(envelopes) == 0 {
		return nil
	}
	msgs := make([]kafka.Message, 0, len(envelopes))
	for _, env := range envelopes {
		msg, err := toMessage(env)
		if err != nil {
			return err
		}
		msgs = append(msgs, msg)
	}
	if err := p.w.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("write %d events: %w", len(msgs), err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.w.Close()
}

func toMessage(env Envelope) (kafka.Message, error) {
	value, err := json.Marshal(env)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("marshal event %s: %w", env.EventType, err)
	}
	headers := []kafka.Header{
		{Key: "event-type", Value: []byte(env.EventType)},
		{Key: "event-id", Value: []byte(env.EventID)},
		{Key: "content-type", Value: []byte("application/json")},
	}
	if env.CorrelationID != "" {
		headers = append(headers, kafka.Header{Key: "correlation-id", Value: []byte(env.CorrelationID)})
	}
	return kafka.Message{
		Key:     []byte(env.LocationID),
		Value:   value,
		Headers: headers,
		Time:    env.OccurredAt,
	}, nil
}
