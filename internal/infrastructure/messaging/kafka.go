package messaging

import (
	"context"
	"fmt"
	"time"

	kafkago "github.com/segmentio/kafka-go"
)

// Message is one record to publish.
type Message struct {
	Key     []byte
	Value   []byte
	Headers map[string]string
}

// Writer is the subset of *kafka.Writer the producer needs.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Producer publishes to a single topic.
type Producer struct {
	w     Writer
	topic string
}

// NewProducer builds a kafka-go writer for topic on brokers.
func NewProducer(brokers []string, topic string) *Producer {
	return NewProducerWithWriter(&kafkago.Writer{
		Addr:                   kafkago.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafkago.Hash{},
		BatchTimeout:           10 * time.Millisecond,
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}, topic)
}

func NewProducerWithWriter(w Writer, topic string) *Producer {
	return &Producer{w: w, topic: topic}
}

func (p *Producer) Topic() string { return p.topic }

func (p *Producer) Publish(ctx context.Context, messages ...Message) error {
	if len(messages) == 0 {
		return nil
	}
	out := make([]kafkago.Message, 0, len(messages))
	for _, m := range messages {
		km := kafkago.Message{Key: m.Key, Value: m.Value}
		for k, v := range m.Headers {
			km.Headers = append(km.Headers, kafkago.Header{Key: k, Value: []byte(v)})
		}
		out = append(out, km)
	}
	if err := p.w.WriteMessages(ctx, out...); err != nil {
		return fmt.Errorf("kafka publish to %s: %w", p.topic, err)
	}
	return nil
}

func (p *Producer) Close() error { return p.w.Close() }
