package mq

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

const EventTypeHeader = "event_type"

type Producer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// KafkaPublisher writes every booking update to one kafka topic. The booking
// topic name travels in the event_type header, along with the trace context.
type KafkaPublisher struct {
	producer Producer
	topic    string
	closer   func() error
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireAll,
		WriteTimeout: 5 * time.Second,
	}
	return &KafkaPublisher{producer: w, topic: topic, closer: w.Close}
}

func newKafkaPublisherWith(p Producer, topic string) *KafkaPublisher {
	return &KafkaPublisher{producer: p, topic: topic}
}

func (k *KafkaPublisher) Publish(ctx context.Context, eventType string, v interface{}) error {
	body, err := Encode(v)
	if err != nil {
		return err
	}

	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)
	headers := make([]kafka.Header, 0, len(carrier)+1)
	headers = append(headers, kafka.Header{Key: EventTypeHeader, Value: []byte(eventType)})
	for key, val := range carrier {
		headers = append(headers, kafka.Header{Key: key, Value: []byte(val)})
	}

	return k.producer.WriteMessages(ctx, kafka.Message{
		Topic:   k.topic,
		Value:   body,
		Headers: headers,
		Time:    time.Now(),
	})
}

func (k *KafkaPublisher) Close() error {
	if k.closer == nil {
		return nil
	}
	return k.closer()
}
