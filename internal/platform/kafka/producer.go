// Package kafka publishes domain events to Kafka topics.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"coin_backend/internal/shared/events"
)

// messageWriter は kafka.Writer のうち Producer が使うメソッドです。
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Message is a message to publish. Value is encoded as JSON.
type Message struct {
	Key     string
	Value   any
	Headers []kafka.Header
}

// Producer keeps one writer per topic.
type Producer struct {
	mu        sync.Mutex
	writers   map[string]messageWriter
	newWriter func(topic string) messageWriter
	logger    *zap.Logger
	now       func() time.Time
}

// NewProducer creates a producer for brokers. Writers are created lazily.
func NewProducer(brokers []string, clientID string, logger *zap.Logger) *Producer {
	return newProducer(func(topic string) messageWriter {
		return &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.LeastBytes{},
			BatchSize:    100,
			BatchTimeout: 10 * time.Millisecond,
			RequiredAcks: kafka.RequireOne,
			Transport: &kafka.Transport{
				ClientID: clientID,
			},
		}
	}, logger)
}

func newProducer(newWriter func(string) messageWriter, logger *zap.Logger) *Producer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Producer{
		writers:   make(map[string]messageWriter),
		newWriter: newWriter,
		logger:    logger,
		now:       time.Now,
	}
}

func (p *Producer) writer(topic string) messageWriter {
	p.mu.Lock()
	defer p.mu.Unlock()
	if w, ok := p.writers[topic]; ok {
		return w
	}
	w := p.newWriter(topic)
	p.writers[topic] = w
	return w
}

// Publish sends msg to topic and waits for the broker acknowledgement.
func (p *Producer) Publish(ctx context.Context, topic string, msg Message) error {
	value, err := json.Marshal(msg.Value)
	if err != nil {
		return fmt.Errorf("marshal %s message: %w", topic, err)
	}

	err = p.writer(topic).WriteMessages(ctx, kafka.Message{
		Key:     []byte(msg.Key),
		Value:   value,
		Headers: msg.Headers,
		Time:    p.now(),
	})
	if err != nil {
		p.logger.Error("failed to publish message",
			zap.String("topic", topic),
			zap.String("key", msg.Key),
			zap.Error(err))
		return err
	}

	p.logger.Debug("message published", zap.String("topic", topic), zap.String("key", msg.Key))
	return nil
}

// Close closes every writer.
func (p *Producer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	for topic, w := range p.writers {
		if err := w.Close(); err != nil {
			p.logger.Error("failed to close kafka writer", zap.String("topic", topic), zap.Error(err))
		}
	}
	p.writers = make(map[string]messageWriter)
	return nil
}

// AlertPublisher publishes price alerts to a single topic.
type AlertPublisher struct {
	producer *Producer
	topic    string
}

// NewAlertPublisher returns a price-alert sink backed by producer.
func NewAlertPublisher(producer *Producer, topic string) *AlertPublisher {
	return &AlertPublisher{producer: producer, topic: topic}
}

// PriceAlert publishes alert keyed by user and coin, so alerts for the same
// coin stay ordered within a partition.
func (a *AlertPublisher) PriceAlert(ctx context.Context, alert events.PriceAlert) error {
	return a.producer.Publish(ctx, a.topic, Message{
		Key:   alert.Key(),
		Value: alert,
		Headers: []kafka.Header{
			{Key: "event", Value: []byte("price_alert")},
		},
	})
}
