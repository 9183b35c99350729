// Package kafka publishes JSON messages through a sarama sync producer.
package kafka

import (
	"context"
	"errors"
	"fmt"

	"github.com/IBM/sarama"
	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/huynhanx03/go-crud/pkg/settings"
)

// Message is one record to publish. Value is JSON encoded.
type Message struct {
	Topic   string
	Key     string
	Value   any
	Headers map[string]string
}

// Producer sends messages synchronously and waits for every ack.
type Producer struct {
	producer sarama.SyncProducer
	logger   *zap.Logger
}

// NewProducer connects to cfg.Brokers.
func NewProducer(cfg settings.Kafka, logger *zap.Logger) (*Producer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, ErrNoBrokers
	}
	p, err := sarama.NewSyncProducer(cfg.Brokers, NewConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProducerFailed, err)
	}
	return NewProducerFrom(p, logger), nil
}

// NewProducerFrom wraps an existing sync producer.
func NewProducerFrom(p sarama.SyncProducer, logger *zap.Logger) *Producer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Producer{producer: p, logger: logger.Named("kafka")}
}

// Publish sends msgs as one batch. Either all encode or nothing is sent.
func (p *Producer) Publish(ctx context.Context, msgs ...Message) error {
	if len(msgs) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	records := make([]*sarama.ProducerMessage, 0, len(msgs))
	for _, m := range msgs {
		rec, err := encode(m)
		if err != nil {
			return err
		}
		records = append(records, rec)
	}

	if err := p.producer.SendMessages(records); err != nil {
		var perrs sarama.ProducerErrors
		if errors.As(err, &perrs) {
			p.logger.Warn("publish partially failed", zap.Int("failed", len(perrs)), zap.Int("total", len(records)))
		}
		return fmt.Errorf("%w: %v", ErrPublishFailed, err)
	}

	p.logger.Debug("published", zap.Int("count", len(records)))
	return nil
}

// Close flushes and closes the underlying producer.
func (p *Producer) Close() error {
	return p.producer.Close()
}

func encode(m Message) (*sarama.ProducerMessage, error) {
	b, err := json.Marshal(m.Value)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncodeFailed, err)
	}

	rec := &sarama.ProducerMessage{Topic: m.Topic, Value: sarama.ByteEncoder(b)}
	if m.Key != "" {
		rec.Key = sarama.StringEncoder(m.Key)
	}
	for k, v := range m.Headers {
		rec.Headers = append(rec.Headers, sarama.RecordHeader{Key: []byte(k), Value: []byte(v)})
	}
	return rec, nil
}
