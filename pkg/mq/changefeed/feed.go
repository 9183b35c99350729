// Package changefeed publishes entity changes to a topic in batches.
package changefeed

import (
	"context"
	"time"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/huynhanx03/go-crud/pkg/mq/batcher"
	"github.com/huynhanx03/go-crud/pkg/mq/kafka"
	"github.com/huynhanx03/go-crud/pkg/timer"
)

// Op names the kind of change.
type Op string

const (
	OpCreate Op = "create"
	OpUpdate Op = "update"
	OpDelete Op = "delete"

	headerOp       = "op"
	headerResource = "resource"
	publishTimeout = 10 * time.Second
)

// Event is the record body. Entity is a snapshot taken when the change happened
// and is empty for deletes.
type Event struct {
	Resource string          `json:"resource"`
	Op       Op              `json:"op"`
	ID       string          `json:"id"`
	Entity   json.RawMessage `json:"entity,omitempty"`
	At       time.Time       `json:"at"`
}

// Publisher sends messages to the broker.
type Publisher interface {
	Publish(ctx context.Context, msgs ...kafka.Message) error
}

// Feed buffers events for one topic and publishes them through a batcher.
// Publish failures are logged and the batch is dropped.
type Feed struct {
	topic  string
	clock  timer.Timer
	batch  *batcher.Batcher[kafka.Message]
	logger *zap.Logger
}

// NewFeed starts a Feed. Call Close to flush pending events.
func NewFeed(pub Publisher, topic string, cfg batcher.Config, clock timer.Timer, logger *zap.Logger) *Feed {
	if clock == nil {
		clock = timer.System{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	f := &Feed{topic: topic, clock: clock, logger: logger.With(zap.String("topic", topic))}

	cfg.OnError = func(err error, n int) {
		f.logger.Error("change feed publish failed", zap.Int("dropped", n), zap.Error(err))
	}
	f.batch = batcher.New[kafka.Message](batcher.ConsumerFunc[kafka.Message](func(msgs []kafka.Message) error {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()
		return pub.Publish(ctx, msgs...)
	}), cfg)
	return f
}

// Emit queues a change. entity may be nil.
func (f *Feed) Emit(resource string, op Op, id string, entity any) {
	ev := Event{Resource: resource, Op: op, ID: id, At: f.clock.Now().UTC()}
	if entity != nil {
		raw, err := json.Marshal(entity)
		if err != nil {
			f.logger.Error("change feed encode failed", zap.String("id", id), zap.Error(err))
			return
		}
		ev.Entity = raw
	}

	msg := kafka.Message{
		Topic:   f.topic,
		Key:     resource + ":" + id,
		Value:   ev,
		Headers: map[string]string{headerOp: string(op), headerResource: resource},
	}
	if err := f.batch.Push(msg); err != nil {
		f.logger.Warn("change feed closed, event dropped", zap.String("id", id), zap.String("op", string(op)))
	}
}

// Flush publishes pending events now.
func (f *Feed) Flush() { f.batch.Flush() }

// Close flushes pending events and stops the feed.
func (f *Feed) Close() { f.batch.Close() }
