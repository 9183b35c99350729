package batcher

import "time"

// Consumer processes a batch of items. The batch is owned by the consumer.
type Consumer[T any] interface {
	Consume(batch []T) error
}

// ConsumerFunc adapts a function to Consumer.
type ConsumerFunc[T any] func(batch []T) error

func (f ConsumerFunc[T]) Consume(batch []T) error { return f(batch) }

// Config holds configuration for the Batcher.
type Config struct {
	// Size is the number of buffered items that triggers a flush.
	Size int
	// Interval flushes a partial batch periodically. Zero disables the ticker.
	Interval time.Duration
	// OnError receives errors returned by the consumer. Nil drops them.
	OnError func(err error, batch int)
}
