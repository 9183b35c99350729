package batcher

import (
	"errors"
	"sync"
	"time"
)

const DefaultSize = 512

// ErrClosed is returned by Push after Close.
var ErrClosed = errors.New("batcher: closed")

// Batcher buffers items and hands them to a Consumer in batches, either when
// Size items are pending or when Interval elapses with a partial batch.
//
// Consume is called with the lock released, one batch at a time.
type Batcher[T any] struct {
	cons    Consumer[T]
	size    int
	onError func(error, int)

	mu      sync.Mutex
	flushMu sync.Mutex
	buf     []T
	closed  bool

	stop chan struct{}
	done chan struct{}
}

// New starts a Batcher for cons.
func New[T any](cons Consumer[T], cfg Config) *Batcher[T] {
	if cfg.Size <= 0 {
		cfg.Size = DefaultSize
	}

	b := &Batcher[T]{
		cons:    cons,
		size:    cfg.Size,
		onError: cfg.OnError,
		buf:     make([]T, 0, cfg.Size),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}

	if cfg.Interval > 0 {
		go b.loop(cfg.Interval)
	} else {
		close(b.done)
	}
	return b
}

func (b *Batcher[T]) loop(interval time.Duration) {
	defer close(b.done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			b.Flush()
		case <-b.stop:
			return
		}
	}
}

// Push adds an item, flushing synchronously when the buffer reaches Size.
func (b *Batcher[T]) Push(item T) error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return ErrClosed
	}
	b.buf = append(b.buf, item)
	full := len(b.buf) >= b.size
	b.mu.Unlock()

	if full {
		b.Flush()
	}
	return nil
}

// Len reports the number of pending items.
func (b *Batcher[T]) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.buf)
}

// Flush hands every pending item to the consumer.
func (b *Batcher[T]) Flush() {
	b.flushMu.Lock()
	defer b.flushMu.Unlock()

	b.mu.Lock()
	if len(b.buf) == 0 {
		b.mu.Unlock()
		return
	}
	batch := b.buf
	b.buf = make([]T, 0, b.size)
	b.mu.Unlock()

	if err := b.cons.Consume(batch); err != nil && b.onError != nil {
		b.onError(err, len(batch))
	}
}

// Close stops the ticker and flushes what is left. It is safe to call twice.
func (b *Batcher[T]) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	b.mu.Unlock()

	select {
	case <-b.done:
	default:
		close(b.stop)
		<-b.done
	}
	b.Flush()
}
