package timer

import (
	"sync"
	"sync/atomic"
	"time"
)

// Timer is a clock that may hold resources until stopped.
type Timer interface {
	Now() time.Time
	Stop()
}

// System reads the wall clock directly.
type System struct{}

func (System) Now() time.Time { return time.Now() }
func (System) Stop()          {}

// CachedTimer refreshes a shared timestamp every step.
type CachedTimer struct {
	now    atomic.Value
	step   time.Duration
	ticker *time.Ticker
	done   chan struct{}
	once   sync.Once
	wg     sync.WaitGroup
}

func NewCachedTimer(step time.Duration) *CachedTimer {
	if step <= 0 {
		step = time.Millisecond
	}
	t := &CachedTimer{
		step:   step,
		ticker: time.NewTicker(step),
		done:   make(chan struct{}),
	}
	t.now.Store(time.Now())

	t.wg.Add(1)
	go t.run()

	return t
}

func (t *CachedTimer) run() {
	defer t.wg.Done()

	for {
		select {
		case now := <-t.ticker.C:
			t.now.Store(now)
		case <-t.done:
			t.ticker.Stop()
			return
		}
	}
}

func (t *CachedTimer) Now() time.Time {
	return t.now.Load().(time.Time)
}

// Stop halts the refresh goroutine. Later calls are no-ops.
func (t *CachedTimer) Stop() {
	t.once.Do(func() { close(t.done) })
	t.wg.Wait()
}
