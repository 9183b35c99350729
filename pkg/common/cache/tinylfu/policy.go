package tinylfu

import (
	"math"
	"sync"
)

const maxVictims = 16

// policy decides admission and eviction from access frequency and cost.
type policy struct {
	mu      sync.Mutex
	freq    *frequency
	costs   *sampler
	maxCost int64
}

func newPolicy(maxCost, numCounters int64) *policy {
	return &policy{
		freq:    newFrequency(numCounters),
		costs:   newSampler(maxCost),
		maxCost: maxCost,
	}
}

// add admits key with cost, returning the hashes to evict to make room. A key that is
// already tracked only has its cost updated. A new key loses against a sampled resident
// that is read more often than it.
func (p *policy) add(key uint64, cost int64) ([]uint64, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if cost > p.maxCost {
		return nil, false
	}
	if p.costs.update(key, cost) {
		return nil, true
	}

	room := p.costs.roomLeft(cost)
	if room >= 0 {
		p.costs.add(key, cost)
		return nil, true
	}

	incHits := p.freq.estimate(key)
	var victims []uint64
	for room < 0 && len(victims) < maxVictims {
		sample := p.costs.sample()
		if len(sample) == 0 {
			break
		}

		minKey, minHits := uint64(0), int64(math.MaxInt64)
		for _, e := range sample {
			if hits := p.freq.estimate(e.key); hits < minHits {
				minKey, minHits = e.key, hits
			}
		}
		if incHits < minHits {
			return victims, false
		}

		p.costs.remove(minKey)
		victims = append(victims, minKey)
		room = p.costs.roomLeft(cost)
	}
	if room < 0 {
		return victims, false
	}

	p.costs.add(key, cost)
	return victims, true
}

func (p *policy) has(key uint64) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.costs.has(key)
}

func (p *policy) del(key uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.costs.remove(key)
}

func (p *policy) used() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.costs.used
}

// Consume records a batch of reads. It lets the policy sit behind a batcher.
func (p *policy) Consume(keys []uint64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, k := range keys {
		p.freq.record(k)
	}
	return nil
}

func (p *policy) clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.freq.clear()
	p.costs.clear()
}
