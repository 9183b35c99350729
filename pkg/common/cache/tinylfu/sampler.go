package tinylfu

const sampleSize = 5

type costEntry struct {
	key  uint64
	cost int64
}

// sampler tracks the cost of every admitted key and hands out small samples
// for eviction. Map iteration order supplies the randomness.
type sampler struct {
	costs   map[uint64]int64
	maxCost int64
	used    int64
}

func newSampler(maxCost int64) *sampler {
	return &sampler{costs: make(map[uint64]int64), maxCost: maxCost}
}

// roomLeft returns the capacity left after adding cost; negative means eviction is needed.
func (s *sampler) roomLeft(cost int64) int64 {
	return s.maxCost - (s.used + cost)
}

func (s *sampler) sample() []costEntry {
	buf := make([]costEntry, 0, min(len(s.costs), sampleSize))
	for key, cost := range s.costs {
		buf = append(buf, costEntry{key: key, cost: cost})
		if len(buf) == sampleSize {
			break
		}
	}
	return buf
}

func (s *sampler) has(key uint64) bool {
	_, ok := s.costs[key]
	return ok
}

// update changes the cost of a tracked key and reports whether it was tracked.
func (s *sampler) update(key uint64, cost int64) bool {
	old, ok := s.costs[key]
	if !ok {
		return false
	}
	s.used += cost - old
	s.costs[key] = cost
	return true
}

func (s *sampler) add(key uint64, cost int64) {
	if s.update(key, cost) {
		return
	}
	s.costs[key] = cost
	s.used += cost
}

func (s *sampler) remove(key uint64) {
	if cost, ok := s.costs[key]; ok {
		s.used -= cost
		delete(s.costs, key)
	}
}

func (s *sampler) clear() {
	s.costs = make(map[uint64]int64)
	s.used = 0
}
