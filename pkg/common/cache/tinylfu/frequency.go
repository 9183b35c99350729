package tinylfu

import "math"

const doorFalsePositive = 0.01

// frequency estimates how often a key hash is read. A doorkeeper filter absorbs the
// first access so one-hit keys never reach the sketch.
type frequency struct {
	counts     *sketch
	door       *doorkeeper
	incr       int64
	resetAfter int64
}

func newFrequency(numCounters int64) *frequency {
	return &frequency{
		counts:     newSketch(numCounters),
		door:       newDoorkeeper(numCounters),
		resetAfter: numCounters,
	}
}

func (f *frequency) record(h uint64) {
	f.incr++
	if f.incr >= f.resetAfter {
		f.counts.reset()
		f.door.clear()
		f.incr = 0
	}
	if f.door.addIfNotHas(h) {
		f.counts.increment(h)
	}
}

func (f *frequency) estimate(h uint64) int64 {
	hits := f.counts.estimate(h)
	if f.door.has(h) {
		hits++
	}
	return hits
}

func (f *frequency) clear() {
	f.counts.clear()
	f.door.clear()
	f.incr = 0
}

// doorkeeper is a bloom filter over key hashes.
type doorkeeper struct {
	bits []uint64
	k    uint64
	m    uint64
}

func newDoorkeeper(capacity int64) *doorkeeper {
	if capacity < 1 {
		capacity = 1
	}
	m := uint64(math.Ceil(-float64(capacity) * math.Log(doorFalsePositive) / (math.Ln2 * math.Ln2)))
	k := uint64(math.Ceil(float64(m) / float64(capacity) * math.Ln2))
	return &doorkeeper{bits: make([]uint64, (m+63)/64), k: k, m: m}
}

// addIfNotHas sets the bits for h and reports whether they were all set already.
func (d *doorkeeper) addIfNotHas(h uint64) bool {
	delta := h>>17 | h<<47
	present := true
	for i := range d.k {
		idx := (h + i*delta) % d.m
		mask := uint64(1) << (idx % 64)
		if d.bits[idx/64]&mask == 0 {
			present = false
			d.bits[idx/64] |= mask
		}
	}
	return present
}

func (d *doorkeeper) has(h uint64) bool {
	delta := h>>17 | h<<47
	for i := range d.k {
		idx := (h + i*delta) % d.m
		if d.bits[idx/64]&(uint64(1)<<(idx%64)) == 0 {
			return false
		}
	}
	return true
}

func (d *doorkeeper) clear() { clear(d.bits) }
