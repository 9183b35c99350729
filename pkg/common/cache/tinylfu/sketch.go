package tinylfu

import (
	"math/rand/v2"

	"github.com/huynhanx03/go-crud/pkg/utils"
)

const (
	cmDepth      = 4
	counterShift = 4
	maxCount     = 15
	agingMask    = 0x77
)

// sketch is a Count-Min sketch with 4-bit counters. Not safe for concurrent use.
type sketch struct {
	rows [cmDepth]cmRow
	seed [cmDepth]uint64
	mask uint64
}

func newSketch(numCounters int64) *sketch {
	n := utils.CeilToPowerOfTwo(int(numCounters))
	s := &sketch{mask: uint64(n - 1)}
	for i := range s.rows {
		s.seed[i] = rand.Uint64()
		s.rows[i] = make(cmRow, n/2)
	}
	return s
}

func (s *sketch) increment(h uint64) {
	for i := range s.rows {
		s.rows[i].increment((h ^ s.seed[i]) & s.mask)
	}
}

func (s *sketch) estimate(h uint64) int64 {
	lowest := byte(maxCount)
	for i := range s.rows {
		if v := s.rows[i].get((h ^ s.seed[i]) & s.mask); v < lowest {
			lowest = v
		}
	}
	return int64(lowest)
}

// reset halves every counter.
func (s *sketch) reset() {
	for _, r := range s.rows {
		r.reset()
	}
}

func (s *sketch) clear() {
	for _, r := range s.rows {
		clear(r)
	}
}

// cmRow packs two counters per byte.
type cmRow []byte

func (r cmRow) get(n uint64) byte {
	return (r[n/2] >> ((n & 1) * counterShift)) & maxCount
}

func (r cmRow) increment(n uint64) {
	s := (n & 1) * counterShift
	i := n / 2
	if (r[i]>>s)&maxCount < maxCount {
		r[i] += 1 << s
	}
}

func (r cmRow) reset() {
	for i := range r {
		r[i] = (r[i] >> 1) & agingMask
	}
}
