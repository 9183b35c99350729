package utils

import "math/bits"

// CeilToPowerOfTwo rounds n up to a power of two, with 2 as the floor.
func CeilToPowerOfTwo(n int) int {
	if n <= 2 {
		return 2
	}
	shift := bits.Len(uint(n - 1))
	if shift >= bits.UintSize-1 {
		panic("argument is too large")
	}
	return 1 << shift
}

// Coalesce returns v, or def when v is the zero value.
func Coalesce[T comparable](v, def T) T {
	var zero T
	if v == zero {
		return def
	}
	return v
}
