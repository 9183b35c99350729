package hash

import (
	"encoding/binary"
	"reflect"

	"github.com/cespare/xxhash/v2"

	"github.com/huynhanx03/go-crud/pkg/constraints"
)

// Key hashes an entity key with xxhash. The result is stable across processes,
// so it can pick shards and partitions alike.
func Key[K constraints.ID](key K) uint64 {
	v := reflect.ValueOf(key)
	switch v.Kind() {
	case reflect.String:
		return xxhash.Sum64String(v.String())
	case reflect.Int, reflect.Int32, reflect.Int64:
		return Uint64(uint64(v.Int()))
	case reflect.Uint32, reflect.Uint64:
		return Uint64(v.Uint())
	case reflect.Array:
		b := make([]byte, v.Len())
		for i := range b {
			b[i] = byte(v.Index(i).Uint())
		}
		return xxhash.Sum64(b)
	default:
		panic("hash: key type not supported")
	}
}

// Uint64 hashes the little-endian bytes of n.
func Uint64(n uint64) uint64 {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], n)
	return xxhash.Sum64(buf[:])
}

// String hashes s.
func String(s string) uint64 {
	return xxhash.Sum64String(s)
}

// Int64 hashes an int64 key.
func Int64(n int64) uint64 {
	return Uint64(uint64(n))
}
