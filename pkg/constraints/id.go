package constraints

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
)

// ErrInvalidID is returned when a raw key cannot be converted.
var ErrInvalidID = errors.New("invalid id")

// ID is the set of key types an entity may be identified by.
// ~[12]byte admits bson ObjectIDs without importing the mongo driver here.
type ID interface {
	~int | ~int32 | ~int64 | ~uint32 | ~uint64 | ~string | ~[12]byte
}

// ParseID converts a route segment into a key of type K.
// Key types without a textual form (ObjectIDs) need a dedicated parser.
func ParseID[K ID](raw string) (K, error) {
	var id K
	v := reflect.ValueOf(&id).Elem()

	switch v.Kind() {
	case reflect.String:
		v.SetString(raw)
	case reflect.Int, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(raw, 10, v.Type().Bits())
		if err != nil {
			return id, fmt.Errorf("%w %q: %v", ErrInvalidID, raw, err)
		}
		v.SetInt(n)
	case reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(raw, 10, v.Type().Bits())
		if err != nil {
			return id, fmt.Errorf("%w %q: %v", ErrInvalidID, raw, err)
		}
		v.SetUint(n)
	default:
		return id, fmt.Errorf("%w: no default parser for %T", ErrInvalidID, id)
	}
	return id, nil
}

// FormatID renders a key for use in URLs and cache keys.
func FormatID[K ID](id K) string {
	switch v := any(id).(type) {
	case interface{ Hex() string }:
		return v.Hex()
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(id)
	}
}

// IsZero reports whether id is the zero key.
func IsZero[K ID](id K) bool {
	var zero K
	return id == zero
}
