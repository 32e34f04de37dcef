// Package safe provides integer narrowing helpers with range validation.
package safe

import (
	"fmt"
	"math"
)

type integer interface {
	~int | ~int32 | ~int64 | ~uint | ~uint32 | ~uint64
}

// Uint16 narrows an integer to uint16, failing when the value is negative or
// exceeds math.MaxUint16.
func Uint16[T integer](v T) (uint16, error) {
	if v < 0 {
		return 0, fmt.Errorf("value %d out of uint16 range", v)
	}
	if uint64(v) > math.MaxUint16 {
		return 0, fmt.Errorf("value %d out of uint16 range", v)
	}
	return uint16(v), nil
}

// Uint32 narrows an integer to uint32, failing when the value is negative or
// exceeds math.MaxUint32.
func Uint32[T integer](v T) (uint32, error) {
	if v < 0 {
		return 0, fmt.Errorf("value %d out of uint32 range", v)
	}
	if uint64(v) > math.MaxUint32 {
		return 0, fmt.Errorf("value %d out of uint32 range", v)
	}
	return uint32(v), nil
}
