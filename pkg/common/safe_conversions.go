package common

import (
	"fmt"
	"math"
)

// MaxUint24 is the largest word count a packet header can declare.
const MaxUint24 = 0xFFFFFF

// SafeIntToUint24 safely converts int to a 24-bit word count with bounds checking
func SafeIntToUint24(value int) (uint32, error) {
	if value < 0 || value > MaxUint24 {
		return 0, fmt.Errorf("value %d out of range for 24-bit word count (0-%d)", value, MaxUint24)
	}
	return uint32(value), nil
}

// SafeIntToUint32 safely converts int to uint32 with bounds checking
func SafeIntToUint32(value int) (uint32, error) {
	if value < 0 {
		return 0, fmt.Errorf("value %d is negative, cannot convert to uint32", value)
	}
	if value > math.MaxUint32 {
		return 0, fmt.Errorf("value %d out of range for uint32 (0-%d)", value, uint32(math.MaxUint32))
	}
	return uint32(value), nil
}

// SafeUint32ToUint8 safely converts uint32 to uint8 with clamping (for color components)
func SafeUint32ToUint8(value uint32) uint8 {
	// For color components, we typically want to clamp rather than error
	if value > math.MaxUint8 {
		return math.MaxUint8
	}
	return uint8(value)
}
