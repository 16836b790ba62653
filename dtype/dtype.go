// Package dtype - Floating-point representations used by tensors and precision plugins.
package dtype

import (
	"fmt"
	"math"

	"github.com/x448/float16"
)

// DType identifies the floating-point representation of a tensor's elements.
type DType uint8

// Supported element representations.
const (
	// Invalid is the zero value and never a valid element representation.
	Invalid DType = iota
	// Float16 is IEEE 754 half precision: 1 sign, 5 exponent, 10 mantissa bits.
	Float16
	// BFloat16 is the brain floating-point format: 1 sign, 8 exponent, 7 mantissa bits.
	// Same exponent range as Float32, truncated mantissa.
	BFloat16
	// Float32 is IEEE 754 single precision.
	Float32
	// Float64 is IEEE 754 double precision.
	Float64
)

// String returns the canonical lower-case name of the dtype.
func (d DType) String() string {
	switch d {
	case Float16:
		return "float16"
	case BFloat16:
		return "bfloat16"
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	default:
		return fmt.Sprintf("invalid(%d)", uint8(d))
	}
}

// Size returns the number of bytes a single element occupies.
func (d DType) Size() int {
	switch d {
	case Float16, BFloat16:
		return 2
	case Float32:
		return 4
	case Float64:
		return 8
	default:
		return 0
	}
}

// Valid reports whether d is one of the supported representations.
func (d DType) Valid() bool {
	return d >= Float16 && d <= Float64
}

// ParseDType maps a canonical name back to its DType.
//
// Arguments:
// - name: One of "float16", "bfloat16", "float32", "float64".
//
// Returns:
// - DType: The parsed dtype.
// - error: An error if the name is not a supported representation.
func ParseDType(name string) (DType, error) {
	switch name {
	case "float16", "fp16", "f16":
		return Float16, nil
	case "bfloat16", "bf16":
		return BFloat16, nil
	case "float32", "fp32", "f32":
		return Float32, nil
	case "float64", "fp64", "f64":
		return Float64, nil
	default:
		return Invalid, fmt.Errorf("unknown dtype name: %q", name)
	}
}

// F16FromFloat32 converts a float32 value to IEEE 754 half-precision bits,
// rounding to nearest even.
func F16FromFloat32(f float32) uint16 {
	return float16.Fromfloat32(f).Bits()
}

// F16ToFloat32 widens IEEE 754 half-precision bits to float32. Widening is
// exact: every half-precision value is representable in single precision.
func F16ToFloat32(bits uint16) float32 {
	return float16.Frombits(bits).Float32()
}

// BF16FromFloat32 converts a float32 value to bfloat16 bits.
//
// bfloat16 is the top 16 bits of the float32 encoding; the mantissa is rounded
// to nearest even rather than truncated so repeated round trips stay centered.
// NaN payloads are normalized to a quiet NaN so the rounding increment cannot
// turn a NaN into an infinity.
func BF16FromFloat32(f float32) uint16 {
	bits := math.Float32bits(f)
	if f != f {
		return uint16(bits>>16) | 0x0040
	}
	roundBit := (bits >> 16) & 1
	bits += 0x7FFF + roundBit
	return uint16(bits >> 16)
}

// BF16ToFloat32 widens bfloat16 bits to float32 by restoring the truncated
// low mantissa bits as zero. Widening is exact.
func BF16ToFloat32(bits uint16) float32 {
	return math.Float32frombits(uint32(bits) << 16)
}
