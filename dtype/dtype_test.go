package dtype

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDTypeSizeAndString(t *testing.T) {
	cases := []struct {
		dt   DType
		name string
		size int
	}{
		{Float16, "float16", 2},
		{BFloat16, "bfloat16", 2},
		{Float32, "float32", 4},
		{Float64, "float64", 8},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.name, tc.dt.String())
			assert.Equal(t, tc.size, tc.dt.Size())
			assert.True(t, tc.dt.Valid())
		})
	}
	assert.False(t, Invalid.Valid())
	assert.Equal(t, 0, Invalid.Size())
}

func TestParseDType(t *testing.T) {
	cases := []struct {
		name string
		want DType
	}{
		{"float16", Float16},
		{"fp16", Float16},
		{"bf16", BFloat16},
		{"bfloat16", BFloat16},
		{"float32", Float32},
		{"f64", Float64},
	}
	for _, tc := range cases {
		got, err := ParseDType(tc.name)
		assert.NoError(t, err)
		assert.Equal(t, tc.want, got)
	}

	_, err := ParseDType("int8")
	assert.Error(t, err)
}

func TestF16Conversions(t *testing.T) {
	// Values exactly representable in half precision survive the round trip.
	for _, v := range []float32{0, 1, -1, 1.5, 0.25, -2.75, 65504} {
		assert.Equal(t, v, F16ToFloat32(F16FromFloat32(v)), "value %g", v)
	}

	// Overflow saturates to infinity.
	assert.True(t, math.IsInf(float64(F16ToFloat32(F16FromFloat32(1e6))), 1))
	assert.True(t, math.IsInf(float64(F16ToFloat32(F16FromFloat32(-1e6))), -1))

	// NaN stays NaN.
	nan := float32(math.NaN())
	out := F16ToFloat32(F16FromFloat32(nan))
	assert.True(t, out != out)
}

func TestBF16Conversions(t *testing.T) {
	// bfloat16 keeps float32's exponent range, so powers of two and small
	// fractions with short mantissas are exact.
	for _, v := range []float32{0, 1, -1, 1.5, 0.5, -0.25, -0.75, 256, 65536} {
		assert.Equal(t, v, BF16ToFloat32(BF16FromFloat32(v)), "value %g", v)
	}

	// Narrowing rounds rather than truncates: 1.0039... (1 + 2^-8) is closer
	// to 1.0078125 (1 + 2^-7) than to 1 after rounding the 8th mantissa bit.
	got := BF16ToFloat32(BF16FromFloat32(1.00390625))
	assert.InDelta(t, 1.00390625, got, 0.004)

	// Infinities pass through, NaN stays NaN.
	inf := float32(math.Inf(1))
	assert.Equal(t, inf, BF16ToFloat32(BF16FromFloat32(inf)))
	nan := BF16ToFloat32(BF16FromFloat32(float32(math.NaN())))
	assert.True(t, nan != nan)
}

func TestBF16RoundToNearestEven(t *testing.T) {
	// A value exactly halfway between two bfloat16 values rounds to the one
	// with an even low mantissa bit.
	v := math.Float32frombits(0x3F808000) // 1 + 2^-8, exact tie
	bits := BF16FromFloat32(v)
	assert.Equal(t, uint16(0x3F80), bits&0xFFFE, "tie must round to even")
}
