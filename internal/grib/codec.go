package grib

import (
	"fmt"
	"math"
)

// Unscale applies Regulation 92.1.12: value / 10^factor. A missing sentinel
// in either operand propagates as NaN rather than failing.
func Unscale(value, factor int64) float64 {
	if value == MDI || factor == MDI {
		return math.NaN()
	}
	return float64(value) / math.Pow(10, float64(factor))
}

// UnscaleAll applies Unscale element-wise with a shared factor.
func UnscaleAll(values []int64, factor int64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = Unscale(v, factor)
	}
	return out
}

// EncodeScaled is the encode direction of the codec with the scale factor
// fixed at zero: the nearest integer to v.
func EncodeScaled(v float64) int64 {
	return int64(math.Round(v))
}

// Float32AsInt32 reinterprets an IEEE 32-bit float as the signed integer
// whose on-wire representation matches the float's bit pattern, using the
// sign-and-magnitude convention: a set sign bit maps to 0x80000000 minus
// the magnitude. Used for wire fields the codec API treats as signed
// 4-byte integers.
func Float32AsInt32(v float32) int64 {
	u := math.Float32bits(v)
	if u >= 0x80000000 {
		return 0x80000000 - int64(u)
	}
	return int64(u)
}

// Int32AsUint32 maps a signed value onto the sign-and-magnitude unsigned
// form some wire fields expect: negative values become 0x80000000 plus the
// magnitude. Values outside the representable range fail.
func Int32AsUint32(v int64) (uint32, error) {
	if v < -0x7fffffff || v > 0x7fffffff {
		return 0, fmt.Errorf("value out of range -2147483647 to 2147483647: %d", v)
	}
	if v < 0 {
		return uint32(0x80000000 - v), nil
	}
	return uint32(v), nil
}

// Int32AsFloat32 inverts Float32AsInt32, recovering the IEEE float whose
// bit pattern a signed wire field carried.
func Int32AsFloat32(v int64) float32 {
	if v < 0 {
		v = 0x80000000 - v
	}
	return math.Float32frombits(uint32(v))
}

const twoToThirty = int64(1) << 30

// HindcastFix reinterprets suspiciously large raw forecastTime values as
// negative periods. The wire format cannot hold a negative forecast time;
// a historical workaround stores -T as 2*2^30 + T, so raw values strictly
// inside (2*2^30, 3*2^30) are mapped back to -(raw - 2*2^30). Values at or
// beyond the boundaries pass through unchanged.
func HindcastFix(forecastTime int64, opts Options) int64 {
	if forecastTime > 2*twoToThirty && forecastTime < 3*twoToThirty {
		fixed := -(forecastTime - 2*twoToThirty)
		opts.WarnUnsupported("re-interpreting large grib forecastTime from %d to %d", forecastTime, fixed)
		return fixed
	}
	return forecastTime
}
