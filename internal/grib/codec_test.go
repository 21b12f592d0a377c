package grib

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnscale(t *testing.T) {
	tests := []struct {
		name   string
		value  int64
		factor int64
		want   float64
	}{
		{name: "identity", value: 53, factor: 0, want: 53},
		{name: "tenths", value: 53, factor: 1, want: 5.3},
		{name: "microdegrees", value: 114990304, factor: 6, want: 114.990304},
		{name: "negative factor", value: 3, factor: -2, want: 300},
		{name: "negative value", value: -1500, factor: 2, want: -15},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Unscale(tt.value, tt.factor), 1e-12)
		})
	}
}

func TestUnscaleMissingPropagates(t *testing.T) {
	assert.True(t, math.IsNaN(Unscale(MDI, 0)))
	assert.True(t, math.IsNaN(Unscale(10, MDI)))

	got := UnscaleAll([]int64{1, MDI, 3}, 1)
	assert.InDelta(t, 0.1, got[0], 1e-12)
	assert.True(t, math.IsNaN(got[1]))
	assert.InDelta(t, 0.3, got[2], 1e-12)
}

func TestEncodeScaledRoundTrip(t *testing.T) {
	// encode(decode(v, f)) with f = 0 must reproduce v exactly for the
	// factor-zero case, and within one ULP of the scaled form otherwise.
	for _, v := range []int64{0, 1, -1, 999999, -123456789} {
		assert.Equal(t, v, EncodeScaled(Unscale(v, 0)))
	}
}

func TestFloat32AsInt32(t *testing.T) {
	tests := []struct {
		name  string
		value float32
		want  int64
	}{
		{name: "positive zero", value: 0, want: 0},
		{name: "one", value: 1.0, want: 0x3f800000},
		{name: "negative one", value: -1.0, want: 0x80000000 - 0xbf800000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Float32AsInt32(tt.value))
		})
	}
}

func TestInt32AsUint32(t *testing.T) {
	t.Run("positive passes through", func(t *testing.T) {
		got, err := Int32AsUint32(123456)
		require.NoError(t, err)
		assert.Equal(t, uint32(123456), got)
	})

	t.Run("negative uses sign-and-magnitude", func(t *testing.T) {
		got, err := Int32AsUint32(-100000)
		require.NoError(t, err)
		assert.Equal(t, uint32(0x80000000+100000), got)
	})

	t.Run("zero round-trips through positive zero", func(t *testing.T) {
		got, err := Int32AsUint32(0)
		require.NoError(t, err)
		assert.Equal(t, uint32(0), got)
	})

	t.Run("out of range fails", func(t *testing.T) {
		_, err := Int32AsUint32(0x80000000)
		assert.ErrorContains(t, err, "out of range -2147483647 to 2147483647")
		_, err = Int32AsUint32(-0x80000000)
		assert.Error(t, err)
	})
}

func TestHindcastFix(t *testing.T) {
	const base = int64(2) << 30
	tests := []struct {
		name  string
		value int64
		want  int64
	}{
		{name: "small value unchanged", value: 6, want: 6},
		{name: "lower boundary unchanged", value: base, want: base},
		{name: "just inside window", value: base + 1, want: -1},
		{name: "top of window", value: 3*(int64(1)<<30) - 1, want: -((int64(1) << 30) - 1)},
		{name: "upper boundary unchanged", value: 3 * (int64(1) << 30), want: 3 * (int64(1) << 30)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HindcastFix(tt.value, DefaultOptions()))
		})
	}
}

func TestHindcastFixWarns(t *testing.T) {
	var msgs []string
	opts := DefaultOptions()
	opts.WarnOnUnsupported = true
	opts.Warn = func(m string) { msgs = append(msgs, m) }

	HindcastFix((int64(2)<<30)+7, opts)
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0], "re-interpreting large grib forecastTime")

	msgs = nil
	HindcastFix(6, opts)
	assert.Empty(t, msgs)
}

func TestHindcastFixWarningDisabledByDefault(t *testing.T) {
	var msgs []string
	opts := DefaultOptions()
	opts.Warn = func(m string) { msgs = append(msgs, m) }

	fixed := HindcastFix((int64(2)<<30)+7, opts)
	assert.Equal(t, int64(-7), fixed)
	assert.Empty(t, msgs)
}
