package grib

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodeString(t *testing.T) {
	c, err := NewCode(2, 0, 3, 1)
	require.NoError(t, err)
	assert.Equal(t, "GRIB2:d000c003n001", c.String())

	c, err = NewCode(1, 2, 98, 33)
	require.NoError(t, err)
	assert.Equal(t, "GRIB1:t002c098n033", c.String())
}

func TestCodeRoundTrip(t *testing.T) {
	for _, edition := range []int{1, 2} {
		for _, fields := range [][3]int{{0, 0, 0}, {0, 3, 1}, {2, 98, 130}, {192, 201, 255}} {
			name := fmt.Sprintf("ed%d_%v", edition, fields)
			t.Run(name, func(t *testing.T) {
				orig, err := NewCode(edition, fields[0], fields[1], fields[2])
				require.NoError(t, err)
				parsed, err := ParseCode(orig.String())
				require.NoError(t, err)
				assert.Equal(t, orig, parsed)
			})
		}
	}
}

func TestParseCodeLiberal(t *testing.T) {
	c, err := ParseCode("grib 2 : discipline 0, category 3, number 1")
	require.NoError(t, err)
	assert.Equal(t, Code{Edition: 2, Discipline: 0, Category: 3, Number: 1}, c)
}

func TestParseCodeErrors(t *testing.T) {
	t.Run("too few numbers", func(t *testing.T) {
		_, err := ParseCode("GRIB2:d000c003")
		assert.ErrorContains(t, err, "requires 4 numbers, separated by non-numerals")
	})

	t.Run("bad edition", func(t *testing.T) {
		_, err := ParseCode("GRIB3:d000c003n001")
		assert.ErrorContains(t, err, "invalid grib edition 3")
	})
}

func TestNewCodeRejectsBadEdition(t *testing.T) {
	_, err := NewCode(7, 0, 0, 0)
	assert.ErrorContains(t, err, "invalid grib edition 7: expected 1 or 2")
}
