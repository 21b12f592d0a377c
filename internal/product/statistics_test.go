package product

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/gribmeta/internal/grib"
	"github.com/couchcryptid/gribmeta/internal/metadata"
)

func TestStatisticalCellMethod(t *testing.T) {
	section := grib.Section{
		"numberOfTimeRange":               int64(1),
		"typeOfStatisticalProcessing":     int64(2),
		"typeOfTimeIncrement":             int64(2),
		"timeIncrement":                   int64(0),
		"indicatorOfUnitForTimeIncrement": int64(255),
	}
	method, err := statisticalCellMethod(section, grib.DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, metadata.CellMethod{
		Method:     "maximum",
		CoordNames: []string{"time"},
	}, method)
}

func TestStatisticalCellMethodInterval(t *testing.T) {
	section := grib.Section{
		"numberOfTimeRange":               int64(1),
		"typeOfStatisticalProcessing":     int64(0),
		"typeOfTimeIncrement":             int64(2),
		"timeIncrement":                   int64(3),
		"indicatorOfUnitForTimeIncrement": int64(1),
	}
	method, err := statisticalCellMethod(section, grib.DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, "mean", method.Method)
	assert.Equal(t, []string{"3 hour"}, method.Intervals)
}

func TestStatisticalCellMethodTimeRangeCounts(t *testing.T) {
	section := grib.Section{
		"numberOfTimeRange":           int64(0),
		"typeOfStatisticalProcessing": int64(2),
	}
	_, err := statisticalCellMethod(section, grib.DefaultOptions())
	require.Error(t, err)
	assert.Contains(t, err.Error(), `aggregation over "0 time ranges"`)

	section["numberOfTimeRange"] = int64(2)
	_, err = statisticalCellMethod(section, grib.DefaultOptions())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "multiple time ranges [2]")
}

func TestStatisticalCellMethodUnsupported(t *testing.T) {
	section := grib.Section{
		"numberOfTimeRange":           int64(1),
		"typeOfStatisticalProcessing": int64(101),
	}
	_, err := statisticalCellMethod(section, grib.DefaultOptions())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported statistical process type [101]")

	section["typeOfStatisticalProcessing"] = int64(2)
	section["typeOfTimeIncrement"] = int64(1)
	_, err = statisticalCellMethod(section, grib.DefaultOptions())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "time-increment type [1]")
}
