package product

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/gribmeta/internal/grib"
	"github.com/couchcryptid/gribmeta/internal/metadata"
)

func epochCoord(name string, hours float64) metadata.Coord {
	return metadata.Coord{
		StandardName: name,
		Units:        EpochHoursUnits,
		Points:       []float64{hours},
	}
}

func TestEpochHoursRoundTrip(t *testing.T) {
	instant := time.Date(2017, 10, 10, 6, 0, 0, 0, time.UTC)
	assert.Equal(t, instant, FromEpochHours(EpochHours(instant)))
}

func TestReferenceTimeCoord(t *testing.T) {
	ref := time.Date(2013, 3, 1, 12, 0, 0, 0, time.UTC)

	for _, significance := range []int64{0, 1} {
		coord, err := ReferenceTimeCoord(ref, significance)
		require.NoError(t, err)
		assert.Equal(t, "forecast_reference_time", coord.StandardName)
		assert.Equal(t, []float64{EpochHours(ref)}, coord.Points)
	}

	coord, err := ReferenceTimeCoord(ref, 3)
	require.NoError(t, err)
	assert.Equal(t, "time", coord.StandardName)

	_, err = ReferenceTimeCoord(ref, 2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported significance of reference time [2]")
}

func TestForecastPeriodCoord(t *testing.T) {
	section := grib.Section{
		"indicatorOfUnitOfTimeRange": int64(0), // minutes
		"forecastTime":               int64(360),
	}
	coord, err := ForecastPeriodCoord(section, grib.DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, "forecast_period", coord.StandardName)
	assert.Equal(t, "hours", coord.Units)
	assert.InDelta(t, 6.0, coord.Points[0], 1e-12)

	section["indicatorOfUnitOfTimeRange"] = int64(3)
	_, err = ForecastPeriodCoord(section, grib.DefaultOptions())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported time range unit [3]")
}

func TestForecastPeriodCoordHindcast(t *testing.T) {
	raw := int64(2*(1<<30) + 5)
	section := grib.Section{
		"indicatorOfUnitOfTimeRange": int64(1),
		"forecastTime":               raw,
	}

	opts := grib.DefaultOptions()
	opts.WarnOnUnsupported = true
	var warned []string
	opts.Warn = func(msg string) { warned = append(warned, msg) }
	coord, err := ForecastPeriodCoord(section, opts)
	require.NoError(t, err)
	assert.Equal(t, []float64{-5}, coord.Points)
	require.Len(t, warned, 1)
	assert.Contains(t, warned[0], "re-interpreting large grib forecastTime")

	opts.SupportHindcastValues = false
	coord, err = ForecastPeriodCoord(section, opts)
	require.NoError(t, err)
	assert.Equal(t, []float64{float64(raw)}, coord.Points)
}

func TestOtherTimeCoord(t *testing.T) {
	fp := metadata.Coord{
		StandardName: "forecast_period", Units: "hours", Points: []float64{6},
	}

	derived, err := OtherTimeCoord(epochCoord("forecast_reference_time", 18), fp)
	require.NoError(t, err)
	assert.Equal(t, "time", derived.StandardName)
	assert.Equal(t, []float64{24}, derived.Points)

	back, err := OtherTimeCoord(derived, fp)
	require.NoError(t, err)
	assert.Equal(t, epochCoord("forecast_reference_time", 18), back)
}

func TestOtherTimeCoordRejects(t *testing.T) {
	fp := metadata.Coord{
		StandardName: "forecast_period", Units: "hours", Points: []float64{6},
	}

	vector := epochCoord("time", 24)
	vector.Points = []float64{24, 30}
	_, err := OtherTimeCoord(vector, fp)
	assert.Error(t, err)

	bounded := epochCoord("time", 24)
	bounded.Bounds = [][2]float64{{18, 24}}
	_, err = OtherTimeCoord(bounded, fp)
	assert.Error(t, err)

	badUnits := fp
	badUnits.Units = "days"
	_, err = OtherTimeCoord(epochCoord("time", 24), badUnits)
	assert.Error(t, err)

	_, err = OtherTimeCoord(epochCoord("height", 24), fp)
	assert.Error(t, err)
}

func TestValidityTimeCoord(t *testing.T) {
	rt := epochCoord("forecast_reference_time", 48)
	fp := metadata.Coord{
		StandardName: "forecast_period", Units: "hours",
		Points: []float64{6},
		Bounds: [][2]float64{{0, 12}},
	}
	coord, err := ValidityTimeCoord(rt, fp)
	require.NoError(t, err)
	assert.Equal(t, []float64{54}, coord.Points)
	assert.Equal(t, [][2]float64{{48, 60}}, coord.Bounds)
}

func TestStatisticalForecastPeriodCoord(t *testing.T) {
	frt := time.Date(2010, 1, 1, 0, 0, 0, 0, time.UTC)
	rt := epochCoord("forecast_reference_time", EpochHours(frt))
	section := grib.Section{
		"indicatorOfUnitOfTimeRange":       int64(1),
		"forecastTime":                     int64(0),
		"yearOfEndOfOverallTimeInterval":   int64(2010),
		"monthOfEndOfOverallTimeInterval":  int64(1),
		"dayOfEndOfOverallTimeInterval":    int64(1),
		"hourOfEndOfOverallTimeInterval":   int64(8),
		"minuteOfEndOfOverallTimeInterval": int64(0),
		"secondOfEndOfOverallTimeInterval": int64(0),
	}
	coord, err := StatisticalForecastPeriodCoord(section, rt, grib.DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, []float64{4}, coord.Points)
	assert.Equal(t, [][2]float64{{0, 8}}, coord.Bounds)
}
