// Package product translates Section 4 of a message in both directions:
// forecast-time arithmetic, statistical, ensemble, probability, satellite
// and vertical-level metadata, dispatched per product definition template.
package product

import (
	"math"
	"time"

	"github.com/couchcryptid/gribmeta/internal/grib"
	"github.com/couchcryptid/gribmeta/internal/metadata"
)

// EpochHoursUnits is the calendar unit of every absolute time coordinate
// the engine builds.
const EpochHoursUnits = "hours since 1970-01-01 00:00:00"

// EpochHours converts a UTC instant to the coordinate representation.
func EpochHours(t time.Time) float64 {
	return float64(t.Unix()) / 3600
}

// FromEpochHours inverts EpochHours.
func FromEpochHours(h float64) time.Time {
	return time.Unix(int64(math.Round(h*3600)), 0).UTC()
}

// ReferenceTimeCoord interprets the section 1 reference time through its
// significance code: a forecast start (0, 1) or an observation time (3).
func ReferenceTimeCoord(ref time.Time, significance int64) (metadata.Coord, error) {
	var name string
	switch significance {
	case 0, 1:
		name = "forecast_reference_time"
	case 3:
		name = "time"
	default:
		return metadata.Coord{}, grib.Unsupportedf(
			"identification section 1 contains unsupported significance of reference time [%d]",
			significance)
	}
	return metadata.Coord{
		StandardName: name,
		Units:        EpochHoursUnits,
		Points:       []float64{EpochHours(ref)},
	}, nil
}

// ForecastPeriodCoord decodes the (unit code, forecastTime) pair into a
// scalar forecast-period coordinate in hours, applying the hindcast
// reinterpretation when enabled.
func ForecastPeriodCoord(section grib.Section, opts grib.Options) (metadata.Coord, error) {
	hours, err := grib.TimeRangeUnitHours(section.Int("indicatorOfUnitOfTimeRange"))
	if err != nil {
		return metadata.Coord{}, err
	}
	forecastTime := section.Int("forecastTime")
	if opts.SupportHindcastValues {
		forecastTime = grib.HindcastFix(forecastTime, opts)
	}
	return metadata.Coord{
		StandardName: "forecast_period",
		Units:        "hours",
		Points:       []float64{float64(forecastTime) * hours},
	}, nil
}

// OtherTimeCoord derives whichever of {time, forecast_reference_time} the
// message did not carry, from the one it did plus the forecast period.
// Applying it twice, swapping roles, returns the original exactly.
func OtherTimeCoord(rt, fp metadata.Coord) (metadata.Coord, error) {
	if !rt.Scalar() || !fp.Scalar() {
		return metadata.Coord{}, grib.Unsupportedf(
			"vector time coordinates cannot derive the remaining time")
	}
	if rt.Bounds != nil || fp.Bounds != nil {
		return metadata.Coord{}, grib.Unsupportedf(
			"bounds are not supported when deriving the remaining time coordinate")
	}
	if rt.Units != EpochHoursUnits {
		return metadata.Coord{}, grib.Unsupportedf(
			"unexpected reference time units %q", rt.Units)
	}
	if fp.Units != "hours" {
		return metadata.Coord{}, grib.Unsupportedf(
			"unexpected forecast period units %q", fp.Units)
	}

	var name string
	var point float64
	switch rt.StandardName {
	case "forecast_reference_time":
		name = "time"
		point = rt.Points[0] + fp.Points[0]
	case "time":
		name = "forecast_reference_time"
		point = rt.Points[0] - fp.Points[0]
	default:
		return metadata.Coord{}, grib.Unsupportedf(
			"unexpected reference time coordinate %q", rt.StandardName)
	}
	return metadata.Coord{
		StandardName: name,
		Units:        EpochHoursUnits,
		Points:       []float64{point},
	}, nil
}

// ValidityTimeCoord composes the forecast reference time with a possibly
// bounded forecast period.
func ValidityTimeCoord(rt, fp metadata.Coord) (metadata.Coord, error) {
	if !rt.Scalar() {
		return metadata.Coord{}, grib.Unsupportedf(
			"validity time requires a scalar forecast reference time coordinate")
	}
	if !fp.Scalar() {
		return metadata.Coord{}, grib.Unsupportedf(
			"validity time requires a scalar forecast period coordinate")
	}
	coord := metadata.Coord{
		StandardName: "time",
		Units:        EpochHoursUnits,
		Points:       []float64{rt.Points[0] + fp.Points[0]},
	}
	if fp.Bounds != nil {
		coord.Bounds = [][2]float64{{
			rt.Points[0] + fp.Bounds[0][0],
			rt.Points[0] + fp.Bounds[0][1],
		}}
	}
	return coord, nil
}

// StatisticalForecastPeriodCoord builds the bounded forecast period of a
// time-statistic template: the lower bound from forecastTime, the upper
// from the explicit end-of-overall-interval fields, the point midway.
func StatisticalForecastPeriodCoord(section grib.Section, rt metadata.Coord,
	opts grib.Options) (metadata.Coord, error) {

	hours, err := grib.TimeRangeUnitHours(section.Int("indicatorOfUnitOfTimeRange"))
	if err != nil {
		return metadata.Coord{}, err
	}
	forecastTime := section.Int("forecastTime")
	if opts.SupportHindcastValues {
		forecastTime = grib.HindcastFix(forecastTime, opts)
	}
	fpStart := float64(forecastTime) * hours

	end := time.Date(
		int(section.Int("yearOfEndOfOverallTimeInterval")),
		time.Month(section.Int("monthOfEndOfOverallTimeInterval")),
		int(section.Int("dayOfEndOfOverallTimeInterval")),
		int(section.Int("hourOfEndOfOverallTimeInterval")),
		int(section.Int("minuteOfEndOfOverallTimeInterval")),
		int(section.Int("secondOfEndOfOverallTimeInterval")),
		0, time.UTC)
	fpEnd := EpochHours(end) - rt.Points[0]

	return metadata.Coord{
		StandardName: "forecast_period",
		Units:        "hours",
		Points:       []float64{(fpStart + fpEnd) / 2},
		Bounds:       [][2]float64{{fpStart, fpEnd}},
	}, nil
}
