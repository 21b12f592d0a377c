package product

import (
	"fmt"

	"github.com/couchcryptid/gribmeta/internal/grib"
	"github.com/couchcryptid/gribmeta/internal/metadata"
)

// Singular unit names for the "N unit" interval descriptors.
var incrementUnitNames = map[int64]string{
	0:  "minute",
	1:  "hour",
	2:  "day",
	13: "second",
}

// statisticalCellMethod decodes the time-range fields of a statistical
// template into one cell method over time. Exactly one time range must be
// present; aggregation over zero or several is not translatable.
func statisticalCellMethod(section grib.Section, opts grib.Options) (metadata.CellMethod, error) {
	n := section.Int("numberOfTimeRange")
	if n == 0 {
		return metadata.CellMethod{}, grib.Unsupportedf(
			`product definition section 4 specifies aggregation over "0 time ranges"`)
	}
	if n != 1 {
		return metadata.CellMethod{}, grib.Unsupportedf(
			"product definition section 4 contains multiple time ranges [%d]", n)
	}
	return cellMethodForStatistic(section, section.Int("typeOfStatisticalProcessing"), "time")
}

// cellMethodForStatistic resolves a statistic code and its optional time
// increment into a cell method over the named coordinate.
func cellMethodForStatistic(section grib.Section, statistic int64,
	coordName string) (metadata.CellMethod, error) {

	name, ok := grib.StatisticName(statistic)
	if !ok {
		return metadata.CellMethod{}, grib.Unsupportedf(
			"product definition section 4 contains an unsupported statistical process type [%d]",
			statistic)
	}

	if incType := section.Int("typeOfTimeIncrement"); incType != 2 &&
		incType != grib.MDI && incType != 255 {
		return metadata.CellMethod{}, grib.Unsupportedf(
			"product definition section 4 has a time-increment type [%d] which is not supported",
			incType)
	}

	var intervals []string
	increment := section.Int("timeIncrement")
	unit := section.Int("indicatorOfUnitForTimeIncrement")
	if increment != 0 && increment != grib.MDI && unit != 255 && unit != grib.MDI {
		if unitName, ok := incrementUnitNames[unit]; ok {
			intervals = []string{fmt.Sprintf("%d %s", increment, unitName)}
		}
	}

	return metadata.CellMethod{
		Method:     name,
		CoordNames: []string{coordName},
		Intervals:  intervals,
	}, nil
}
