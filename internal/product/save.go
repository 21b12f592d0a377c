package product

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/gribmeta/internal/grib"
	"github.com/couchcryptid/gribmeta/internal/metadata"
	"github.com/couchcryptid/gribmeta/internal/phenom"
)

// Encode deduces the product definition template a record calls for and
// writes section 4. The discipline lands in indicator, everything else in
// section. levels supplies hybrid coefficients and may be nil for
// non-hybrid records.
func Encode(rec *metadata.Record, indicator, section grib.Section,
	levels LevelSource, opts grib.Options) error {

	timeCoord, ok := rec.Coord("time")
	if !ok {
		return grib.Unsupportedf("a 'time' coordinate is required, but not present")
	}
	prob := probabilityOf(rec)

	switch {
	case timeCoord.Bounds == nil:
		switch {
		case prob != nil:
			return encodeTemplate5(rec, indicator, section, levels, prob, opts)
		case rec.HasCoord("realization"):
			return encodeTemplate1(rec, indicator, section, levels, opts)
		case rec.HasCoord("percentile"):
			return encodeTemplate6(rec, indicator, section, levels, opts)
		case rec.Attributes["WMO_constituent_type"] != nil:
			return encodeTemplate40(rec, indicator, section, levels, opts)
		case rec.Attributes["spatial_processing_type"] != nil:
			return encodeTemplate15(rec, indicator, section, levels, opts)
		default:
			return encodeTemplate0(rec, indicator, section, levels, opts)
		}
	case prob != nil:
		// A bounded-time probability: the underlying statistic's cell
		// method was dropped on load, so it cannot be re-identified.
		return encodeTemplate9(rec, indicator, section, levels, prob, opts)
	case isTimeStatistic(rec):
		switch {
		case rec.HasCoord("realization"):
			return encodeTemplate11(rec, indicator, section, levels, opts)
		case rec.HasCoord("percentile_over_time"):
			return encodeTemplate10(rec, indicator, section, levels, opts)
		default:
			return encodeTemplate8(rec, indicator, section, levels, opts)
		}
	}
	return grib.Unsupportedf("a suitable product template could not be deduced")
}

// probabilityOf recognises a record the load path built from a
// probability product: the threshold rides on a scalar coordinate
// tagged with its bound direction.
func probabilityOf(rec *metadata.Record) *phenom.Probability {
	for _, cd := range rec.AuxCoords {
		c := cd.Coord
		if !c.Scalar() || c.Attributes == nil {
			continue
		}
		qualifier, ok := c.Attributes["relative_to_threshold"].(string)
		if !ok {
			continue
		}
		bound := "lower"
		if qualifier == "above_threshold" {
			bound = "upper"
		}
		return &phenom.Probability{
			Qualifier: qualifier,
			BoundKind: bound,
			Threshold: c.Points[0],
		}
	}
	return nil
}

// isTimeStatistic reports whether the record represents a statistic over
// time: either its newest cell method aggregates a time coordinate, or a
// percentile_over_time coordinate marks a percentile statistic that
// carries no cell method.
func isTimeStatistic(rec *metadata.Record) bool {
	if rec.HasCoord("percentile_over_time") {
		return true
	}
	if len(rec.CellMethods) == 0 {
		return false
	}
	recognised := map[string]bool{
		"time": true, "year": true, "month": true, "day": true,
		"weekday": true, "season": true,
	}
	latest := rec.CellMethods[len(rec.CellMethods)-1]
	return len(latest.CoordNames) == 1 && recognised[latest.CoordNames[0]]
}

// setDisciplineAndParameter writes the parameter identity, preferring an
// explicit GRIB_PARAM attribute over a phenomenon-name lookup. With
// neither, all three keys go to missing.
func setDisciplineAndParameter(rec *metadata.Record, indicator, section grib.Section,
	opts grib.Options) {

	discipline, category, number := int64(255), int64(255), int64(255)
	found := false

	switch attr := rec.Attributes["GRIB_PARAM"].(type) {
	case grib.Code:
		if attr.Edition == 2 {
			discipline = int64(attr.Discipline)
			category = int64(attr.Category)
			number = int64(attr.Number)
			found = true
		}
	case string:
		if code, err := grib.ParseCode(attr); err == nil && code.Edition == 2 {
			discipline = int64(code.Discipline)
			category = int64(code.Category)
			number = int64(code.Number)
			found = true
		}
	}

	if !found {
		// A probability record names the base phenomenon on its
		// threshold coordinate rather than on itself.
		standardName, longName := rec.StandardName, rec.LongName
		if prob := probabilityOf(rec); prob != nil {
			if coord, base := baseThresholdCoord(rec); base {
				standardName, longName = coord.StandardName, coord.LongName
			}
		}
		if key, ok := phenom.LookupCF(standardName, longName); ok {
			discipline = int64(key.Discipline)
			category = int64(key.Category)
			number = int64(key.Number)
			found = true
		}
	}

	if !found {
		opts.Warnf("unable to determine parameter code for %q; discipline, "+
			"parameterCategory and parameterNumber have been set to missing", rec.Name())
	}

	indicator.Set("discipline", discipline)
	section.Set("parameterCategory", category)
	section.Set("parameterNumber", number)
}

func baseThresholdCoord(rec *metadata.Record) (metadata.Coord, bool) {
	for _, cd := range rec.AuxCoords {
		if cd.Coord.Attributes == nil {
			continue
		}
		if _, ok := cd.Coord.Attributes["relative_to_threshold"]; ok {
			return cd.Coord, true
		}
	}
	return metadata.Coord{}, false
}

// ReferenceTime derives the wire reference time and its significance code
// from the record's time coordinates: the forecast start when a forecast
// period or reference time is present, the observation time otherwise.
func ReferenceTime(rec *metadata.Record, opts grib.Options) (time.Time, int64, error) {
	if rec.HasCoord("forecast_period") {
		rt, significance, _, _, err := nonMissingForecastPeriod(rec, opts)
		return rt, significance, err
	}
	rt, significance, _, _ := missingForecastPeriod(rec, opts)
	return rt, significance, nil
}

// nonMissingForecastPeriod recovers the reference time and integer
// forecast period from the forecast_period and time coordinates.
func nonMissingForecastPeriod(rec *metadata.Record, opts grib.Options) (time.Time, int64, int64, int64, error) {
	fpCoord, _ := rec.Coord("forecast_period")
	timeCoord, ok := rec.Coord("time")
	if !ok {
		return time.Time{}, 0, 0, 0,
			grib.Unsupportedf("a 'time' coordinate is required, but not present")
	}

	var unitCode int64
	var fpHours float64
	switch fpCoord.Units {
	case "hours":
		unitCode = 1
		fpHours = fpCoord.Points[0]
	case "minutes":
		unitCode = 0
		fpHours = fpCoord.Points[0] / 60
	case "seconds":
		unitCode = 13
		fpHours = fpCoord.Points[0] / 3600
	default:
		return time.Time{}, 0, 0, 0, grib.Unsupportedf(
			"unexpected units for 'forecast_period': %s", fpCoord.Units)
	}

	rt := FromEpochHours(timeCoord.Points[0] - fpHours)

	fp := fpCoord.Points[0]
	if timeCoord.Bounds != nil {
		if fpCoord.Bounds == nil {
			return time.Time{}, 0, 0, 0, grib.Unsupportedf(
				"bounds on 'time' coordinate requires bounds on 'forecast_period'")
		}
		fp = fpCoord.Bounds[0][0]
	}
	integer := int64(fp)
	if float64(integer) != fp {
		opts.Warnf("forecast_period encoding problem: scaling required for %v", fp)
	}
	return rt, 1, integer, unitCode, nil
}

// missingForecastPeriod falls back to the forecast_reference_time
// coordinate, or failing that treats the time coordinate as an
// observation time with a zero forecast period.
func missingForecastPeriod(rec *metadata.Record, opts grib.Options) (time.Time, int64, int64, int64) {
	timeCoord, _ := rec.Coord("time")
	t := timeCoord.Points[0]
	if timeCoord.Bounds != nil {
		t = timeCoord.Bounds[0][0]
	}

	if frt, ok := rec.Coord("forecast_reference_time"); ok {
		fp := t - frt.Points[0]
		integer := int64(fp)
		if float64(integer) != fp {
			opts.Warnf("truncating floating point forecast period %v to integer value %d",
				fp, integer)
		}
		return FromEpochHours(frt.Points[0]), 1, integer, 1
	}
	return FromEpochHours(t), 3, 0, 1
}

// setForecastTime writes the forecast-period fields in whatever unit the
// record's coordinate carries.
func setForecastTime(rec *metadata.Record, section grib.Section, opts grib.Options) error {
	var fp, unitCode int64
	if rec.HasCoord("forecast_period") {
		var err error
		_, _, fp, unitCode, err = nonMissingForecastPeriod(rec, opts)
		if err != nil {
			return err
		}
	} else {
		_, _, fp, unitCode = missingForecastPeriod(rec, opts)
	}
	section.Set("indicatorOfUnitOfTimeRange", unitCode)
	section.Set("forecastTime", fp)
	return nil
}

// encodeCommon writes the fields every product definition template shares.
func encodeCommon(rec *metadata.Record, indicator, section grib.Section,
	levels LevelSource, opts grib.Options) error {

	setDisciplineAndParameter(rec, indicator, section, opts)

	// Process-identity fields the record does not carry.
	section.Set("typeOfGeneratingProcess", int64(255))
	section.Set("backgroundProcess", int64(255))
	section.Set("generatingProcessIdentifier", int64(255))

	if err := setForecastTime(rec, section, opts); err != nil {
		return err
	}
	return encodeFixedSurfaces(rec, section, levels, opts)
}

// setTimeRange writes the statistical interval length, in hours, from the
// time coordinate's bounds.
func setTimeRange(timeCoord metadata.Coord, section grib.Section, opts grib.Options) error {
	if !timeCoord.Scalar() {
		return fmt.Errorf("expected length one time coordinate, got %d points",
			len(timeCoord.Points))
	}
	if timeCoord.Bounds == nil {
		return fmt.Errorf("expected time coordinate with two bounds, got 0 bounds")
	}

	section.Set("indicatorOfUnitForTimeRange", int64(1)) // hours
	length := timeCoord.Bounds[0][1] - timeCoord.Bounds[0][0]
	integer := int64(length)
	if float64(integer) != length {
		opts.Warnf("truncating floating point lengthOfTimeRange %v to integer value %d",
			length, integer)
	}
	section.Set("lengthOfTimeRange", integer)
	return nil
}

// setTimeIncrement writes the statistical time-increment fields from a
// cell method's interval, when one parses as a whole number of hours.
func setTimeIncrement(method metadata.CellMethod, section grib.Section, opts grib.Options) {
	// Code table 4.11 could distinguish an incrementing forecast period
	// from an incrementing reference time; the record cannot.
	section.Set("typeOfTimeIncrement", int64(255))

	increment := int64(0)
	unitsType := int64(255)
	if len(method.Intervals) == 1 {
		if value, ok := parseHourInterval(method.Intervals[0]); ok {
			integer := int64(value)
			if float64(integer) != value {
				opts.Warnf("truncating floating point timeIncrement %v to integer value %d",
					value, integer)
			}
			increment = integer
			unitsType = 1
		}
	}
	section.Set("indicatorOfUnitForTimeIncrement", unitsType)
	section.Set("timeIncrement", increment)
}

func parseHourInterval(interval string) (float64, bool) {
	fields := strings.Fields(interval)
	if len(fields) != 2 {
		return 0, false
	}
	value, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return 0, false
	}
	switch fields[1] {
	case "hr", "hour", "hours":
		return value, true
	}
	return 0, false
}

// setEnsemble writes the ensemble member fields. The ensemble type and
// size have no record representation and go to missing.
func setEnsemble(rec *metadata.Record, section grib.Section) error {
	realization, ok := rec.Coord("realization")
	if !ok || !realization.Scalar() {
		return fmt.Errorf("a 'realization' coordinate with one point is required, but not present")
	}
	section.Set("perturbationNumber", int64(math.Round(realization.Points[0])))
	section.Set("numberOfForecastsInEnsemble", int64(255))
	section.Set("typeOfEnsembleForecast", int64(255))
	return nil
}

func encodeTemplate0(rec *metadata.Record, indicator, section grib.Section,
	levels LevelSource, opts grib.Options) error {

	section.Set("productDefinitionTemplateNumber", int64(0))
	return encodeCommon(rec, indicator, section, levels, opts)
}

func encodeTemplate1(rec *metadata.Record, indicator, section grib.Section,
	levels LevelSource, opts grib.Options) error {

	section.Set("productDefinitionTemplateNumber", int64(1))
	if err := encodeCommon(rec, indicator, section, levels, opts); err != nil {
		return err
	}
	return setEnsemble(rec, section)
}

func encodeTemplate5(rec *metadata.Record, indicator, section grib.Section,
	levels LevelSource, prob *phenom.Probability, opts grib.Options) error {

	section.Set("productDefinitionTemplateNumber", int64(5))
	if err := encodeCommon(rec, indicator, section, levels, opts); err != nil {
		return err
	}
	return setProbability(section, prob)
}

func encodeTemplate6(rec *metadata.Record, indicator, section grib.Section,
	levels LevelSource, opts grib.Options) error {

	section.Set("productDefinitionTemplateNumber", int64(6))
	percentile, ok := rec.Coord("percentile")
	if !ok || !percentile.Scalar() {
		return fmt.Errorf("a 'percentile' coordinate with one point is required, but not present")
	}
	section.Set("percentileValue", int64(math.Round(percentile.Points[0])))
	return encodeCommon(rec, indicator, section, levels, opts)
}

func encodeTemplate8(rec *metadata.Record, indicator, section grib.Section,
	levels LevelSource, opts grib.Options) error {

	section.Set("productDefinitionTemplateNumber", int64(8))
	return encodeTimeStatistic(rec, indicator, section, levels, opts)
}

func encodeTemplate9(rec *metadata.Record, indicator, section grib.Section,
	levels LevelSource, prob *phenom.Probability, opts grib.Options) error {

	section.Set("productDefinitionTemplateNumber", int64(9))
	if err := encodeTimeStatistic(rec, indicator, section, levels, opts); err != nil {
		return err
	}
	return setProbability(section, prob)
}

func encodeTemplate10(rec *metadata.Record, indicator, section grib.Section,
	levels LevelSource, opts grib.Options) error {

	section.Set("productDefinitionTemplateNumber", int64(10))
	percentile, ok := rec.Coord("percentile_over_time")
	if !ok || !percentile.Scalar() {
		return fmt.Errorf(
			"a 'percentile_over_time' coordinate with one point is required, but not present")
	}
	section.Set("percentileValue", int64(math.Round(percentile.Points[0])))
	return encodeTimeStatistic(rec, indicator, section, levels, opts)
}

func encodeTemplate11(rec *metadata.Record, indicator, section grib.Section,
	levels LevelSource, opts grib.Options) error {

	section.Set("productDefinitionTemplateNumber", int64(11))
	if err := setEnsemble(rec, section); err != nil {
		return err
	}
	return encodeTimeStatistic(rec, indicator, section, levels, opts)
}

func setProbability(section grib.Section, prob *phenom.Probability) error {
	var probType int64
	switch {
	case prob.Qualifier == "above_threshold" && prob.BoundKind == "upper":
		probType = 1
	case prob.Qualifier == "below_threshold" && prob.BoundKind == "lower":
		probType = 0
	case prob.Qualifier == "above_threshold":
		probType = 3
	default:
		probType = 4
	}
	section.Set("probabilityType", probType)
	phenom.EncodeThreshold(section, prob.BoundKind, prob.Threshold)
	return nil
}

// encodeTimeStatistic writes the fields common to the time-interval
// aggregation templates: the end of the overall interval, a single time
// range, and the statistic's cell method fields when one is present.
func encodeTimeStatistic(rec *metadata.Record, indicator, section grib.Section,
	levels LevelSource, opts grib.Options) error {

	if err := encodeCommon(rec, indicator, section, levels, opts); err != nil {
		return err
	}

	timeCoord, _ := rec.Coord("time")
	if !timeCoord.Scalar() {
		return fmt.Errorf("expected length one time coordinate, got %d points",
			len(timeCoord.Points))
	}
	if timeCoord.Bounds == nil {
		return fmt.Errorf("expected time coordinate with two bounds, got 0 bounds")
	}

	end := FromEpochHours(timeCoord.Bounds[0][1])
	section.Set("yearOfEndOfOverallTimeInterval", int64(end.Year()))
	section.Set("monthOfEndOfOverallTimeInterval", int64(end.Month()))
	section.Set("dayOfEndOfOverallTimeInterval", int64(end.Day()))
	section.Set("hourOfEndOfOverallTimeInterval", int64(end.Hour()))
	section.Set("minuteOfEndOfOverallTimeInterval", int64(end.Minute()))
	section.Set("secondOfEndOfOverallTimeInterval", int64(end.Second()))

	// One time range: a single aggregation, not a composed series.
	section.Set("numberOfTimeRange", int64(1))
	section.Set("numberOfMissingInStatisticalProcess", int64(0))

	if err := setTimeRange(timeCoord, section, opts); err != nil {
		return err
	}

	if len(rec.CellMethods) == 0 {
		return nil
	}
	var timeMethods []metadata.CellMethod
	for _, method := range rec.CellMethods {
		for _, name := range method.CoordNames {
			if name == "time" {
				timeMethods = append(timeMethods, method)
				break
			}
		}
	}
	if len(timeMethods) == 0 {
		return fmt.Errorf("expected a cell method with a coordinate name of 'time'")
	}
	if len(timeMethods) > 1 {
		return fmt.Errorf("cannot handle multiple 'time' cell methods")
	}
	method := timeMethods[0]
	if len(method.CoordNames) > 1 {
		return fmt.Errorf(
			"cannot handle multiple coordinate names in the time related cell method: got %v",
			method.CoordNames)
	}

	statistic, ok := grib.StatisticCode(method.Method)
	if !ok {
		statistic = 255
	}
	section.Set("typeOfStatisticalProcessing", statistic)
	setTimeIncrement(method, section, opts)
	return nil
}

func encodeTemplate15(rec *metadata.Record, indicator, section grib.Section,
	levels LevelSource, opts grib.Options) error {

	spatial, ok := spatialProcessingAttr(rec.Attributes["spatial_processing_type"])
	if !ok {
		return grib.Unsupportedf("unrecognised spatial processing type %v",
			rec.Attributes["spatial_processing_type"])
	}
	sp, known := grib.SpatialProcessingFor(spatial)
	if !known {
		return grib.Unsupportedf(
			"product definition section 4 contains an unsupported spatial processing type [%d]",
			spatial)
	}

	section.Set("productDefinitionTemplateNumber", int64(15))
	if err := encodeCommon(rec, indicator, section, levels, opts); err != nil {
		return err
	}
	section.Set("spatialProcessing", spatial)
	section.Set("numberOfPointsUsed", sp.NumPoints)

	if !sp.Statistical {
		return nil
	}
	var areaMethods []metadata.CellMethod
	for _, method := range rec.CellMethods {
		for _, name := range method.CoordNames {
			if name == "area" {
				areaMethods = append(areaMethods, method)
				break
			}
		}
	}
	if len(areaMethods) == 0 {
		return fmt.Errorf(
			"could not find a suitable cell method to save as a spatial statistical process")
	}
	if len(areaMethods) > 1 {
		return fmt.Errorf("cannot handle multiple 'area' cell methods")
	}
	statistic, ok := grib.StatisticCode(areaMethods[0].Method)
	if !ok {
		return grib.Unsupportedf(
			"product definition section 4 contains an unsupported statistical process type [%s]",
			areaMethods[0].Method)
	}
	section.Set("statisticalProcess", statistic)
	return nil
}

// spatialProcessingAttr tolerates the attribute value forms a JSON
// round-trip can produce.
func spatialProcessingAttr(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case float64:
		return int64(math.Round(n)), true
	}
	return 0, false
}

func encodeTemplate40(rec *metadata.Record, indicator, section grib.Section,
	levels LevelSource, opts grib.Options) error {

	section.Set("productDefinitionTemplateNumber", int64(40))
	if err := encodeCommon(rec, indicator, section, levels, opts); err != nil {
		return err
	}
	constituent, ok := spatialProcessingAttr(rec.Attributes["WMO_constituent_type"])
	if !ok {
		return grib.Unsupportedf("unrecognised WMO_constituent_type %v",
			rec.Attributes["WMO_constituent_type"])
	}
	section.Set("constituentType", constituent)
	return nil
}
