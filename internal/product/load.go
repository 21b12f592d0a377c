package product

import (
	"github.com/couchcryptid/gribmeta/internal/grib"
	"github.com/couchcryptid/gribmeta/internal/metadata"
	"github.com/couchcryptid/gribmeta/internal/phenom"
)

// Translate decodes the product definition section onto the record:
// time coordinates, cell methods, ensemble/percentile/satellite
// qualifiers, vertical coordinates and the phenomenon identity itself.
// rt is the already-decoded section 1 reference time coordinate and
// discipline comes from the indicator section.
func Translate(section grib.Section, discipline int64, rt metadata.Coord,
	rec *metadata.Record, opts grib.Options) error {

	var prob *phenom.Probability
	var err error

	template := section.Int("productDefinitionTemplateNumber")
	switch template {
	case 0:
		err = translateTemplate0(section, rec, rt, opts)
	case 1:
		err = translateTemplate1(section, rec, rt, opts)
	case 5:
		prob, err = translateTemplate5(section, rec, rt, opts)
	case 6:
		err = translateTemplate6(section, rec, rt, opts)
	case 8:
		err = translateTemplate8(section, rec, rt, opts)
	case 9:
		prob, err = translateTemplate9(section, rec, rt, opts)
	case 10:
		err = translateTemplate10(section, rec, rt, opts)
	case 11:
		err = translateTemplate11(section, rec, rt, opts)
	case 15:
		err = translateTemplate15(section, rec, rt, opts)
	case 31:
		err = translateTemplate31(section, rec, rt, opts)
	case 32:
		err = translateTemplate32(section, rec, rt, opts)
	case 40:
		err = translateTemplate40(section, rec, rt, opts)
	default:
		err = grib.Unsupportedf("product definition template [%d] is not supported", template)
	}
	if err != nil {
		return err
	}

	phenom.TranslatePhenomenon(rec, discipline,
		section.Int("parameterCategory"), section.Int("parameterNumber"),
		prob, opts)
	return nil
}

// generatingProcess flags the process-identity fields the engine does not
// carry across.
func generatingProcess(opts grib.Options, includeForecastProcess bool) {
	opts.WarnUnsupported("unable to translate type of generating process")
	opts.WarnUnsupported("unable to translate background generating process identifier")
	if includeForecastProcess {
		opts.WarnUnsupported("unable to translate forecast generating process identifier")
	}
}

// dataCutoff flags a data cutoff offset the record cannot represent.
func dataCutoff(section grib.Section, opts grib.Options) {
	hours := section.Int("hoursAfterDataCutoff")
	minutes := section.Int("minutesAfterDataCutoff")
	if hours != grib.MDI || minutes != grib.MDI {
		opts.WarnUnsupported(`unable to translate "hours and/or minutes after data cutoff"`)
	}
}

// timeCoords attaches the forecast period, the time coordinate the message
// did not carry, and the reference time it did, in that order.
func timeCoords(section grib.Section, rec *metadata.Record, rt metadata.Coord,
	opts grib.Options) error {

	fp, err := ForecastPeriodCoord(section, opts)
	if err != nil {
		return err
	}
	other, err := OtherTimeCoord(rt, fp)
	if err != nil {
		return err
	}
	rec.AddScalar(fp)
	rec.AddScalar(other)
	rec.AddScalar(rt)
	return nil
}

// ensembleIdentifier reads the perturbation number as a realization
// coordinate. The ensemble type and size fields have no record
// representation and are flagged instead.
func ensembleIdentifier(section grib.Section, opts grib.Options) metadata.Coord {
	opts.WarnUnsupported("unable to translate type of ensemble forecast")
	opts.WarnUnsupported("unable to translate number of forecasts in ensemble")
	return metadata.Coord{
		StandardName: "realization",
		Units:        "1",
		Points:       []float64{float64(section.Int("perturbationNumber"))},
	}
}

// satelliteCommon attaches the satellite identity and the central
// wavenumber of each contributing spectral band.
func satelliteCommon(section grib.Section, rec *metadata.Record) {
	rec.AddScalar(metadata.Coord{
		LongName: "satellite_series", Units: "1",
		Points: numbers(section, "satelliteSeries"),
	})
	rec.AddScalar(metadata.Coord{
		LongName: "satellite_number", Units: "1",
		Points: numbers(section, "satelliteNumber"),
	})
	rec.AddScalar(metadata.Coord{
		LongName: "instrument_type", Units: "1",
		Points: numbers(section, "instrumentType"),
	})

	values := integers(section, "scaledValueOfCentralWaveNumber")
	factors := integers(section, "scaleFactorOfCentralWaveNumber")
	wavenumbers := make([]float64, len(values))
	for i, v := range values {
		factor := int64(0)
		if i < len(factors) {
			factor = factors[i]
		}
		wavenumbers[i] = grib.Unscale(v, factor)
	}
	rec.AddAuxCoord(metadata.Coord{
		StandardName: "sensor_band_central_radiation_wavenumber",
		Units:        "m-1",
		Points:       wavenumbers,
	}, -1)
}

// numbers reads a key that the reader may materialise as a scalar or a
// per-band vector.
func numbers(section grib.Section, key string) []float64 {
	if v := section.Floats(key); v != nil {
		return v
	}
	return []float64{section.Float(key)}
}

func integers(section grib.Section, key string) []int64 {
	if v := section.Ints(key); v != nil {
		return v
	}
	return []int64{section.Int(key)}
}

// translateTemplate0 handles an instantaneous forecast at a horizontal
// level or layer.
func translateTemplate0(section grib.Section, rec *metadata.Record,
	rt metadata.Coord, opts grib.Options) error {

	generatingProcess(opts, true)
	dataCutoff(section, opts)
	if err := timeCoords(section, rec, rt, opts); err != nil {
		return err
	}
	return verticalCoords(section, rec, opts)
}

// translateTemplate1 adds the ensemble member identity to template 0.
func translateTemplate1(section grib.Section, rec *metadata.Record,
	rt metadata.Coord, opts grib.Options) error {

	if err := translateTemplate0(section, rec, rt, opts); err != nil {
		return err
	}
	rec.AddScalar(ensembleIdentifier(section, opts))
	return nil
}

// translateTemplate5 handles an instantaneous probability forecast.
func translateTemplate5(section grib.Section, rec *metadata.Record,
	rt metadata.Coord, opts grib.Options) (*phenom.Probability, error) {

	if err := translateTemplate0(section, rec, rt, opts); err != nil {
		return nil, err
	}
	return phenom.NewProbability(section)
}

// translateTemplate6 handles an instantaneous percentile forecast.
func translateTemplate6(section grib.Section, rec *metadata.Record,
	rt metadata.Coord, opts grib.Options) error {

	if err := translateTemplate0(section, rec, rt, opts); err != nil {
		return err
	}
	rec.AddScalar(metadata.Coord{
		LongName: "percentile",
		Units:    "%",
		Points:   []float64{float64(section.Int("percentileValue"))},
	})
	return nil
}

// translateTemplate8 handles a statistic over a time interval: the cell
// method names the statistic and the forecast period carries the interval
// bounds.
func translateTemplate8(section grib.Section, rec *metadata.Record,
	rt metadata.Coord, opts grib.Options) error {

	generatingProcess(opts, true)
	dataCutoff(section, opts)

	method, err := statisticalCellMethod(section, opts)
	if err != nil {
		return err
	}
	rec.CellMethods = append(rec.CellMethods, method)

	fp, err := StatisticalForecastPeriodCoord(section, rt, opts)
	if err != nil {
		return err
	}
	validity, err := ValidityTimeCoord(rt, fp)
	if err != nil {
		return err
	}
	rec.AddScalar(fp)
	rec.AddScalar(validity)
	rec.AddScalar(rt)
	return verticalCoords(section, rec, opts)
}

// translateTemplate9 handles a probability of a time statistic. The
// underlying statistic's cell method is dropped: the probability itself
// is not the statistic.
func translateTemplate9(section grib.Section, rec *metadata.Record,
	rt metadata.Coord, opts grib.Options) (*phenom.Probability, error) {

	if err := translateTemplate8(section, rec, rt, opts); err != nil {
		return nil, err
	}
	rec.RemoveCellMethod()
	return phenom.NewProbability(section)
}

// translateTemplate10 handles a percentile of a time statistic.
func translateTemplate10(section grib.Section, rec *metadata.Record,
	rt metadata.Coord, opts grib.Options) error {

	if err := translateTemplate8(section, rec, rt, opts); err != nil {
		return err
	}
	rec.AddScalar(metadata.Coord{
		LongName: "percentile_over_time",
		Units:    "1",
		Points:   []float64{float64(section.Int("percentileValue"))},
	})
	return nil
}

// translateTemplate11 adds the ensemble member identity to template 8.
func translateTemplate11(section grib.Section, rec *metadata.Record,
	rt metadata.Coord, opts grib.Options) error {

	if err := translateTemplate8(section, rec, rt, opts); err != nil {
		return err
	}
	rec.AddScalar(ensembleIdentifier(section, opts))
	return nil
}

// translateTemplate15 handles data derived by a spatial process over the
// source grid. Statistical processing types gain an "area" cell method;
// pure interpolation does not.
func translateTemplate15(section grib.Section, rec *metadata.Record,
	rt metadata.Coord, opts grib.Options) error {

	generatingProcess(opts, true)
	dataCutoff(section, opts)
	if err := timeCoords(section, rec, rt, opts); err != nil {
		return err
	}
	if err := verticalCoords(section, rec, opts); err != nil {
		return err
	}

	spatial := section.Int("spatialProcessing")
	sp, ok := grib.SpatialProcessingFor(spatial)
	if !ok {
		return grib.Unsupportedf(
			"product definition section 4 contains an unsupported spatial processing type [%d]",
			spatial)
	}
	rec.Attributes["spatial_processing_type"] = spatial
	if !sp.Statistical {
		return nil
	}
	method, err := cellMethodForStatistic(section, section.Int("statisticalProcess"), "area")
	if err != nil {
		return err
	}
	rec.CellMethods = append(rec.CellMethods, method)
	return nil
}

// translateTemplate31 handles a satellite product carrying only its
// observation time.
func translateTemplate31(section grib.Section, rec *metadata.Record,
	rt metadata.Coord, opts grib.Options) error {

	generatingProcess(opts, false)
	satelliteCommon(section, rec)
	rec.AddScalar(rt)
	return nil
}

// translateTemplate32 handles a simulated satellite product with full
// forecast time coordinates.
func translateTemplate32(section grib.Section, rec *metadata.Record,
	rt metadata.Coord, opts grib.Options) error {

	generatingProcess(opts, false)
	dataCutoff(section, opts)
	if err := timeCoords(section, rec, rt, opts); err != nil {
		return err
	}
	satelliteCommon(section, rec)
	return nil
}

// translateTemplate40 handles an atmospheric chemical constituent: the
// constituent code rides along as an attribute.
func translateTemplate40(section grib.Section, rec *metadata.Record,
	rt metadata.Coord, opts grib.Options) error {

	if err := translateTemplate0(section, rec, rt, opts); err != nil {
		return err
	}
	rec.Attributes["WMO_constituent_type"] = section.Int("constituentType")
	return nil
}
