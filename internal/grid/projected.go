package grid

import (
	"math"

	"github.com/couchcryptid/gribmeta/internal/grib"
	"github.com/couchcryptid/gribmeta/internal/metadata"
	"github.com/couchcryptid/gribmeta/internal/projection"
)

// projectedCoord builds a projection-plane coordinate from an origin and
// fixed step.
func projectedCoord(name string, origin, step float64, count int64,
	negative bool, cs metadata.CoordSystem) metadata.Coord {
	return metadata.Coord{
		StandardName: name,
		Units:        "m",
		Points:       regularPoints(origin, step, count, negative),
		CoordSystem:  cs,
	}
}

// mercatorGrid decodes template 3.10: the first point is forward-projected
// at the given standard parallel, then stepped by the fixed Di/Dj lengths.
func mercatorGrid(section grib.Section, rec *metadata.Record, opts grib.Options) error {
	geog, err := sectionEllipsoid(section)
	if err != nil {
		return err
	}
	scan, err := scanModeFrom(section.Int("scanningMode"))
	if err != nil {
		return err
	}
	if o := section.Int("orientationOfTheGrid"); o != 0 && o != grib.MDI {
		return grib.Unsupportedf(
			"grid definition section 3 contains unsupported non-zero grid orientation [%d]", o)
	}
	res := resolutionFlagsFrom(section.Int("resolutionAndComponentFlags"))
	if res.UVResolved {
		opts.WarnUnsupported("unable to translate resolution and component flags")
	}

	cs := metadata.Mercator{
		StandardParallel: float64(section.Int("LaD")) * degreesScale,
		Ellipsoid:        geog,
	}

	lon0 := float64(section.Int("longitudeOfFirstGridPoint")) * degreesScale
	lat0 := float64(section.Int("latitudeOfFirstGridPoint")) * degreesScale
	x0, y0 := projection.MercatorForward(cs, lon0, lat0)

	ni, nj := section.Int("Ni"), section.Int("Nj")
	dx := math.Abs(float64(section.Int("Di"))) * milliMetres
	dy := math.Abs(float64(section.Int("Dj"))) * milliMetres

	x := projectedCoord("projection_x_coordinate", x0, dx, ni, scan.INegative, cs)
	y := projectedCoord("projection_y_coordinate", y0, dy, nj, !scan.JPositive, cs)

	// Cross-check the grid against the encoded far corner: a mismatch is
	// suspicious but not fatal.
	lonN := float64(section.Int("longitudeOfLastGridPoint")) * degreesScale
	latN := float64(section.Int("latitudeOfLastGridPoint")) * degreesScale
	if !section.Missing("longitudeOfLastGridPoint") && !section.Missing("latitudeOfLastGridPoint") {
		xn, yn := projection.MercatorForward(cs, lonN, latN)
		if math.Abs(xn-x.Points[ni-1]) > dx/2 || math.Abs(yn-y.Points[nj-1]) > dy/2 {
			opts.Warnf("mismatch between the encoded final grid point and the grid spacing")
		}
	}

	gridDims(rec, y, x, scan)
	return nil
}

// transverseMercatorGrid decodes template 3.12, the only template working
// in centimetres. Points are interpolated between the two explicit corner
// points after checking them against the declared step and count.
func transverseMercatorGrid(section grib.Section, rec *metadata.Record, opts grib.Options) error {
	geog, err := sectionEllipsoid(section)
	if err != nil {
		return err
	}
	scan, err := scanModeFrom(section.Int("scanningMode"))
	if err != nil {
		return err
	}

	scale := section.Float("scaleFactorAtReferencePoint")
	if math.IsNaN(scale) {
		// Some writers stored the IEEE float bit pattern in a signed
		// integer field.
		scale = float64(grib.Int32AsFloat32(section.Int("scaleFactorAtReferencePoint")))
	}
	cs := metadata.TransverseMercator{
		LatOrigin:     float64(section.Int("latitudeOfReferencePoint")) * degreesScale,
		LonOrigin:     float64(section.Int("longitudeOfReferencePoint")) * degreesScale,
		FalseEasting:  float64(section.Int("XR")) * centiMetres,
		FalseNorthing: float64(section.Int("YR")) * centiMetres,
		ScaleFactor:   scale,
		Ellipsoid:     geog,
	}

	x, err := cornerAxis(section, "X", "projection_x_coordinate",
		section.Int("Ni"), section.Int("Di"), scan.INegative, cs, opts)
	if err != nil {
		return err
	}
	y, err := cornerAxis(section, "Y", "projection_y_coordinate",
		section.Int("Nj"), section.Int("Dj"), !scan.JPositive, cs, opts)
	if err != nil {
		return err
	}

	gridDims(rec, y, x, scan)
	return nil
}

// cornerAxis builds one template-3.12 axis from its corner fields. The
// corners are authoritative; the declared step must agree with them within
// one raw unit, and the scan direction should agree with their ordering.
func cornerAxis(section grib.Section, axis, name string, count, step int64,
	negative bool, cs metadata.CoordSystem, opts grib.Options) (metadata.Coord, error) {

	first := section.Int(axis + "1")
	last := section.Int(axis + "2")

	span := last - first
	if span < 0 {
		span = -span
	}
	want := (count - 1) * step
	diff := span - want
	if diff < 0 {
		diff = -diff
	}
	// One unit of the template's own fixed-point resolution. The value is
	// empirical; round-trip tests observe it directly.
	if diff > 1 {
		return metadata.Coord{}, grib.Unsupportedf(
			"%s definition inconsistent: grid points spacing incompatible with step-size D%s", axis, axis)
	}

	descending := last < first
	if descending != negative {
		opts.Warnf("%s definition inconsistent: scanningMode disagrees with %s1/%s2 ordering",
			axis, axis, axis)
	}

	// Interpolate between the corners so a one-unit discrepancy is spread
	// rather than accumulated.
	points := make([]float64, count)
	if count == 1 {
		points[0] = float64(first) * centiMetres
	} else {
		f, l := float64(first)*centiMetres, float64(last)*centiMetres
		for i := range points {
			points[i] = f + (l-f)*float64(i)/float64(count-1)
		}
	}
	return metadata.Coord{
		StandardName: name, Units: "m", Points: points, CoordSystem: cs,
	}, nil
}

// polarStereoGrid decodes template 3.20.
func polarStereoGrid(section grib.Section, rec *metadata.Record, _ grib.Options) error {
	geog, err := sectionEllipsoid(section)
	if err != nil {
		return err
	}
	scan, err := scanModeFrom(section.Int("scanningMode"))
	if err != nil {
		return err
	}
	centre := projectionCentreFrom(section.Int("projectionCentreFlag"))
	if centre.BipolarAndSymmetric {
		return grib.Unsupportedf(
			"grid definition section 3 contains unsupported bipolar and symmetric projection")
	}

	centralLat := 90.0
	if centre.SouthPoleOnPlane {
		centralLat = -90
	}
	cs := metadata.Stereographic{
		CentralLat:   centralLat,
		CentralLon:   float64(section.Int("orientationOfTheGrid")) * degreesScale,
		TrueScaleLat: float64(section.Int("LaD")) * degreesScale,
		Ellipsoid:    geog,
	}

	lon0 := float64(section.Int("longitudeOfFirstGridPoint")) * degreesScale
	lat0 := float64(section.Int("latitudeOfFirstGridPoint")) * degreesScale
	x0, y0 := projection.StereographicForward(cs, lon0, lat0)

	dx := math.Abs(float64(section.Int("Dx"))) * milliMetres
	dy := math.Abs(float64(section.Int("Dy"))) * milliMetres

	x := projectedCoord("projection_x_coordinate", x0, dx, section.Int("Nx"), scan.INegative, cs)
	y := projectedCoord("projection_y_coordinate", y0, dy, section.Int("Ny"), !scan.JPositive, cs)
	gridDims(rec, y, x, scan)
	return nil
}

// lambertConformalGrid decodes template 3.30.
func lambertConformalGrid(section grib.Section, rec *metadata.Record, opts grib.Options) error {
	geog, err := sectionEllipsoid(section)
	if err != nil {
		return err
	}
	scan, err := scanModeFrom(section.Int("scanningMode"))
	if err != nil {
		return err
	}
	centre := projectionCentreFrom(section.Int("projectionCentreFlag"))
	if centre.BipolarAndSymmetric {
		return grib.Unsupportedf(
			"grid definition section 3 contains unsupported bipolar and symmetric projection")
	}
	res := resolutionFlagsFrom(section.Int("resolutionAndComponentFlags"))
	if res.UVResolved {
		opts.WarnUnsupported("unable to translate resolution and component flags")
	}

	cs := metadata.LambertConformal{
		CentralLat: float64(section.Int("LaD")) * degreesScale,
		CentralLon: float64(section.Int("LoV")) * degreesScale,
		SecantLats: [2]float64{
			float64(section.Int("Latin1")) * degreesScale,
			float64(section.Int("Latin2")) * degreesScale,
		},
		Ellipsoid: geog,
	}

	lon0 := float64(section.Int("longitudeOfFirstGridPoint")) * degreesScale
	lat0 := float64(section.Int("latitudeOfFirstGridPoint")) * degreesScale
	x0, y0 := projection.LambertConformalForward(cs, lon0, lat0)

	dx := math.Abs(float64(section.Int("Dx"))) * milliMetres
	dy := math.Abs(float64(section.Int("Dy"))) * milliMetres

	x := projectedCoord("projection_x_coordinate", x0, dx, section.Int("Nx"), scan.INegative, cs)
	y := projectedCoord("projection_y_coordinate", y0, dy, section.Int("Ny"), !scan.JPositive, cs)
	gridDims(rec, y, x, scan)
	return nil
}

// lambertAzimuthalGrid decodes template 3.140.
func lambertAzimuthalGrid(section grib.Section, rec *metadata.Record, _ grib.Options) error {
	geog, err := sectionEllipsoid(section)
	if err != nil {
		return err
	}
	scan, err := scanModeFrom(section.Int("scanningMode"))
	if err != nil {
		return err
	}

	cs := metadata.LambertAzimuthal{
		CentralLat: float64(section.Int("standardParallelInMicrodegrees")) * degreesScale,
		CentralLon: float64(section.Int("centralLongitudeInMicrodegrees")) * degreesScale,
		Ellipsoid:  geog,
	}

	lon0 := float64(section.Int("longitudeOfFirstGridPoint")) * degreesScale
	lat0 := float64(section.Int("latitudeOfFirstGridPoint")) * degreesScale
	x0, y0 := projection.LambertAzimuthalForward(cs, lon0, lat0)

	dx := math.Abs(float64(section.Int("Dx"))) * milliMetres
	dy := math.Abs(float64(section.Int("Dy"))) * milliMetres

	x := projectedCoord("projection_x_coordinate", x0, dx, section.Int("Nx"), scan.INegative, cs)
	y := projectedCoord("projection_y_coordinate", y0, dy, section.Int("Ny"), !scan.JPositive, cs)
	gridDims(rec, y, x, scan)
	return nil
}

// spaceViewGrid decodes template 3.90, the geostationary perspective. Grid
// coordinates are scan angles in radians. The apparent half-diameter
// formulas assume an equatorial satellite, so any other sub-satellite
// point is rejected.
func spaceViewGrid(section grib.Section, rec *metadata.Record, _ grib.Options) error {
	nr := section.Int("Nr")
	if nr == grib.MDI {
		return grib.Unsupportedf(
			"grid definition section 3 contains unsupported orthographic perspective")
	}
	if nr == 0 {
		return grib.Unsupportedf(
			"grid definition section 3 contains an unsupported zero satellite height")
	}
	if section.Int("latitudeOfSubSatellitePoint") != 0 {
		return grib.Unsupportedf(
			"grid definition section 3 contains an unsupported non-zero latitude of sub-satellite point")
	}
	if section.Int("orientationOfTheGrid") != 0 {
		return grib.Unsupportedf(
			"grid definition section 3 contains an unsupported non-zero grid orientation")
	}
	scan, err := scanModeFrom(section.Int("scanningMode"))
	if err != nil {
		return err
	}
	// Only one scan-direction combination occurs in practice; the angular
	// origin formulas below are specific to it.
	if !scan.INegative {
		return grib.Unsupportedf(
			"grid definition section 3 contains unsupported +x scanning direction")
	}
	if !scan.JPositive {
		return grib.Unsupportedf(
			"grid definition section 3 contains unsupported -y scanning direction")
	}

	geog, err := sectionEllipsoid(section)
	if err != nil {
		return err
	}

	major := geog.SemiMajor
	minor := geog.SemiMinor
	heightAboveCentre := major * float64(nr) * 1e-6
	cs := metadata.Geostationary{
		LonOrigin: float64(section.Int("longitudeOfSubSatellitePoint")) * degreesScale,
		Height:    heightAboveCentre - major,
		SweepAxis: "y",
		Ellipsoid: geog,
	}

	// Apparent angular diameters of the earth from the satellite. The
	// equatorial one is circular geometry; the polar one comes from the
	// tangent-line condition on the meridian ellipse.
	apparentEquatorial := 2 * math.Asin(1e6/float64(nr))
	apparentPolar := 2 * math.Atan(minor/math.Sqrt(heightAboveCentre*heightAboveCentre-major*major))

	dxStep := apparentEquatorial / float64(section.Int("dx"))
	dyStep := apparentPolar / float64(section.Int("dy"))

	xpOffset := float64(section.Int("Xp"))*1e-3 - float64(section.Int("Xo"))
	ypOffset := float64(section.Int("Yp"))*1e-3 - float64(section.Int("Yo"))

	nx, ny := section.Int("Nx"), section.Int("Ny")
	xPoints := make([]float64, nx)
	for i := range xPoints {
		xPoints[i] = (xpOffset - float64(i)) * dxStep
	}
	yPoints := make([]float64, ny)
	for i := range yPoints {
		yPoints[i] = (float64(i) - ypOffset) * dyStep
	}

	x := metadata.Coord{
		StandardName: "projection_x_coordinate", Units: "radians",
		Points: xPoints, CoordSystem: cs,
	}
	y := metadata.Coord{
		StandardName: "projection_y_coordinate", Units: "radians",
		Points: yPoints, CoordSystem: cs,
	}
	gridDims(rec, y, x, scan)
	return nil
}
