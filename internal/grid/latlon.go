package grid

import (
	"math"
	"sort"

	"github.com/couchcryptid/gribmeta/internal/grib"
	"github.com/couchcryptid/gribmeta/internal/metadata"
)

// calculateIncrement reconstructs a step the sender omitted:
// (last - first) / count, wrapped into [0, mod) when a modulus applies
// (longitude crossing the dateline).
func calculateIncrement(first, last, count, mod int64) float64 {
	diff := last - first
	if mod != 0 {
		diff = ((diff % mod) + mod) % mod
	}
	return float64(diff) / float64(count)
}

// regularPoints expands first + i*step with the direction the scanning
// bit gives.
func regularPoints(first, step float64, count int64, negative bool) []float64 {
	if negative {
		step = -step
	}
	points := make([]float64, count)
	for i := range points {
		points[i] = first + float64(i)*step
	}
	return points
}

// isCircular reports whether longitude points wrap the full circle: the
// gap from the last point back to the first does not exceed the largest
// step.
func isCircular(points []float64) bool {
	if len(points) < 2 {
		return false
	}
	maxStep := 0.0
	for i := 1; i < len(points); i++ {
		if step := math.Abs(points[i] - points[i-1]); step > maxStep {
			maxStep = step
		}
	}
	span := math.Abs(points[len(points)-1] - points[0])
	gap := math.Mod(360-math.Mod(span, 360), 360)
	return gap <= maxStep+1e-9
}

// rejectQuasiRegular fails templates that only translate in their regular
// form.
func rejectQuasiRegular(section grib.Section) error {
	if section.Int("numberOfOctectsForNumberOfPoints") != 0 ||
		section.Int("interpretationOfNumberOfPoints") != 0 {
		return grib.Unsupportedf(
			"grid definition section 3 contains unsupported quasi-regular grid")
	}
	return nil
}

// regularLatLonCoords builds the x and y coordinates shared by the plain
// and rotated regular lat-lon templates.
func regularLatLonCoords(section grib.Section, yName, xName string,
	cs metadata.CoordSystem) (y, x metadata.Coord, scan ScanMode, err error) {

	if err = rejectQuasiRegular(section); err != nil {
		return y, x, scan, err
	}
	scan, err = scanModeFrom(section.Int("scanningMode"))
	if err != nil {
		return y, x, scan, err
	}
	res := resolutionFlagsFrom(section.Int("resolutionAndComponentFlags"))

	ni := section.Int("Ni")
	nj := section.Int("Nj")

	var xStep float64
	if res.IIncrementsGiven {
		xStep = float64(section.Int("iDirectionIncrement"))
	} else {
		xStep = calculateIncrement(section.Int("longitudeOfFirstGridPoint"),
			section.Int("longitudeOfLastGridPoint"), ni-1, 360_000_000)
	}
	xFirst := float64(section.Int("longitudeOfFirstGridPoint"))
	xPoints := regularPoints(xFirst*degreesScale, xStep*degreesScale, ni, scan.INegative)

	var yStep float64
	if res.JIncrementsGiven {
		yStep = float64(section.Int("jDirectionIncrement"))
	} else {
		yStep = calculateIncrement(section.Int("latitudeOfFirstGridPoint"),
			section.Int("latitudeOfLastGridPoint"), nj-1, 0)
	}
	yFirst := float64(section.Int("latitudeOfFirstGridPoint"))
	yPoints := regularPoints(yFirst*degreesScale, yStep*degreesScale, nj, !scan.JPositive)

	x = metadata.Coord{
		StandardName: xName,
		Units:        "degrees",
		Points:       xPoints,
		CoordSystem:  cs,
		Circular:     isCircular(xPoints),
	}
	y = metadata.Coord{
		StandardName: yName,
		Units:        "degrees",
		Points:       yPoints,
		CoordSystem:  cs,
	}
	return y, x, scan, nil
}

// latLonGrid decodes template 3.0, a regular latitude/longitude grid.
func latLonGrid(section grib.Section, rec *metadata.Record, _ grib.Options) error {
	cs, err := sectionEllipsoid(section)
	if err != nil {
		return err
	}
	y, x, scan, err := regularLatLonCoords(section, "latitude", "longitude", cs)
	if err != nil {
		return err
	}
	gridDims(rec, y, x, scan)
	return nil
}

// rotatedPoleCS decodes the southern-pole fields shared by templates 3.1
// and 3.5.
func rotatedPoleCS(section grib.Section, ellipsoid metadata.GeogCS) metadata.RotatedGeogCS {
	southLat := float64(section.Int("latitudeOfSouthernPole")) * degreesScale
	southLon := float64(section.Int("longitudeOfSouthernPole")) * degreesScale
	return metadata.RotatedGeogCS{
		GridNorthPoleLat: -southLat,
		GridNorthPoleLon: math.Mod(southLon-180+360, 360),
		NorthPoleLon:     float64(section.Int("angleOfRotation")) * degreesScale,
		Ellipsoid:        ellipsoid,
	}
}

// rotatedLatLonGrid decodes template 3.1, a regular grid about a
// repositioned pole.
func rotatedLatLonGrid(section grib.Section, rec *metadata.Record, _ grib.Options) error {
	geog, err := sectionEllipsoid(section)
	if err != nil {
		return err
	}
	cs := rotatedPoleCS(section, geog)
	y, x, scan, err := regularLatLonCoords(section, "grid_latitude", "grid_longitude", cs)
	if err != nil {
		return err
	}
	gridDims(rec, y, x, scan)
	return nil
}

// irregularCoords builds the per-point coordinates of templates 3.4 and
// 3.5, whose angles use an explicit basic-angle/subdivisions resolution.
func irregularCoords(section grib.Section, yName, xName string,
	cs metadata.CoordSystem, opts grib.Options) (y, x metadata.Coord, scan ScanMode, err error) {

	scan, err = scanModeFrom(section.Int("scanningMode"))
	if err != nil {
		return y, x, scan, err
	}
	res := resolutionFlagsFrom(section.Int("resolutionAndComponentFlags"))
	if res.UVResolved {
		opts.WarnUnsupported("unable to translate resolution and component flags")
	}

	resolution := degreesScale
	basic := section.Int("basicAngleOfTheInitialProductionDomain")
	subdivisions := section.Int("subdivisionsOfBasicAngle")
	if basic != 0 && basic != grib.MDI && subdivisions != 0 && subdivisions != grib.MDI {
		resolution = float64(basic) / float64(subdivisions)
	}

	lons := section.Ints("longitudes")
	lats := section.Ints("latitudes")
	xPoints := make([]float64, len(lons))
	for i, v := range lons {
		xPoints[i] = float64(v) * resolution
	}
	yPoints := make([]float64, len(lats))
	for i, v := range lats {
		yPoints[i] = float64(v) * resolution
	}

	x = metadata.Coord{StandardName: xName, Units: "degrees", Points: xPoints, CoordSystem: cs}
	y = metadata.Coord{StandardName: yName, Units: "degrees", Points: yPoints, CoordSystem: cs}
	return y, x, scan, nil
}

// irregularLatLonGrid decodes template 3.4, per-point latitudes and
// longitudes.
func irregularLatLonGrid(section grib.Section, rec *metadata.Record, opts grib.Options) error {
	cs, err := sectionEllipsoid(section)
	if err != nil {
		return err
	}
	y, x, scan, err := irregularCoords(section, "latitude", "longitude", cs, opts)
	if err != nil {
		return err
	}
	gridDims(rec, y, x, scan)
	return nil
}

// rotatedIrregularLatLonGrid decodes template 3.5.
func rotatedIrregularLatLonGrid(section grib.Section, rec *metadata.Record, opts grib.Options) error {
	geog, err := sectionEllipsoid(section)
	if err != nil {
		return err
	}
	cs := rotatedPoleCS(section, geog)
	y, x, scan, err := irregularCoords(section, "grid_latitude", "grid_longitude", cs, opts)
	if err != nil {
		return err
	}
	gridDims(rec, y, x, scan)
	return nil
}

// gaussianGrid decodes template 3.40 in both its regular and reduced
// forms. Latitude points are the reader's precomputed quadrature roots
// ("distinctLatitudes"); they are not derived analytically here.
func gaussianGrid(section grib.Section, rec *metadata.Record, _ grib.Options) error {
	cs, err := sectionEllipsoid(section)
	if err != nil {
		return err
	}
	scan, err := scanModeFrom(section.Int("scanningMode"))
	if err != nil {
		return err
	}

	if section.Int("numberOfOctectsForNumberOfPoints") != 0 {
		// Reduced grid: a single storage dimension with non-separable
		// auxiliary lat/lon coordinates.
		lats := section.Floats("latitudes")
		lons := section.Floats("longitudes")
		rec.AddAuxCoord(metadata.Coord{
			StandardName: "latitude", Units: "degrees", Points: lats, CoordSystem: cs,
		}, 0)
		rec.AddAuxCoord(metadata.Coord{
			StandardName: "longitude", Units: "degrees", Points: lons, CoordSystem: cs,
		}, 0)
		return nil
	}

	ni := section.Int("Ni")
	res := resolutionFlagsFrom(section.Int("resolutionAndComponentFlags"))
	var xStep float64
	if res.IIncrementsGiven {
		xStep = float64(section.Int("iDirectionIncrement"))
	} else {
		xStep = calculateIncrement(section.Int("longitudeOfFirstGridPoint"),
			section.Int("longitudeOfLastGridPoint"), ni-1, 360_000_000)
	}
	xFirst := float64(section.Int("longitudeOfFirstGridPoint"))
	xPoints := regularPoints(xFirst*degreesScale, xStep*degreesScale, ni, scan.INegative)

	lats := append([]float64(nil), section.Floats("distinctLatitudes")...)
	sort.Float64s(lats)
	if !scan.JPositive {
		for i, j := 0, len(lats)-1; i < j; i, j = i+1, j-1 {
			lats[i], lats[j] = lats[j], lats[i]
		}
	}

	x := metadata.Coord{
		StandardName: "longitude", Units: "degrees", Points: xPoints,
		CoordSystem: cs, Circular: isCircular(xPoints),
	}
	y := metadata.Coord{StandardName: "latitude", Units: "degrees", Points: lats, CoordSystem: cs}
	gridDims(rec, y, x, scan)
	return nil
}
