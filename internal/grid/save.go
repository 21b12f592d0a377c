package grid

import (
	"math"

	"github.com/couchcryptid/gribmeta/internal/grib"
	"github.com/couchcryptid/gribmeta/internal/metadata"
	"github.com/couchcryptid/gribmeta/internal/projection"
)

// Encode writes the grid definition section for a record, choosing the
// template from the coordinate system and the spacing of the points.
func Encode(rec *metadata.Record, section grib.Section, opts grib.Options) error {
	y, x, err := horizontalCoords(rec)
	if err != nil {
		return err
	}

	switch cs := x.CoordSystem.(type) {
	case metadata.GeogCS:
		if regularDegrees(x.Points) && regularDegrees(y.Points) {
			return encodeLatLon(rec, y, x, cs, section)
		}
		return encodeIrregularLatLon(rec, y, x, cs, nil, section)
	case metadata.RotatedGeogCS:
		if cs.NorthPoleLon != 0 {
			return grib.Unsupportedf("rotated prime meridian is not yet supported")
		}
		if regularDegrees(x.Points) && regularDegrees(y.Points) {
			return encodeRotatedLatLon(rec, y, x, cs, section)
		}
		return encodeIrregularLatLon(rec, y, x, cs.Ellipsoid, &cs, section)
	case metadata.Mercator:
		return encodeMercator(y, x, cs, section)
	case metadata.TransverseMercator:
		return encodeTransverseMercator(y, x, cs, section, opts)
	case metadata.Stereographic:
		return encodeStereographic(y, x, cs, section)
	case metadata.LambertConformal:
		return encodeLambertConformal(y, x, cs, section)
	case metadata.LambertAzimuthal:
		return encodeLambertAzimuthal(y, x, cs, section)
	default:
		return grib.Unsupportedf("grid encoding is not supported for coordinate system %T", cs)
	}
}

// horizontalCoords locates the record's grid axes by their conventional
// names.
func horizontalCoords(rec *metadata.Record) (y, x metadata.Coord, err error) {
	xNames := []string{"longitude", "grid_longitude", "projection_x_coordinate"}
	yNames := []string{"latitude", "grid_latitude", "projection_y_coordinate"}
	for _, n := range xNames {
		if c, ok := rec.Coord(n); ok {
			x = c
		}
	}
	for _, n := range yNames {
		if c, ok := rec.Coord(n); ok {
			y = c
		}
	}
	if len(x.Points) == 0 || len(y.Points) == 0 {
		return y, x, grib.Unsupportedf("cannot encode a grid without horizontal coordinates")
	}
	return y, x, nil
}

// regularStep returns the common step of evenly spaced points, failing
// when any gap strays more than atol from the mean.
func regularStep(points []float64, atol float64) (float64, bool) {
	if len(points) < 2 {
		return 0, false
	}
	mean := (points[len(points)-1] - points[0]) / float64(len(points)-1)
	for i := 1; i < len(points); i++ {
		if math.Abs((points[i]-points[i-1])-mean) > atol {
			return 0, false
		}
	}
	return mean, true
}

// regularDegrees applies the lat-lon regularity test at the templates' own
// fixed-point resolution.
func regularDegrees(points []float64) bool {
	_, ok := regularStep(points, degreesScale)
	return ok
}

// encodeEarthShape writes the shape-of-the-earth fields: explicit radius
// for spheres, explicit axes otherwise.
func encodeEarthShape(cs metadata.GeogCS, section grib.Section) {
	for _, key := range []string{
		"scaleFactorOfRadiusOfSphericalEarth", "scaledValueOfRadiusOfSphericalEarth",
		"scaleFactorOfEarthMajorAxis", "scaledValueOfEarthMajorAxis",
		"scaleFactorOfEarthMinorAxis", "scaledValueOfEarthMinorAxis",
	} {
		section.SetMissing(key)
	}
	if cs.Spherical() {
		section.Set("shapeOfTheEarth", int64(1))
		section.Set("scaleFactorOfRadiusOfSphericalEarth", int64(0))
		section.Set("scaledValueOfRadiusOfSphericalEarth", grib.EncodeScaled(cs.SemiMajor))
		return
	}
	section.Set("shapeOfTheEarth", int64(7))
	section.Set("scaleFactorOfEarthMajorAxis", int64(0))
	section.Set("scaledValueOfEarthMajorAxis", grib.EncodeScaled(cs.SemiMajor))
	section.Set("scaleFactorOfEarthMinorAxis", int64(0))
	section.Set("scaledValueOfEarthMinorAxis", grib.EncodeScaled(cs.SemiMinor))
}

// encodeScanOrder derives the scanning-mode byte from point orderings.
func encodeScanOrder(y, x metadata.Coord, section grib.Section) ScanMode {
	scan := ScanMode{
		INegative: len(x.Points) > 1 && x.Points[1] < x.Points[0],
		JPositive: len(y.Points) > 1 && y.Points[1] > y.Points[0],
	}
	section.Set("scanningMode", encodeScanMode(scan))
	return scan
}

// microDegrees rounds a degree value onto the 1e-6 wire grid.
func microDegrees(v float64) int64 {
	return int64(math.Round(v / degreesScale))
}

// microDegreesLon wraps a longitude into [0, 360) before scaling.
func microDegreesLon(v float64) int64 {
	return microDegrees(math.Mod(math.Mod(v, 360)+360, 360))
}

// encodeLatLon writes template 3.0.
func encodeLatLon(rec *metadata.Record, y, x metadata.Coord,
	cs metadata.GeogCS, section grib.Section) error {
	section.Set("gridDefinitionTemplateNumber", int64(0))
	encodeEarthShape(cs, section)
	return encodeRegularDegreeGrid(y, x, section)
}

// encodeRotatedLatLon writes template 3.1.
func encodeRotatedLatLon(rec *metadata.Record, y, x metadata.Coord,
	cs metadata.RotatedGeogCS, section grib.Section) error {
	section.Set("gridDefinitionTemplateNumber", int64(1))
	encodeEarthShape(cs.Ellipsoid, section)
	encodeSouthernPole(cs, section)
	return encodeRegularDegreeGrid(y, x, section)
}

// encodeSouthernPole converts the rotated-pole parameters back to the
// wire's southern-pole form.
func encodeSouthernPole(cs metadata.RotatedGeogCS, section grib.Section) {
	section.Set("latitudeOfSouthernPole", microDegrees(-cs.GridNorthPoleLat))
	section.Set("longitudeOfSouthernPole", microDegreesLon(cs.GridNorthPoleLon+180))
	section.Set("angleOfRotation", int64(0))
}

// encodeRegularDegreeGrid writes the point fields shared by templates 3.0
// and 3.1.
func encodeRegularDegreeGrid(y, x metadata.Coord, section grib.Section) error {
	xStep, ok := regularStep(x.Points, degreesScale)
	if !ok {
		return grib.Unsupportedf("irregular longitude spacing cannot use a regular grid template")
	}
	yStep, ok := regularStep(y.Points, degreesScale)
	if !ok {
		return grib.Unsupportedf("irregular latitude spacing cannot use a regular grid template")
	}

	section.Set("Ni", int64(len(x.Points)))
	section.Set("Nj", int64(len(y.Points)))
	section.Set("latitudeOfFirstGridPoint", microDegrees(y.Points[0]))
	section.Set("latitudeOfLastGridPoint", microDegrees(y.Points[len(y.Points)-1]))
	section.Set("longitudeOfFirstGridPoint", microDegreesLon(x.Points[0]))
	section.Set("longitudeOfLastGridPoint", microDegreesLon(x.Points[len(x.Points)-1]))
	section.Set("iDirectionIncrement", int64(math.Round(math.Abs(xStep)/degreesScale)))
	section.Set("jDirectionIncrement", int64(math.Round(math.Abs(yStep)/degreesScale)))
	section.Set("resolutionAndComponentFlags", int64(0x30))
	section.Set("numberOfOctectsForNumberOfPoints", int64(0))
	section.Set("interpretationOfNumberOfPoints", int64(0))
	encodeScanOrder(y, x, section)
	return nil
}

// gridWindNames are the phenomena whose vector components follow the grid
// axes rather than true east/north.
var gridWindNames = map[string]bool{
	"x_wind": true, "y_wind": true,
	"grid_eastward_wind": true, "grid_northward_wind": true,
}

// encodeIrregularLatLon writes template 3.4, or 3.5 when a rotated pole is
// given.
func encodeIrregularLatLon(rec *metadata.Record, y, x metadata.Coord,
	ellipsoid metadata.GeogCS, rotated *metadata.RotatedGeogCS, section grib.Section) error {

	if rotated != nil {
		section.Set("gridDefinitionTemplateNumber", int64(5))
		encodeSouthernPole(*rotated, section)
	} else {
		section.Set("gridDefinitionTemplateNumber", int64(4))
	}
	encodeEarthShape(ellipsoid, section)

	section.Set("Ni", int64(len(x.Points)))
	section.Set("Nj", int64(len(y.Points)))
	section.SetMissing("basicAngleOfTheInitialProductionDomain")
	section.SetMissing("subdivisionsOfBasicAngle")

	lons := make([]int64, len(x.Points))
	for i, v := range x.Points {
		lons[i] = microDegrees(v)
	}
	lats := make([]int64, len(y.Points))
	for i, v := range y.Points {
		lats[i] = microDegrees(v)
	}
	section.Set("longitudes", lons)
	section.Set("latitudes", lats)

	flags := int64(0)
	if gridWindNames[rec.Name()] {
		flags |= 0x08
	}
	section.Set("resolutionAndComponentFlags", flags)
	encodeScanOrder(y, x, section)
	return nil
}

// encodeMercator writes template 3.10. Grid lengths are millimetres; the
// regularity tolerance is one of them.
func encodeMercator(y, x metadata.Coord, cs metadata.Mercator, section grib.Section) error {
	xStep, xOK := regularStep(scalePoints(x.Points, 1/milliMetres), 1)
	yStep, yOK := regularStep(scalePoints(y.Points, 1/milliMetres), 1)
	if !xOK || !yOK {
		return grib.Unsupportedf("irregular coordinates not supported for Mercator")
	}

	section.Set("gridDefinitionTemplateNumber", int64(10))
	encodeEarthShape(cs.Ellipsoid, section)
	section.Set("Ni", int64(len(x.Points)))
	section.Set("Nj", int64(len(y.Points)))
	section.Set("LaD", microDegrees(cs.StandardParallel))
	section.Set("Di", int64(math.Round(math.Abs(xStep))))
	section.Set("Dj", int64(math.Round(math.Abs(yStep))))

	lon0, lat0 := projection.MercatorInverse(cs, x.Points[0], y.Points[0])
	lonN, latN := projection.MercatorInverse(cs,
		x.Points[len(x.Points)-1], y.Points[len(y.Points)-1])
	section.Set("latitudeOfFirstGridPoint", microDegrees(lat0))
	section.Set("longitudeOfFirstGridPoint", microDegreesLon(lon0))
	section.Set("latitudeOfLastGridPoint", microDegrees(latN))
	section.Set("longitudeOfLastGridPoint", microDegreesLon(lonN))

	section.Set("resolutionAndComponentFlags", int64(0x08))
	encodeScanOrder(y, x, section)
	return nil
}

// encodeTransverseMercator writes template 3.12 in its centimetre units,
// using the sign-and-magnitude fixups the signed corner fields need.
func encodeTransverseMercator(y, x metadata.Coord, cs metadata.TransverseMercator,
	section grib.Section, opts grib.Options) error {

	xStep, xOK := regularStep(scalePoints(x.Points, 1/centiMetres), 1)
	yStep, yOK := regularStep(scalePoints(y.Points, 1/centiMetres), 1)
	if !xOK || !yOK {
		return grib.Unsupportedf("irregular coordinates not supported for Transverse Mercator")
	}

	section.Set("gridDefinitionTemplateNumber", int64(12))
	encodeEarthShape(cs.Ellipsoid, section)
	section.Set("Ni", int64(len(x.Points)))
	section.Set("Nj", int64(len(y.Points)))
	section.Set("latitudeOfReferencePoint", microDegrees(cs.LatOrigin))
	section.Set("longitudeOfReferencePoint", microDegreesLon(cs.LonOrigin))
	section.Set("scaleFactorAtReferencePoint", grib.Float32AsInt32(float32(cs.ScaleFactor)))

	for key, metres := range map[string]float64{
		"XR": cs.FalseEasting,
		"YR": cs.FalseNorthing,
		"X1": x.Points[0],
		"X2": x.Points[len(x.Points)-1],
		"Y1": y.Points[0],
		"Y2": y.Points[len(y.Points)-1],
	} {
		v, err := grib.Int32AsUint32(int64(math.Round(metres / centiMetres)))
		if err != nil {
			return err
		}
		section.Set(key, int64(v))
	}
	section.Set("Di", int64(math.Round(math.Abs(xStep))))
	section.Set("Dj", int64(math.Round(math.Abs(yStep))))
	section.Set("resolutionAndComponentFlags", int64(0x30))
	encodeScanOrder(y, x, section)
	return nil
}

// encodeStereographic writes template 3.20 with millimetre lengths. Only
// the polar aspects have a wire form.
func encodeStereographic(y, x metadata.Coord, cs metadata.Stereographic,
	section grib.Section) error {

	xStep, xOK := regularStep(scalePoints(x.Points, 1/milliMetres), 1)
	yStep, yOK := regularStep(scalePoints(y.Points, 1/milliMetres), 1)
	if !xOK || !yOK {
		return grib.Unsupportedf("irregular coordinates not supported for Polar Stereographic")
	}

	var centreFlag int64
	switch {
	case cs.CentralLat > 0:
		centreFlag = 0
	case cs.CentralLat < 0:
		centreFlag = 0x80
	default:
		return grib.Unsupportedf(
			"bipolar and symmetric stereographic projections are not supported")
	}

	section.Set("gridDefinitionTemplateNumber", int64(20))
	encodeEarthShape(cs.Ellipsoid, section)
	section.Set("Nx", int64(len(x.Points)))
	section.Set("Ny", int64(len(y.Points)))
	section.Set("LaD", microDegrees(cs.TrueScaleLat))
	section.Set("orientationOfTheGrid", microDegreesLon(cs.CentralLon))
	section.Set("Dx", int64(math.Round(math.Abs(xStep))))
	section.Set("Dy", int64(math.Round(math.Abs(yStep))))

	lon0, lat0 := projection.StereographicInverse(cs, x.Points[0], y.Points[0])
	section.Set("latitudeOfFirstGridPoint", microDegrees(lat0))
	section.Set("longitudeOfFirstGridPoint", microDegreesLon(lon0))

	section.Set("projectionCentreFlag", centreFlag)
	section.Set("resolutionAndComponentFlags", int64(0x08))
	encodeScanOrder(y, x, section)
	return nil
}

// encodeLambertConformal writes template 3.30 with millimetre lengths.
func encodeLambertConformal(y, x metadata.Coord, cs metadata.LambertConformal,
	section grib.Section) error {

	xStep, xOK := regularStep(scalePoints(x.Points, 1/milliMetres), 1)
	yStep, yOK := regularStep(scalePoints(y.Points, 1/milliMetres), 1)
	if !xOK || !yOK {
		return grib.Unsupportedf("irregular coordinates not supported for Lambert Conformal")
	}

	section.Set("gridDefinitionTemplateNumber", int64(30))
	encodeEarthShape(cs.Ellipsoid, section)
	section.Set("Nx", int64(len(x.Points)))
	section.Set("Ny", int64(len(y.Points)))
	section.Set("LaD", microDegrees(cs.CentralLat))
	section.Set("LoV", microDegreesLon(cs.CentralLon))
	section.Set("Latin1", microDegrees(cs.SecantLats[0]))
	section.Set("Latin2", microDegrees(cs.SecantLats[1]))
	section.Set("Dx", int64(math.Round(math.Abs(xStep))))
	section.Set("Dy", int64(math.Round(math.Abs(yStep))))

	lon0, lat0 := projection.LambertConformalInverse(cs, x.Points[0], y.Points[0])
	section.Set("latitudeOfFirstGridPoint", microDegrees(lat0))
	section.Set("longitudeOfFirstGridPoint", microDegreesLon(lon0))

	// The pole on the projection plane follows the secant latitude
	// poleward of the other.
	poliest := cs.SecantLats[0]
	if math.Abs(cs.SecantLats[1]) > math.Abs(poliest) {
		poliest = cs.SecantLats[1]
	}
	if poliest < 0 {
		section.Set("projectionCentreFlag", int64(0x80))
	} else {
		section.Set("projectionCentreFlag", int64(0))
	}
	section.Set("latitudeOfSouthernPole", int64(0))
	section.Set("longitudeOfSouthernPole", int64(0))
	section.Set("resolutionAndComponentFlags", int64(0x08))
	encodeScanOrder(y, x, section)
	return nil
}

// encodeLambertAzimuthal writes template 3.140 with millimetre lengths.
func encodeLambertAzimuthal(y, x metadata.Coord, cs metadata.LambertAzimuthal,
	section grib.Section) error {

	xStep, xOK := regularStep(scalePoints(x.Points, 1/milliMetres), 1)
	yStep, yOK := regularStep(scalePoints(y.Points, 1/milliMetres), 1)
	if !xOK || !yOK {
		return grib.Unsupportedf("irregular coordinates not supported for Lambert Azimuthal Equal Area")
	}

	section.Set("gridDefinitionTemplateNumber", int64(140))
	encodeEarthShape(cs.Ellipsoid, section)
	section.Set("Nx", int64(len(x.Points)))
	section.Set("Ny", int64(len(y.Points)))
	section.Set("standardParallelInMicrodegrees", microDegrees(cs.CentralLat))
	section.Set("centralLongitudeInMicrodegrees", microDegreesLon(cs.CentralLon))
	section.Set("Dx", int64(math.Round(math.Abs(xStep))))
	section.Set("Dy", int64(math.Round(math.Abs(yStep))))

	lon0, lat0 := projection.LambertAzimuthalInverse(cs, x.Points[0], y.Points[0])
	section.Set("latitudeOfFirstGridPoint", microDegrees(lat0))
	section.Set("longitudeOfFirstGridPoint", microDegreesLon(lon0))

	section.Set("resolutionAndComponentFlags", int64(0x08))
	encodeScanOrder(y, x, section)
	return nil
}

func scalePoints(points []float64, factor float64) []float64 {
	out := make([]float64, len(points))
	for i, v := range points {
		out[i] = v * factor
	}
	return out
}
