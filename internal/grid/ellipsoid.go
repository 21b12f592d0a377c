package grid

import (
	"math"

	"github.com/couchcryptid/gribmeta/internal/grib"
	"github.com/couchcryptid/gribmeta/internal/metadata"
)

// Fixed figures assigned by code table 3.2.
const (
	earthRadiusDefault = 6367470.0
	earthRadiusIAU     = 6371229.0
	iau65Major         = 6378160.0
	iau65Minor         = 6356775.0
	grs80Major         = 6378137.0
	grs80Minor         = 6356752.314
	wgs84Major         = 6378137.0
	wgs84Minor         = 6356752.314245
)

// ellipsoidGeometry unscales the explicit earth-figure fields. Missing
// operands come back as NaN; whether that matters depends on the shape
// code.
func ellipsoidGeometry(s grib.Section) (major, minor, radius float64) {
	major = grib.Unscale(s.Int("scaledValueOfEarthMajorAxis"),
		s.Int("scaleFactorOfEarthMajorAxis"))
	minor = grib.Unscale(s.Int("scaledValueOfEarthMinorAxis"),
		s.Int("scaleFactorOfEarthMinorAxis"))
	radius = grib.Unscale(s.Int("scaledValueOfRadiusOfSphericalEarth"),
		s.Int("scaleFactorOfRadiusOfSphericalEarth"))
	return major, minor, radius
}

// ellipsoid decodes code table 3.2 into a geographic coordinate system:
// spherical by code, spherical by explicit radius, or oblate by explicit
// axes, with shape 3 carrying its axes in kilometres.
func ellipsoid(shape int64, major, minor, radius float64) (metadata.GeogCS, error) {
	switch shape {
	case 0:
		return metadata.SphereCS(earthRadiusDefault), nil
	case 1:
		if math.IsNaN(radius) {
			return metadata.GeogCS{}, grib.Unsupportedf(
				"ellipsoid for shape of the earth [%d] requires a radius to be specified", shape)
		}
		return metadata.SphereCS(radius), nil
	case 2:
		return metadata.GeogCS{SemiMajor: iau65Major, SemiMinor: iau65Minor}, nil
	case 3, 7:
		if math.IsNaN(major) {
			return metadata.GeogCS{}, grib.Unsupportedf(
				"ellipsoid for shape of the earth [%d] requires a semi-major axis to be specified", shape)
		}
		if math.IsNaN(minor) {
			return metadata.GeogCS{}, grib.Unsupportedf(
				"ellipsoid for shape of the earth [%d] requires a semi-minor axis to be specified", shape)
		}
		if shape == 3 {
			// Shape 3 alone encodes its axes in kilometres.
			major *= 1000
			minor *= 1000
		}
		return metadata.GeogCS{SemiMajor: major, SemiMinor: minor}, nil
	case 4:
		return metadata.GeogCS{SemiMajor: grs80Major, SemiMinor: grs80Minor}, nil
	case 5:
		return metadata.GeogCS{SemiMajor: wgs84Major, SemiMinor: wgs84Minor}, nil
	case 6:
		return metadata.SphereCS(earthRadiusIAU), nil
	default:
		return metadata.GeogCS{}, grib.Unsupportedf(
			"grid definition section 3 contains an unsupported shape of the earth [%d]", shape)
	}
}

// sectionEllipsoid is the common decode path from a grid section.
func sectionEllipsoid(s grib.Section) (metadata.GeogCS, error) {
	major, minor, radius := ellipsoidGeometry(s)
	return ellipsoid(s.Int("shapeOfTheEarth"), major, minor, radius)
}
