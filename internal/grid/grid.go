// Package grid translates Section 3 of a message, in both directions:
// each grid definition template decodes to coordinate point arrays plus
// the governing coordinate system, and a record with matching coordinates
// encodes back to the template's wire fields.
package grid

import (
	"github.com/couchcryptid/gribmeta/internal/grib"
	"github.com/couchcryptid/gribmeta/internal/metadata"
)

// degreesScale is the Regulation 92.1.6 fixed-point resolution: angles
// are wire integers in units of 1e-6 degree.
const degreesScale = 1e-6

// Length units used by the projected templates.
const (
	milliMetres = 1e-3
	centiMetres = 1e-2
)

// Translate decodes a grid definition section into coordinates on the
// record, dispatching on the template number.
func Translate(section grib.Section, rec *metadata.Record, opts grib.Options) error {
	template := section.Int("gridDefinitionTemplateNumber")
	switch template {
	case 0:
		return latLonGrid(section, rec, opts)
	case 1:
		return rotatedLatLonGrid(section, rec, opts)
	case 4:
		return irregularLatLonGrid(section, rec, opts)
	case 5:
		return rotatedIrregularLatLonGrid(section, rec, opts)
	case 10:
		return mercatorGrid(section, rec, opts)
	case 12:
		return transverseMercatorGrid(section, rec, opts)
	case 20:
		return polarStereoGrid(section, rec, opts)
	case 30:
		return lambertConformalGrid(section, rec, opts)
	case 40:
		return gaussianGrid(section, rec, opts)
	case 90:
		return spaceViewGrid(section, rec, opts)
	case 140:
		return lambertAzimuthalGrid(section, rec, opts)
	default:
		return grib.Unsupportedf("grid definition template [%d] is not supported", template)
	}
}

// gridDims appends the x/y dimension coordinates in the axis order the
// scanning mode dictates: rows of i unless the j direction is consecutive.
func gridDims(rec *metadata.Record, y, x metadata.Coord, scan ScanMode) {
	yDim, xDim := 0, 1
	if scan.JConsecutive {
		yDim, xDim = 1, 0
	}
	rec.AddDimCoord(y, yDim)
	rec.AddDimCoord(x, xDim)
}
