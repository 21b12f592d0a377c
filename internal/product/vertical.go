package product

import (
	"fmt"
	"math"

	"github.com/couchcryptid/gribmeta/internal/grib"
	"github.com/couchcryptid/gribmeta/internal/metadata"
)

// Fixed-surface types carrying a hybrid vertical coordinate.
const (
	surfaceGround         = 1
	surfaceHybridHeight   = 118
	surfaceHybridPressure = 119
)

// verticalCoords decodes the fixed-surface fields: a hybrid level when a
// PV coefficient vector is present, a plain level otherwise.
func verticalCoords(section grib.Section, rec *metadata.Record, opts grib.Options) error {
	if nv := section.Int("NV"); nv != 0 && nv != grib.MDI {
		return hybridFactories(section, rec)
	}
	return plainLevel(section, rec, opts)
}

// plainLevel builds the vertical coordinate of a non-hybrid message,
// bounded when a second surface of the same type is present. Surface type
// 1 ("ground") suppresses the coordinate entirely; that may not be truly
// correct, but it is common practice.
func plainLevel(section grib.Section, rec *metadata.Record, opts grib.Options) error {
	if section.SurfaceTypeMissing("typeOfFirstFixedSurface") {
		return nil
	}
	surfaceType := section.Int("typeOfFirstFixedSurface")
	if surfaceType == surfaceGround {
		return nil
	}

	fs, known := grib.FixedSurfaceFor(surfaceType)
	first := grib.Unscale(section.Int("scaledValueOfFirstFixedSurface"),
		section.Int("scaleFactorOfFirstFixedSurface"))
	if math.IsNaN(first) && !known {
		opts.WarnUnsupported(
			"unable to translate type of first fixed surface with missing scaled value")
		return nil
	}

	coord := metadata.Coord{
		StandardName: fs.StandardName,
		LongName:     fs.LongName,
		Units:        fs.Units,
		Points:       []float64{first},
	}
	if !known {
		coord.LongName = fmt.Sprintf("fixed surface type %d", surfaceType)
		coord = coord.WithAttribute("GRIB_fixed_surface_type", surfaceType)
	}

	if !section.SurfaceTypeMissing("typeOfSecondFixedSurface") {
		if section.Int("typeOfSecondFixedSurface") != surfaceType {
			return grib.Unsupportedf(
				"product definition section 4 contains different types of first and second fixed surface")
		}
		second := grib.Unscale(section.Int("scaledValueOfSecondFixedSurface"),
			section.Int("scaleFactorOfSecondFixedSurface"))
		if math.IsNaN(second) {
			return grib.Unsupportedf(
				"unable to translate type of second fixed surface with missing scaled value")
		}
		coord.Points = []float64{(first + second) / 2}
		coord.Bounds = [][2]float64{{first, second}}
	}

	rec.AddScalar(coord)
	return nil
}

// hybridFactories builds the model-level coordinate plus the delta/sigma
// pair a hybrid level derives from, indexing the flat PV vector at
// pv[level] and pv[NV/2+level], and registers the matching factory with
// the external reference field it needs.
func hybridFactories(section grib.Section, rec *metadata.Record) error {
	surfaceType := section.Int("typeOfFirstFixedSurface")
	if surfaceType != surfaceHybridHeight && surfaceType != surfaceHybridPressure {
		return grib.Unsupportedf(
			"product definition section 4 contains unsupported first fixed surface [%d] for hybrid vertical coordinates",
			surfaceType)
	}

	nv := section.Int("NV")
	pv := section.Floats("pv")
	level := section.Int("scaledValueOfFirstFixedSurface")
	if level == grib.MDI || level < 0 || level >= nv/2 || int(level) >= len(pv) {
		return grib.Unsupportedf(
			"product definition section 4 contains an invalid model level [%d] for its PV vector", level)
	}

	rec.AddScalar(metadata.Coord{
		StandardName: "model_level_number",
		Units:        "1",
		Points:       []float64{float64(level)},
		Attributes:   map[string]any{"positive": "up"},
	})

	delta := pv[level]
	sigma := pv[nv/2+level]

	if surfaceType == surfaceHybridHeight {
		rec.AddScalar(metadata.Coord{
			LongName: "level_height", Units: "m", Points: []float64{delta},
		})
		rec.AddScalar(metadata.Coord{
			LongName: "sigma", Units: "1", Points: []float64{sigma},
		})
		rec.Factories = append(rec.Factories, metadata.Factory{
			Kind:      metadata.HybridHeight,
			DeltaName: "level_height",
			SigmaName: "sigma",
			Reference: "orography",
		})
		rec.References = append(rec.References, "orography")
		return nil
	}

	rec.AddScalar(metadata.Coord{
		LongName: "level_pressure", Units: "Pa", Points: []float64{delta},
	})
	rec.AddScalar(metadata.Coord{
		LongName: "sigma", Units: "1", Points: []float64{sigma},
	})
	rec.Factories = append(rec.Factories, metadata.Factory{
		Kind:      metadata.HybridPressure,
		DeltaName: "level_pressure",
		SigmaName: "sigma",
		Reference: "surface_air_pressure",
	})
	rec.References = append(rec.References, "surface_air_pressure")
	return nil
}

// LevelSource supplies, on the save path, the complete multi-level context
// a single hybrid message cannot carry alone: every model level in the
// dataset with its delta and sigma coefficients.
type LevelSource interface {
	Levels() []int
	Coefficients(level int) (delta, sigma float64)
}

// Model levels must fit the wire field.
const maxModelLevel = 9999

// encodeFixedSurfaces writes the fixed-surface and PV fields for a record.
func encodeFixedSurfaces(rec *metadata.Record, section grib.Section,
	levels LevelSource, opts grib.Options) error {

	if len(rec.Factories) > 0 {
		return encodeHybridSurfaces(rec, section, levels)
	}

	type surface struct {
		name string
		code int64
	}
	for _, s := range []surface{
		{"pressure", 100},
		{"air_pressure", 100},
		{"altitude", 102},
		{"height", 103},
		{"depth", 106},
		{"air_potential_temperature", 107},
	} {
		coord, ok := rec.Coord(s.name)
		if !ok || !coord.Scalar() {
			continue
		}
		section.Set("typeOfFirstFixedSurface", s.code)
		section.Set("scaleFactorOfFirstFixedSurface", int64(0))
		if coord.Bounds != nil {
			section.Set("scaledValueOfFirstFixedSurface", grib.EncodeScaled(coord.Bounds[0][0]))
			section.Set("typeOfSecondFixedSurface", s.code)
			section.Set("scaleFactorOfSecondFixedSurface", int64(0))
			section.Set("scaledValueOfSecondFixedSurface", grib.EncodeScaled(coord.Bounds[0][1]))
		} else {
			section.Set("scaledValueOfFirstFixedSurface", grib.EncodeScaled(coord.Points[0]))
			section.Set("typeOfSecondFixedSurface", grib.FixedSurfaceMissing)
		}
		return nil
	}

	if name, found := unrecognisedVertical(rec); found {
		return grib.Unsupportedf("vertical coordinate %q cannot be encoded as a fixed surface", name)
	}

	// No vertical coordinate at all: encode the ground surface. This may
	// not be truly correct, but it is common practice.
	section.Set("typeOfFirstFixedSurface", int64(surfaceGround))
	section.Set("scaleFactorOfFirstFixedSurface", int64(0))
	section.Set("scaledValueOfFirstFixedSurface", int64(0))
	section.Set("typeOfSecondFixedSurface", grib.FixedSurfaceMissing)
	return nil
}

// verticalNames are the coordinate names the save path treats as vertical.
var verticalNames = map[string]bool{
	"pressure": true, "air_pressure": true, "altitude": true, "height": true,
	"depth": true, "air_potential_temperature": true,
	"model_level_number": true, "level_height": true, "level_pressure": true,
	"sigma": true,
}

// unrecognisedVertical looks for a scalar coordinate that smells vertical
// but has no fixed-surface encoding.
func unrecognisedVertical(rec *metadata.Record) (string, bool) {
	for _, cd := range rec.AuxCoords {
		c := cd.Coord
		if !c.Scalar() || verticalNames[c.Name()] {
			continue
		}
		if c.Attributes != nil {
			if _, ok := c.Attributes["positive"]; ok {
				return c.Name(), true
			}
		}
		if c.Units == "Pa" || c.Name() == "air_pressure_anomaly" {
			return c.Name(), true
		}
	}
	return "", false
}

// encodeHybridSurfaces writes a hybrid level. The PV vector spans every
// level of the dataset, zero-filled for gaps, written once per message at
// each level's own index.
func encodeHybridSurfaces(rec *metadata.Record, section grib.Section,
	levels LevelSource) error {

	factory := rec.Factories[0]
	mln, ok := rec.Coord("model_level_number")
	if !ok || !mln.Scalar() {
		return grib.Unsupportedf("hybrid encoding requires a scalar model_level_number coordinate")
	}
	level := int64(math.Round(mln.Points[0]))
	if level < 1 || level > maxModelLevel {
		return grib.Unsupportedf("model level [%d] is outside the encodable range 1..%d",
			level, maxModelLevel)
	}
	if levels == nil {
		return grib.Unsupportedf("hybrid encoding requires the full multi-level coefficient source")
	}

	surfaceType := int64(surfaceHybridHeight)
	if factory.Kind == metadata.HybridPressure {
		surfaceType = surfaceHybridPressure
	}
	section.Set("typeOfFirstFixedSurface", surfaceType)
	section.Set("scaleFactorOfFirstFixedSurface", int64(0))
	section.Set("scaledValueOfFirstFixedSurface", level)
	section.Set("typeOfSecondFixedSurface", grib.FixedSurfaceMissing)

	maxLevel := 0
	for _, l := range levels.Levels() {
		if l > maxLevel {
			maxLevel = l
		}
	}
	if maxLevel > maxModelLevel {
		return grib.Unsupportedf("model level [%d] is outside the encodable range 1..%d",
			maxLevel, maxModelLevel)
	}

	n := maxLevel + 1
	pv := make([]float64, 2*n)
	for _, l := range levels.Levels() {
		delta, sigma := levels.Coefficients(l)
		pv[l] = delta
		pv[n+l] = sigma
	}
	section.Set("NV", int64(2*n))
	section.Set("pv", pv)
	return nil
}
