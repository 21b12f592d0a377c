// Package phenom translates between wire parameter identities
// (discipline, category, number triplets) and semantic phenomenon
// names with canonical units.
package phenom

import (
	"fmt"
	"math"

	"github.com/couchcryptid/gribmeta/internal/grib"
	"github.com/couchcryptid/gribmeta/internal/metadata"
)

// Probability describes a probability-of-threshold-exceedance product.
// It modifies how the underlying phenomenon is named rather than being
// a phenomenon of its own.
type Probability struct {
	// Qualifier is appended to the base phenomenon name, for example
	// "above_threshold".
	Qualifier string
	// BoundKind names the threshold coordinate, "upper" or "lower".
	BoundKind string
	// Threshold is the unscaled limit value in the phenomenon's units.
	Threshold float64
}

// probabilityQualifiers maps code table 4.9 probability types onto the
// name qualifier and the threshold bound they reference.
var probabilityQualifiers = map[int64]struct {
	qualifier string
	bound     string
}{
	0: {"below_threshold", "lower"},
	1: {"above_threshold", "upper"},
	3: {"above_threshold", "lower"},
	4: {"below_threshold", "upper"},
}

// NewProbability interprets the probability fields of a product
// definition section.
func NewProbability(section grib.Section) (*Probability, error) {
	probType := section.Int("probabilityType")
	entry, ok := probabilityQualifiers[probType]
	if !ok {
		return nil, grib.Unsupportedf(
			"product definition section 4 contains an unsupported probability type [%d]", probType)
	}
	var threshold float64
	var err error
	switch entry.bound {
	case "upper":
		threshold, err = thresholdValue(section,
			"scaledValueOfUpperLimit", "scaleFactorOfUpperLimit")
	default:
		threshold, err = thresholdValue(section,
			"scaledValueOfLowerLimit", "scaleFactorOfLowerLimit")
	}
	if err != nil {
		return nil, err
	}
	return &Probability{
		Qualifier: entry.qualifier,
		BoundKind: entry.bound,
		Threshold: threshold,
	}, nil
}

func thresholdValue(section grib.Section, valueKey, factorKey string) (float64, error) {
	if section.Missing(valueKey) {
		return 0, grib.Unsupportedf(
			"product definition section 4 has a probability threshold with missing scaled value")
	}
	if section.Missing(factorKey) {
		return 0, grib.Unsupportedf(
			"product definition section 4 has a probability threshold with missing scale factor")
	}
	return grib.Unscale(section.Int(valueKey), section.Int(factorKey)), nil
}

// LookupGrib2 resolves an edition-2 parameter identity to its CF name.
func LookupGrib2(discipline, category, number int64) (CFName, bool) {
	name, ok := grib2ToCF[Grib2Key{int(discipline), int(category), int(number)}]
	return name, ok
}

// LookupGrib1 resolves an edition-1 parameter identity to its CF name.
func LookupGrib1(table2Version, centre, number int64) (CFName, bool) {
	name, ok := grib1ToCF[Grib1Key{int(table2Version), int(centre), int(number)}]
	return name, ok
}

// LookupCF finds the edition-2 identity that encodes a phenomenon name.
// Standard name takes precedence; a record carrying only a long name is
// matched on that.
func LookupCF(standardName, longName string) (Grib2Key, bool) {
	lookup := CFName{StandardName: standardName}
	if standardName == "" {
		lookup.LongName = longName
	}
	key, ok := cfToGrib2[lookup]
	return key, ok
}

// TranslatePhenomenon names the record from the section's parameter
// identity, applying any probability qualifier and attaching the
// threshold as a scalar coordinate. An unrecognised identity leaves
// the record unnamed, records the raw codes as attributes and warns.
func TranslatePhenomenon(rec *metadata.Record, discipline, category, number int64,
	prob *Probability, opts grib.Options) {
	code := grib.Code{
		Edition:    2,
		Discipline: int(discipline),
		Category:   int(category),
		Number:     int(number),
	}
	rec.Attributes["GRIB_PARAM"] = code

	name, ok := LookupGrib2(discipline, category, number)
	if !ok {
		opts.Warnf("product definition section 4 contains unknown parameter "+
			"discipline [%d], category [%d], number [%d]",
			discipline, category, number)
		return
	}
	if prob == nil {
		rec.StandardName = name.StandardName
		rec.LongName = name.LongName
		rec.Units = name.Units
		return
	}

	// Probability products rename the phenomenon and carry the
	// threshold as a scalar coordinate in the phenomenon's units.
	rec.LongName = fmt.Sprintf("probability_of_%s_%s", name.Name(), prob.Qualifier)
	rec.Units = "1"
	rec.AddScalar(metadata.Coord{
		StandardName: name.StandardName,
		LongName:     name.LongName,
		Units:        name.Units,
		Points:       []float64{prob.Threshold},
		Attributes: map[string]any{
			"relative_to_threshold": prob.Qualifier,
		},
	})
}

// Name reports the preferred name of a table entry.
func (n CFName) Name() string {
	if n.StandardName != "" {
		return n.StandardName
	}
	return n.LongName
}

// EncodeThreshold writes the probability threshold limit fields,
// scaling the value to preserve up to six decimal digits.
func EncodeThreshold(section grib.Section, bound string, threshold float64) {
	factor := int64(0)
	scaled := threshold
	for factor < 6 && math.Abs(scaled-math.Round(scaled)) > 1e-9*math.Max(1, math.Abs(scaled)) {
		factor++
		scaled = threshold * math.Pow(10, float64(factor))
	}
	valueKey, factorKey := "scaledValueOfLowerLimit", "scaleFactorOfLowerLimit"
	otherValue, otherFactor := "scaledValueOfUpperLimit", "scaleFactorOfUpperLimit"
	if bound == "upper" {
		valueKey, factorKey, otherValue, otherFactor = otherValue, otherFactor, valueKey, factorKey
	}
	section.Set(valueKey, int64(math.Round(scaled)))
	section.Set(factorKey, factor)
	section.SetMissing(otherValue)
	section.SetMissing(otherFactor)
}
