package translate

import (
	"github.com/couchcryptid/gribmeta/internal/grib"
	"github.com/couchcryptid/gribmeta/internal/grid"
	"github.com/couchcryptid/gribmeta/internal/metadata"
	"github.com/couchcryptid/gribmeta/internal/product"
)

// Data representation templates the engine accepts. The packed payload is
// decoded upstream; here the template only needs to be one whose values
// arrive as plain floats.
var supportedDataRepresentations = map[int64]bool{
	0: true, 1: true, 2: true, 3: true, 4: true,
	40: true, 41: true, 42: true,
	50: true, 51: true, 61: true,
}

// Convert translates a whole message into a semantic record.
func Convert(msg *Message, opts grib.Options) (*metadata.Record, error) {
	indicator := msg.Section(0)
	if edition := indicator.Int("editionNumber"); edition != 2 {
		return nil, grib.Unsupportedf("grib edition %d is not supported", edition)
	}

	rec := metadata.NewRecord()

	identification := msg.Section(1)
	if mnemonic := identification.Str("centre"); mnemonic != "" {
		rec.Attributes["centre"] = grib.CentreName(mnemonic)
	}
	rt, err := product.ReferenceTimeCoord(referenceTime(identification),
		identification.Int("significanceOfReferenceTime"))
	if err != nil {
		return nil, err
	}

	if err := grid.Translate(msg.Section(3), rec, opts); err != nil {
		return nil, err
	}
	if err := product.Translate(msg.Section(4), indicator.Int("discipline"),
		rt, rec, opts); err != nil {
		return nil, err
	}
	if err := dataRepresentationSection(msg.Section(5)); err != nil {
		return nil, err
	}
	if err := bitmapSection(msg.Section(6)); err != nil {
		return nil, err
	}
	return rec, nil
}

func dataRepresentationSection(section grib.Section) error {
	template := section.Int("dataRepresentationTemplateNumber")
	if !supportedDataRepresentations[template] {
		return grib.Unsupportedf("data representation template [%d] is not supported", template)
	}
	return nil
}

func bitmapSection(section grib.Section) error {
	// 0 means a bitmap is present, 255 means none; everything between
	// refers to externally defined bitmaps.
	if indicator := section.Int("bitMapIndicator"); indicator != 0 && indicator != 255 {
		return grib.Unsupportedf(
			"bitmap section 6 contains an unsupported bitmap indicator [%d]", indicator)
	}
	return nil
}

// Encode translates a record back into a section-keyed message. levels
// supplies the dataset-wide hybrid coefficients and may be nil for
// non-hybrid records.
func Encode(rec *metadata.Record, levels product.LevelSource,
	opts grib.Options) (*Message, error) {

	if err := encodabilityCheck(rec); err != nil {
		return nil, err
	}

	msg := NewMessage()
	indicator := msg.Section(0)
	indicator.Set("editionNumber", int64(2))

	if err := encodeIdentification(rec, msg.Section(1), opts); err != nil {
		return nil, err
	}
	if err := grid.Encode(rec, msg.Section(3), opts); err != nil {
		return nil, err
	}
	if err := product.Encode(rec, indicator, msg.Section(4), levels, opts); err != nil {
		return nil, err
	}

	// Values travel as plain floats with no bitmap.
	msg.Section(5).Set("dataRepresentationTemplateNumber", int64(0))
	msg.Section(6).Set("bitMapIndicator", int64(255))
	return msg, nil
}

// encodabilityCheck verifies the minimum a message needs: a consistent
// horizontal coordinate system and a time coordinate.
func encodabilityCheck(rec *metadata.Record) error {
	var systems []metadata.CoordSystem
	for _, cd := range rec.DimCoords {
		systems = append(systems, cd.Coord.CoordSystem)
	}
	if len(systems) < 2 || systems[0] == nil || systems[1] == nil {
		return grib.Unsupportedf("coordinate system not present")
	}
	if systems[0] != systems[1] {
		return grib.Unsupportedf("inconsistent coordinate systems")
	}
	if !rec.HasCoord("time") {
		return grib.Unsupportedf("a 'time' coordinate is required, but not present")
	}
	return nil
}

func encodeIdentification(rec *metadata.Record, section grib.Section,
	opts grib.Options) error {

	mnemonic := "egrr"
	if name, ok := rec.Attributes["centre"].(string); ok {
		mnemonic = grib.CentreMnemonic(name)
	}
	section.Set("centre", mnemonic)
	section.Set("subCentre", int64(0))

	rt, significance, err := product.ReferenceTime(rec, opts)
	if err != nil {
		return err
	}
	section.Set("significanceOfReferenceTime", significance)
	section.Set("year", int64(rt.Year()))
	section.Set("month", int64(rt.Month()))
	section.Set("day", int64(rt.Day()))
	section.Set("hour", int64(rt.Hour()))
	section.Set("minute", int64(rt.Minute()))
	section.Set("second", int64(rt.Second()))

	section.Set("productionStatusOfProcessedData", int64(255))
	section.Set("typeOfProcessedData", typeOfProcessedData(rec))
	return nil
}

// typeOfProcessedData distinguishes control, perturbed and plain forecast
// products for code table 1.4.
func typeOfProcessedData(rec *metadata.Record) int64 {
	realization, ok := rec.Coord("realization")
	if !ok || !realization.Scalar() {
		return 2
	}
	if realization.Points[0] != 0 {
		return 4
	}
	return 3
}
