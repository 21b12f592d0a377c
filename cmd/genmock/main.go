// Command genmock generates section-document fixtures for the pipeline test
// suites, plus the metadata records the engine translates them into. It uses
// the actual translation engine so the expected output matches real pipeline
// behavior.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -docs-out data/mock/grib_sections.json \
//	  -records-out data/mock/grib_records.json
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/couchcryptid/gribmeta/internal/grib"
	"github.com/couchcryptid/gribmeta/internal/metadata"
	"github.com/couchcryptid/gribmeta/internal/translate"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	docsOut := flag.String("docs-out", "", "output path for the section-document fixture")
	recordsOut := flag.String("records-out", "", "output path for the translated-record fixture")
	steps := flag.Int("steps", 8, "number of 6-hourly forecast steps per phenomenon")
	members := flag.Int("members", 4, "number of ensemble members for the perturbed set")
	flag.Parse()

	if *docsOut == "" || *recordsOut == "" {
		flag.Usage()
		return fmt.Errorf("missing required flags: -docs-out, -records-out")
	}

	docs := buildDocuments(*steps, *members)
	log.Printf("built %d section documents", len(docs))

	records := make([]*metadata.Record, 0, len(docs))
	for i, doc := range docs {
		rec, err := translate.Convert(doc, grib.DefaultOptions())
		if err != nil {
			return fmt.Errorf("translating document %d: %w", i, err)
		}
		records = append(records, rec)
	}

	if err := writeJSON(*docsOut, docs); err != nil {
		return fmt.Errorf("writing document fixture: %w", err)
	}
	log.Printf("wrote document fixture: %s", *docsOut)

	if err := writeJSON(*recordsOut, records); err != nil {
		return fmt.Errorf("writing record fixture: %w", err)
	}
	log.Printf("wrote record fixture: %s", *recordsOut)

	printStats(records)
	return nil
}

// buildDocuments assembles a mixed workload: screen-level temperature
// forecasts, a pressure-level wind set, perturbed ensemble members, and a
// statistically processed precipitation accumulation.
func buildDocuments(steps, members int) []*translate.Message {
	var docs []*translate.Message

	// Deterministic forecasts at 6-hourly steps.
	for i := 0; i < steps; i++ {
		docs = append(docs, forecastDocument(0, 0, heightLevel(2), int64(i)*6))       // air_temperature
		docs = append(docs, forecastDocument(0, 2, pressureLevel(85000), int64(i)*6)) // x_wind
	}

	// Perturbed ensemble members at a single step.
	for m := 1; m <= members; m++ {
		doc := forecastDocument(0, 0, heightLevel(2), 12)
		s4 := doc.Sections[4]
		s4.Set("productDefinitionTemplateNumber", int64(1))
		s4.Set("typeOfEnsembleForecast", int64(255))
		s4.Set("numberOfForecastsInEnsemble", int64(members))
		s4.Set("perturbationNumber", int64(m))
		docs = append(docs, doc)
	}

	// A 6-hour precipitation accumulation ending at step 12.
	docs = append(docs, accumulationDocument())

	return docs
}

// forecastDocument builds a deterministic template-0 forecast on the shared
// one-degree grid.
func forecastDocument(category, number int64, surface grib.Section, leadHours int64) *translate.Message {
	msg := translate.NewMessage()
	msg.Sections[0] = grib.Section{
		"editionNumber": int64(2),
		"discipline":    int64(0),
	}
	msg.Sections[1] = grib.Section{
		"centre":                      "egrr",
		"significanceOfReferenceTime": int64(1),
		"year":                        int64(2024),
		"month":                       int64(4),
		"day":                         int64(26),
		"hour":                        int64(0),
		"minute":                      int64(0),
		"second":                      int64(0),
	}
	msg.Sections[3] = latLonGrid()
	msg.Sections[4] = grib.Section{
		"productDefinitionTemplateNumber": int64(0),
		"parameterCategory":               category,
		"parameterNumber":                 number,
		"hoursAfterDataCutoff":            grib.MDI,
		"minutesAfterDataCutoff":          grib.MDI,
		"indicatorOfUnitOfTimeRange":      int64(1),
		"forecastTime":                    leadHours,
		"NV":                              int64(0),
	}
	for k, v := range surface {
		msg.Sections[4][k] = v
	}
	msg.Sections[5] = grib.Section{
		"dataRepresentationTemplateNumber": int64(0),
	}
	msg.Sections[6] = grib.Section{
		"bitMapIndicator": int64(255),
	}
	return msg
}

// accumulationDocument builds a template-8 total precipitation sum over the
// six hours before the 12-hour step.
func accumulationDocument() *translate.Message {
	msg := forecastDocument(1, 49, surfaceLevel(), 6)
	s4 := msg.Sections[4]
	s4.Set("productDefinitionTemplateNumber", int64(8))
	s4.Set("yearOfEndOfOverallTimeInterval", int64(2024))
	s4.Set("monthOfEndOfOverallTimeInterval", int64(4))
	s4.Set("dayOfEndOfOverallTimeInterval", int64(26))
	s4.Set("hourOfEndOfOverallTimeInterval", int64(12))
	s4.Set("minuteOfEndOfOverallTimeInterval", int64(0))
	s4.Set("secondOfEndOfOverallTimeInterval", int64(0))
	s4.Set("numberOfTimeRange", int64(1))
	s4.Set("numberOfMissingInStatisticalProcess", int64(0))
	s4.Set("typeOfStatisticalProcessing", int64(1))
	s4.Set("typeOfTimeIncrement", int64(2))
	s4.Set("indicatorOfUnitForTimeRange", int64(1))
	s4.Set("lengthOfTimeRange", int64(6))
	s4.Set("indicatorOfUnitForTimeIncrement", int64(255))
	s4.Set("timeIncrement", int64(0))
	return msg
}

func latLonGrid() grib.Section {
	return grib.Section{
		"gridDefinitionTemplateNumber":        int64(0),
		"shapeOfTheEarth":                     int64(6),
		"scaleFactorOfRadiusOfSphericalEarth": grib.MDI,
		"scaledValueOfRadiusOfSphericalEarth": grib.MDI,
		"scaleFactorOfEarthMajorAxis":         grib.MDI,
		"scaledValueOfEarthMajorAxis":         grib.MDI,
		"scaleFactorOfEarthMinorAxis":         grib.MDI,
		"scaledValueOfEarthMinorAxis":         grib.MDI,
		"numberOfOctectsForNumberOfPoints":    int64(0),
		"interpretationOfNumberOfPoints":      int64(0),
		"Ni":                                  int64(96),
		"Nj":                                  int64(73),
		"longitudeOfFirstGridPoint":           int64(0),
		"longitudeOfLastGridPoint":            int64(356_250_000),
		"latitudeOfFirstGridPoint":            int64(90_000_000),
		"latitudeOfLastGridPoint":             int64(-90_000_000),
		"iDirectionIncrement":                 int64(3_750_000),
		"jDirectionIncrement":                 int64(2_500_000),
		"resolutionAndComponentFlags":         int64(0x30),
		"scanningMode":                        int64(0b00000000),
	}
}

func heightLevel(metres int64) grib.Section {
	return grib.Section{
		"typeOfFirstFixedSurface":        int64(103),
		"scaleFactorOfFirstFixedSurface": int64(0),
		"scaledValueOfFirstFixedSurface": metres,
		"typeOfSecondFixedSurface":       int64(255),
	}
}

func pressureLevel(pascals int64) grib.Section {
	return grib.Section{
		"typeOfFirstFixedSurface":        int64(100),
		"scaleFactorOfFirstFixedSurface": int64(0),
		"scaledValueOfFirstFixedSurface": pascals,
		"typeOfSecondFixedSurface":       int64(255),
	}
}

func surfaceLevel() grib.Section {
	return grib.Section{
		"typeOfFirstFixedSurface":  int64(1),
		"typeOfSecondFixedSurface": int64(255),
	}
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printStats(records []*metadata.Record) {
	counts := map[string]int{}
	for _, rec := range records {
		counts[rec.Name()]++
	}
	for name, n := range counts {
		log.Printf("  %-40s %d", name, n)
	}
}
