// Command validate performs integrity checks across the mock fixtures: it
// re-translates the section-document fixture with the current engine,
// compares the result to the record fixture, and verifies the save path
// reproduces the original product templates.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -docs-json data/mock/grib_sections.json \
//	  -records-json data/mock/grib_records.json
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/couchcryptid/gribmeta/internal/grib"
	"github.com/couchcryptid/gribmeta/internal/metadata"
	"github.com/couchcryptid/gribmeta/internal/translate"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	docsJSON := flag.String("docs-json", "", "path to the section-document fixture")
	recordsJSON := flag.String("records-json", "", "path to the translated-record fixture")
	flag.Parse()

	if *docsJSON == "" || *recordsJSON == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*docsJSON, *recordsJSON); code != 0 {
		os.Exit(code)
	}
}

func run(docsPath, recordsPath string) int {
	docs, expected, loadPhase := loadFixtures(docsPath, recordsPath)
	phases := []*phase{loadPhase}

	if loadPhase.passed() {
		records, translatePhase := retranslate(docs, expected)
		phases = append(phases, translatePhase, roundTrip(docs, records))
	}

	failed := 0
	for _, p := range phases {
		if p.passed() {
			fmt.Printf("PASS %s\n", p.name)
			continue
		}
		failed++
		fmt.Printf("FAIL %s\n", p.name)
		for _, e := range p.errors {
			fmt.Printf("  - %s\n", e)
		}
	}
	if failed > 0 {
		return 1
	}
	return 0
}

func loadFixtures(docsPath, recordsPath string) ([]*translate.Message, []recordSummary, *phase) {
	p := &phase{name: "fixture parse"}

	var docs []*translate.Message
	if err := readJSON(docsPath, &docs); err != nil {
		p.errorf("documents: %v", err)
	}

	// The record fixture is compared on stable summary fields only: the
	// full Record does not survive a JSON round trip because coordinate
	// systems are interface-typed.
	var expected []recordSummary
	if err := readJSON(recordsPath, &expected); err != nil {
		p.errorf("records: %v", err)
	}

	if p.passed() && len(docs) != len(expected) {
		p.errorf("fixture length mismatch: %d documents, %d records", len(docs), len(expected))
	}
	return docs, expected, p
}

// recordSummary holds the subset of Record fields the fixtures are compared on.
type recordSummary struct {
	StandardName string
	LongName     string
	Units        string
	CellMethods  []metadata.CellMethod
}

func retranslate(docs []*translate.Message, expected []recordSummary) ([]*metadata.Record, *phase) {
	p := &phase{name: "re-translation matches record fixture"}

	records := make([]*metadata.Record, 0, len(docs))
	for i, doc := range docs {
		rec, err := translate.Convert(doc, grib.DefaultOptions())
		if err != nil {
			p.errorf("document %d: %v", i, err)
			records = append(records, nil)
			continue
		}
		records = append(records, rec)

		want := expected[i]
		if rec.StandardName != want.StandardName {
			p.errorf("document %d: standard name %q, fixture has %q", i, rec.StandardName, want.StandardName)
		}
		if rec.Units != want.Units {
			p.errorf("document %d: units %q, fixture has %q", i, rec.Units, want.Units)
		}
		if len(rec.CellMethods) != len(want.CellMethods) {
			p.errorf("document %d: %d cell methods, fixture has %d", i, len(rec.CellMethods), len(want.CellMethods))
		}
	}
	return records, p
}

func roundTrip(docs []*translate.Message, records []*metadata.Record) *phase {
	p := &phase{name: "save path reproduces product templates"}

	for i, rec := range records {
		if rec == nil {
			continue
		}
		msg, err := translate.Encode(rec, nil, grib.DefaultOptions())
		if err != nil {
			p.errorf("document %d: encode: %v", i, err)
			continue
		}

		wantTemplate := docs[i].Section(4).Int("productDefinitionTemplateNumber")
		gotTemplate := msg.Section(4).Int("productDefinitionTemplateNumber")
		if gotTemplate != wantTemplate {
			p.errorf("document %d: product template %d, original was %d", i, gotTemplate, wantTemplate)
		}

		again, err := translate.Convert(msg, grib.DefaultOptions())
		if err != nil {
			p.errorf("document %d: reconvert: %v", i, err)
			continue
		}
		if again.Name() != rec.Name() {
			p.errorf("document %d: phenomenon %q after round trip, was %q", i, again.Name(), rec.Name())
		}
	}
	return p
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}
