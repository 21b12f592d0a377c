// Command gribconv performs offline conversion of section documents: it
// reads one document or an array of them from a JSON file and emits the
// translated metadata records. In round-trip mode the records are encoded
// back into section documents, exercising the save direction.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"github.com/couchcryptid/gribmeta/internal/grib"
	"github.com/couchcryptid/gribmeta/internal/translate"
)

var cli struct {
	Input     string `arg:"" help:"Input JSON file holding a section document or an array of them." type:"existingfile"`
	Output    string `short:"o" placeholder:"FILE" help:"Output file. Defaults to stdout."`
	Direction string `short:"d" enum:"load,roundtrip" default:"load" help:"load emits metadata records; roundtrip re-encodes them into section documents."`
	Hindcast  bool   `default:"true" negatable:"" help:"Reinterpret very large forecast offsets as negative hindcast periods."`
	Warnings  bool   `default:"true" negatable:"" help:"Print translation notes to stderr."`
	Verbose   bool   `short:"v" help:"Also note fields the engine deliberately does not translate."`
}

func main() {
	kctx := kong.Parse(&cli,
		kong.Name("gribconv"),
		kong.Description("Convert section documents to metadata records and back."))
	kctx.FatalIfErrorf(run())
}

func run() error {
	msgs, single, err := readDocuments(cli.Input)
	if err != nil {
		return err
	}

	opts := grib.Options{
		WarnOnUnsupported:     cli.Verbose,
		SupportHindcastValues: cli.Hindcast,
	}

	results := make([]any, 0, len(msgs))
	for i, msg := range msgs {
		if cli.Warnings {
			opts.Warn = func(note string) {
				fmt.Fprintf(os.Stderr, "document %d: %s\n", i, note)
			}
		}

		rec, err := translate.Convert(msg, opts)
		if err != nil {
			return fmt.Errorf("document %d: %w", i, err)
		}

		if cli.Direction == "roundtrip" {
			encoded, err := translate.Encode(rec, nil, opts)
			if err != nil {
				return fmt.Errorf("document %d: re-encode: %w", i, err)
			}
			results = append(results, encoded)
		} else {
			results = append(results, rec)
		}
	}

	return writeOutput(results, single)
}

// readDocuments accepts either a single document or an array, reporting
// which form the input took so the output can mirror it.
func readDocuments(path string) ([]*translate.Message, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false, err
	}

	var many []*translate.Message
	if err := json.Unmarshal(data, &many); err == nil {
		return many, false, nil
	}

	var one translate.Message
	if err := json.Unmarshal(data, &one); err != nil {
		return nil, false, fmt.Errorf("parse %s: %w", path, err)
	}
	return []*translate.Message{&one}, true, nil
}

func writeOutput(results []any, single bool) error {
	out := os.Stdout
	if cli.Output != "" {
		f, err := os.Create(cli.Output)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if single && len(results) == 1 {
		return enc.Encode(results[0])
	}
	return enc.Encode(results)
}
