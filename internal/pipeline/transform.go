package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/gribmeta/internal/grib"
	"github.com/couchcryptid/gribmeta/internal/metadata"
	"github.com/couchcryptid/gribmeta/internal/translate"
)

// ParamInfo is a phenomenon identity resolved outside the static tables.
// A zero value means the registry does not know the parameter either.
type ParamInfo struct {
	StandardName string `json:"standard_name"`
	LongName     string `json:"long_name"`
	Units        string `json:"units"`
}

// ParamResolver looks up a GRIB2 parameter identity. Implemented by the
// registry client adapter; a nil resolver disables the fallback.
type ParamResolver interface {
	Lookup(ctx context.Context, discipline, category, number int) (ParamInfo, error)
}

// DocumentTransformer implements Transformer by decoding a section document,
// translating it to a metadata record, and serializing the result. Unknown
// phenomenon identities are optionally resolved through a parameter registry.
type DocumentTransformer struct {
	opts     grib.Options
	resolver ParamResolver
	logger   *slog.Logger
}

// NewTransformer creates a DocumentTransformer. Pass a nil resolver to
// disable registry lookups.
func NewTransformer(opts grib.Options, resolver ParamResolver, logger *slog.Logger) *DocumentTransformer {
	return &DocumentTransformer{
		opts:     opts,
		resolver: resolver,
		logger:   logger,
	}
}

func (t *DocumentTransformer) Transform(ctx context.Context, raw RawEvent) (OutputEvent, error) {
	var msg translate.Message
	if err := json.Unmarshal(raw.Value, &msg); err != nil {
		return OutputEvent{}, fmt.Errorf("decode section document: %w", err)
	}

	opts := t.opts
	opts.Warn = func(note string) {
		t.logger.Warn("translation note", "note", note,
			"topic", raw.Topic, "partition", raw.Partition, "offset", raw.Offset)
	}

	rec, err := translate.Convert(&msg, opts)
	if err != nil {
		return OutputEvent{}, err
	}

	t.resolveUnknown(ctx, rec)

	value, err := json.Marshal(rec)
	if err != nil {
		return OutputEvent{}, fmt.Errorf("serialize metadata record: %w", err)
	}

	key := raw.Key
	if len(key) == 0 {
		key = []byte(rec.Name())
	}
	return OutputEvent{
		Key:   key,
		Value: value,
		Headers: map[string]string{
			"phenomenon":   rec.Name(),
			"processed_at": clock.Now().UTC().Format(time.RFC3339),
		},
	}, nil
}

// resolveUnknown consults the parameter registry for identities absent from
// the static tables. The raw identity always travels in the GRIB_PARAM
// attribute, so a failed lookup loses nothing.
func (t *DocumentTransformer) resolveUnknown(ctx context.Context, rec *metadata.Record) {
	if t.resolver == nil || rec.StandardName != "" || rec.LongName != "" {
		return
	}
	code, ok := rec.Attributes["GRIB_PARAM"].(grib.Code)
	if !ok || code.Edition != 2 {
		return
	}

	info, err := t.resolver.Lookup(ctx, code.Discipline, code.Category, code.Number)
	if err != nil {
		t.logger.Warn("parameter registry lookup failed", "error", err, "param", code.String())
		return
	}
	if info == (ParamInfo{}) {
		return
	}
	rec.StandardName = info.StandardName
	rec.LongName = info.LongName
	rec.Units = info.Units
}
