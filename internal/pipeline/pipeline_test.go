package pipeline_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/couchcryptid/gribmeta/internal/grib"
	"github.com/couchcryptid/gribmeta/internal/observability"
	"github.com/couchcryptid/gribmeta/internal/pipeline"
	"github.com/couchcryptid/gribmeta/internal/translate"
	"github.com/google/go-cmp/cmp"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockExtractor struct {
	events []pipeline.RawEvent
	done   atomic.Bool
}

func (m *mockExtractor) ExtractBatch(ctx context.Context, _ int) ([]pipeline.RawEvent, error) {
	if m.done.Swap(true) {
		// batch already delivered; block until the context is cancelled
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return m.events, nil
}

type mockTransformer struct {
	err error
}

func (m *mockTransformer) Transform(_ context.Context, raw pipeline.RawEvent) (pipeline.OutputEvent, error) {
	if m.err != nil {
		return pipeline.OutputEvent{}, m.err
	}
	return pipeline.OutputEvent{Key: raw.Key, Value: raw.Value}, nil
}

type mockLoader struct {
	loaded []pipeline.OutputEvent
	err    error
}

func (m *mockLoader) LoadBatch(_ context.Context, events []pipeline.OutputEvent) error {
	if m.err != nil {
		return m.err
	}
	m.loaded = append(m.loaded, events...)
	return nil
}

type mockResolver struct {
	calls int
	info  pipeline.ParamInfo
}

func (m *mockResolver) Lookup(_ context.Context, _, _, _ int) (pipeline.ParamInfo, error) {
	m.calls++
	return m.info, nil
}

func newTestMetrics() *observability.Metrics {
	// Use a fresh registry to avoid "already registered" panics in tests.
	return observability.NewMetricsForTesting()
}

// --- pipeline loop tests ---

func TestPipeline_Run_HappyPath(t *testing.T) {
	raw := makeRawEvent(t, "msg-1")

	ext := &mockExtractor{events: []pipeline.RawEvent{raw}}
	tfm := &mockTransformer{}
	ldr := &mockLoader{}

	p := pipeline.New(ext, tfm, ldr, slog.Default(), newTestMetrics(), 50)

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	err := p.Run(ctx)
	require.NoError(t, err)
	assert.Len(t, ldr.loaded, 1)
	assert.Equal(t, raw.Value, ldr.loaded[0].Value)
	assert.NoError(t, p.CheckReadiness(context.Background()))
}

func TestPipeline_Run_ContextCancellation(t *testing.T) {
	ext := &mockExtractor{} // empty batch, then blocks
	tfm := &mockTransformer{}
	ldr := &mockLoader{}

	p := pipeline.New(ext, tfm, ldr, slog.Default(), newTestMetrics(), 50)

	ctx, cancel := context.WithCancel(context.Background())
	cancel() // cancel immediately

	err := p.Run(ctx)
	require.NoError(t, err)
	assert.Empty(t, ldr.loaded)
}

func TestPipeline_Run_TransformError(t *testing.T) {
	raw := makeRawEvent(t, "msg-2")

	ext := &mockExtractor{events: []pipeline.RawEvent{raw}}
	tfm := &mockTransformer{err: errors.New("bad document")}
	ldr := &mockLoader{}

	p := pipeline.New(ext, tfm, ldr, slog.Default(), newTestMetrics(), 50)

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	err := p.Run(ctx)
	require.NoError(t, err)
	assert.Empty(t, ldr.loaded)
	assert.Error(t, p.CheckReadiness(context.Background()))
}

func TestPipeline_Run_CommitsAfterLoad(t *testing.T) {
	commitCalled := false

	raw := makeRawEvent(t, "msg-3")
	raw.Topic = "grib-sections"
	raw.Commit = func(_ context.Context) error {
		commitCalled = true
		return nil
	}

	ext := &mockExtractor{events: []pipeline.RawEvent{raw}}
	tfm := &mockTransformer{}
	ldr := &mockLoader{}

	p := pipeline.New(ext, tfm, ldr, slog.Default(), newTestMetrics(), 50)

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	err := p.Run(ctx)
	require.NoError(t, err)
	assert.True(t, commitCalled)
}

func TestPipeline_Run_CommitsSkippedMessage(t *testing.T) {
	commitCalled := false

	raw := makeRawEvent(t, "msg-4")
	raw.Commit = func(_ context.Context) error {
		commitCalled = true
		return nil
	}

	ext := &mockExtractor{events: []pipeline.RawEvent{raw}}
	tfm := &mockTransformer{err: errors.New("poison pill")}
	ldr := &mockLoader{}

	p := pipeline.New(ext, tfm, ldr, slog.Default(), newTestMetrics(), 50)

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	require.NoError(t, p.Run(ctx))
	assert.True(t, commitCalled, "skipped messages must still be committed")
	assert.Empty(t, ldr.loaded)
}

// --- transformer tests ---

func TestDocumentTransformer_Transform(t *testing.T) {
	fakeClock := clockwork.NewFakeClockAt(time.Date(2024, time.April, 26, 15, 10, 0, 0, time.UTC))
	pipeline.SetClock(fakeClock)
	t.Cleanup(func() {
		pipeline.SetClock(nil)
	})

	raw := makeRawEvent(t, "msg-5")

	tfm := pipeline.NewTransformer(grib.DefaultOptions(), nil, slog.Default())
	out, err := tfm.Transform(context.Background(), raw)
	require.NoError(t, err)

	assert.Equal(t, []byte("msg-5"), out.Key)
	assert.Contains(t, string(out.Value), `"air_temperature"`)

	wantHeaders := map[string]string{
		"phenomenon":   "air_temperature",
		"processed_at": "2024-04-26T15:10:00Z",
	}
	if diff := cmp.Diff(wantHeaders, out.Headers); diff != "" {
		t.Fatalf("headers mismatch (-want +got):\n%s", diff)
	}
}

func TestDocumentTransformer_KeyFallsBackToPhenomenon(t *testing.T) {
	raw := makeRawEvent(t, "msg-6")
	raw.Key = nil

	tfm := pipeline.NewTransformer(grib.DefaultOptions(), nil, slog.Default())
	out, err := tfm.Transform(context.Background(), raw)
	require.NoError(t, err)
	assert.Equal(t, []byte("air_temperature"), out.Key)
}

func TestDocumentTransformer_InvalidJSON(t *testing.T) {
	tfm := pipeline.NewTransformer(grib.DefaultOptions(), nil, slog.Default())
	_, err := tfm.Transform(context.Background(), pipeline.RawEvent{Value: []byte("not json")})
	assert.Error(t, err)
}

func TestDocumentTransformer_UntranslatableDocument(t *testing.T) {
	msg := sampleDocument()
	msg.Sections[0].Set("editionNumber", int64(1))
	raw := marshalEvent(t, "msg-7", msg)

	tfm := pipeline.NewTransformer(grib.DefaultOptions(), nil, slog.Default())
	_, err := tfm.Transform(context.Background(), raw)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "edition 1 is not supported")
}

func TestDocumentTransformer_RegistryResolvesUnknownParameter(t *testing.T) {
	msg := sampleDocument()
	msg.Sections[4].Set("parameterCategory", int64(190))
	msg.Sections[4].Set("parameterNumber", int64(3))
	raw := marshalEvent(t, "msg-8", msg)

	resolver := &mockResolver{
		info: pipeline.ParamInfo{StandardName: "cloud_mask", Units: "1"},
	}
	tfm := pipeline.NewTransformer(grib.DefaultOptions(), resolver, slog.Default())

	out, err := tfm.Transform(context.Background(), raw)
	require.NoError(t, err)
	assert.Equal(t, 1, resolver.calls)
	assert.Contains(t, string(out.Value), `"cloud_mask"`)
	assert.Equal(t, "cloud_mask", out.Headers["phenomenon"])
}

func TestDocumentTransformer_RegistryNotConsultedForKnownParameter(t *testing.T) {
	raw := makeRawEvent(t, "msg-9")

	resolver := &mockResolver{
		info: pipeline.ParamInfo{StandardName: "should_not_be_used"},
	}
	tfm := pipeline.NewTransformer(grib.DefaultOptions(), resolver, slog.Default())

	out, err := tfm.Transform(context.Background(), raw)
	require.NoError(t, err)
	assert.Zero(t, resolver.calls)
	assert.Equal(t, "air_temperature", out.Headers["phenomenon"])
}

// --- helpers ---

func makeRawEvent(t *testing.T, key string) pipeline.RawEvent {
	t.Helper()
	return marshalEvent(t, key, sampleDocument())
}

func marshalEvent(t *testing.T, key string, msg *translate.Message) pipeline.RawEvent {
	t.Helper()
	data, err := json.Marshal(msg)
	require.NoError(t, err)
	return pipeline.RawEvent{
		Key:   []byte(key),
		Value: data,
	}
}

// sampleDocument builds a regular lat-lon air temperature forecast.
func sampleDocument() *translate.Message {
	msg := translate.NewMessage()
	msg.Sections[0] = grib.Section{
		"editionNumber": int64(2),
		"discipline":    int64(0),
	}
	msg.Sections[1] = grib.Section{
		"centre":                      "ecmf",
		"significanceOfReferenceTime": int64(1),
		"year":                        int64(2013),
		"month":                       int64(3),
		"day":                         int64(1),
		"hour":                        int64(12),
		"minute":                      int64(0),
		"second":                      int64(0),
	}
	msg.Sections[3] = grib.Section{
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
		"Ni":                                  int64(6),
		"Nj":                                  int64(4),
		"longitudeOfFirstGridPoint":           int64(0),
		"longitudeOfLastGridPoint":            int64(5_000_000),
		"latitudeOfFirstGridPoint":            int64(30_000_000),
		"latitudeOfLastGridPoint":             int64(33_000_000),
		"iDirectionIncrement":                 int64(1_000_000),
		"jDirectionIncrement":                 int64(1_000_000),
		"resolutionAndComponentFlags":         int64(0x30),
		"scanningMode":                        int64(0b01000000),
	}
	msg.Sections[4] = grib.Section{
		"productDefinitionTemplateNumber": int64(0),
		"parameterCategory":               int64(0),
		"parameterNumber":                 int64(0),
		"hoursAfterDataCutoff":            grib.MDI,
		"minutesAfterDataCutoff":          grib.MDI,
		"indicatorOfUnitOfTimeRange":      int64(1),
		"forecastTime":                    int64(6),
		"NV":                              int64(0),
		"typeOfFirstFixedSurface":         int64(103),
		"scaleFactorOfFirstFixedSurface":  int64(0),
		"scaledValueOfFirstFixedSurface":  int64(10),
		"typeOfSecondFixedSurface":        int64(255),
	}
	msg.Sections[5] = grib.Section{
		"dataRepresentationTemplateNumber": int64(0),
	}
	msg.Sections[6] = grib.Section{
		"bitMapIndicator": int64(255),
	}
	return msg
}
