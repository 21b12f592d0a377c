//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/couchcryptid/gribmeta/internal/adapter/kafka"
	"github.com/couchcryptid/gribmeta/internal/config"
	"github.com/couchcryptid/gribmeta/internal/grib"
	"github.com/couchcryptid/gribmeta/internal/observability"
	"github.com/couchcryptid/gribmeta/internal/pipeline"
	"github.com/couchcryptid/gribmeta/internal/translate"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"
)

const (
	testSourceTopic = "test-sections"
	testSinkTopic   = "test-records"
)

// startKafka launches a single-broker Kafka container and returns its
// bootstrap address.
func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()

	container, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0",
		tckafka.WithClusterID("test-cluster"))
	require.NoError(t, err, "start kafka container")
	t.Cleanup(func() {
		_ = container.Terminate(context.Background())
	})

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err, "resolve kafka brokers")
	require.NotEmpty(t, brokers)
	return brokers[0]
}

func createTopic(t *testing.T, broker, topic string) {
	t.Helper()

	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err, "dial kafka")
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err, "resolve controller")

	controllerConn, err := kafkago.Dial("tcp", fmt.Sprintf("%s:%d", controller.Host, controller.Port))
	require.NoError(t, err, "dial controller")
	defer controllerConn.Close()

	require.NoError(t, controllerConn.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// recordMessage holds a deserialized message read from the sink topic.
type recordMessage struct {
	StandardName string
	Key          string
	Headers      map[string]string
}

// readRecord reads a single message from the sink consumer and deserializes it.
func readRecord(ctx context.Context, t *testing.T, consumer *kafkago.Reader) recordMessage {
	t.Helper()
	readCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	msg, err := consumer.ReadMessage(readCtx)
	require.NoError(t, err, "read from sink topic")

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	var rec struct {
		StandardName string
	}
	require.NoError(t, json.Unmarshal(msg.Value, &rec), "unmarshal sink message")

	return recordMessage{
		StandardName: rec.StandardName,
		Key:          string(msg.Key),
		Headers:      headers,
	}
}

// TestKafkaReaderWriter verifies the adapter layer: kafka.Reader (extractor)
// and kafka.Writer (loader) correctly round-trip a document through Kafka.
func TestKafkaReaderWriter(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)

	createTopic(t, broker, testSourceTopic)
	createTopic(t, broker, testSinkTopic)

	cfg := &config.Config{
		KafkaBrokers:       []string{broker},
		KafkaSourceTopic:   testSourceTopic,
		KafkaSinkTopic:     testSinkTopic,
		KafkaGroupID:       fmt.Sprintf("test-reader-%d", time.Now().UnixNano()),
		BatchFlushInterval: 5 * time.Second,
	}

	payload, err := json.Marshal(temperatureDocument(6))
	require.NoError(t, err)

	producer := &kafkago.Writer{
		Addr:  kafkago.TCP(broker),
		Topic: testSourceTopic,
	}
	t.Cleanup(func() { _ = producer.Close() })

	require.NoError(t, producer.WriteMessages(ctx, kafkago.Message{
		Key:   []byte("test-key"),
		Value: payload,
	}))

	// Extract via kafka.Reader.
	// Retry because the consumer group may need time to rebalance before
	// partitions are assigned and messages become available.
	reader := kafka.NewReader(cfg, discardLogger())
	t.Cleanup(func() { _ = reader.Close() })

	var batch []pipeline.RawEvent
	for {
		var err error
		batch, err = reader.ExtractBatch(ctx, 1)
		require.NoError(t, err)
		if len(batch) > 0 {
			break
		}
		if ctx.Err() != nil {
			t.Fatal("timed out waiting for message from source topic")
		}
	}
	require.Len(t, batch, 1)
	raw := batch[0]
	assert.Equal(t, []byte("test-key"), raw.Key)
	assert.Equal(t, payload, raw.Value)
	assert.Equal(t, testSourceTopic, raw.Topic)
	require.NotNil(t, raw.Commit, "commit callback should be set")

	// Commit the offset.
	require.NoError(t, raw.Commit(ctx))

	// Translate the document.
	transformer := pipeline.NewTransformer(grib.DefaultOptions(), nil, discardLogger())
	event, err := transformer.Transform(ctx, raw)
	require.NoError(t, err)

	// Load via kafka.Writer.
	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	require.NoError(t, writer.LoadBatch(ctx, []pipeline.OutputEvent{event}))

	// Read from the sink topic and verify headers + value.
	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testSinkTopic,
		GroupID:     fmt.Sprintf("test-consumer-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	rm := readRecord(ctx, t, consumer)
	assert.Equal(t, "air_temperature", rm.Headers["phenomenon"])
	assert.Contains(t, rm.Headers, "processed_at")
	_, err = time.Parse(time.RFC3339, rm.Headers["processed_at"])
	assert.NoError(t, err, "processed_at should be valid RFC3339")

	assert.Equal(t, "air_temperature", rm.StandardName)
	assert.Equal(t, "test-key", rm.Key)
}

// TestPipelineEndToEnd wires the full pipeline (Reader, Transformer, Writer)
// with real Kafka and verifies every document is translated.
func TestPipelineEndToEnd(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	broker := startKafka(ctx, t)

	createTopic(t, broker, testSourceTopic)
	createTopic(t, broker, testSinkTopic)

	cfg := &config.Config{
		KafkaBrokers:       []string{broker},
		KafkaSourceTopic:   testSourceTopic,
		KafkaSinkTopic:     testSinkTopic,
		KafkaGroupID:       fmt.Sprintf("test-pipeline-%d", time.Now().UnixNano()),
		BatchFlushInterval: 5 * time.Second,
	}

	// Publish a 4-step temperature run and a 4-step wind run.
	producer := &kafkago.Writer{
		Addr:  kafkago.TCP(broker),
		Topic: testSourceTopic,
	}
	t.Cleanup(func() { _ = producer.Close() })

	var msgs []kafkago.Message
	for i := int64(0); i < 4; i++ {
		for _, doc := range []*translate.Message{temperatureDocument(i * 6), windDocument(i * 6)} {
			payload, err := json.Marshal(doc)
			require.NoError(t, err)
			msgs = append(msgs, kafkago.Message{
				Key:   []byte(fmt.Sprintf("doc-%d", len(msgs))),
				Value: payload,
			})
		}
	}
	require.NoError(t, producer.WriteMessages(ctx, msgs...))

	// Wire up the pipeline.
	reader := kafka.NewReader(cfg, discardLogger())
	t.Cleanup(func() { _ = reader.Close() })

	transformer := pipeline.NewTransformer(grib.DefaultOptions(), nil, discardLogger())

	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	metrics := observability.NewMetricsForTesting()
	p := pipeline.New(reader, transformer, writer, discardLogger(), metrics, 50)

	// Run the pipeline in a goroutine.
	pipelineCtx, pipelineCancel := context.WithCancel(ctx)
	errCh := make(chan error, 1)
	go func() { errCh <- p.Run(pipelineCtx) }()

	// Read all translated records from the sink topic.
	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testSinkTopic,
		GroupID:     fmt.Sprintf("test-sink-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	received := make([]recordMessage, 0, len(msgs))
	for len(received) < len(msgs) {
		received = append(received, readRecord(ctx, t, consumer))
	}

	pipelineCancel()
	require.NoError(t, <-errCh)

	require.Len(t, received, len(msgs))
	counts := map[string]int{}
	for _, rm := range received {
		counts[rm.StandardName]++

		assert.NotEmpty(t, rm.Headers["phenomenon"], "missing phenomenon header")
		assert.Contains(t, rm.Headers, "processed_at", "missing processed_at header")
		_, err := time.Parse(time.RFC3339, rm.Headers["processed_at"])
		assert.NoError(t, err, "invalid processed_at format")
	}

	assert.Equal(t, 4, counts["air_temperature"], "temperature count")
	assert.Equal(t, 4, counts["x_wind"], "wind count")
}

// TestPipelineTransformError verifies that an invalid message (poison pill) is
// skipped and the pipeline continues processing valid messages.
func TestPipelineTransformError(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)

	createTopic(t, broker, testSourceTopic)
	createTopic(t, broker, testSinkTopic)

	cfg := &config.Config{
		KafkaBrokers:       []string{broker},
		KafkaSourceTopic:   testSourceTopic,
		KafkaSinkTopic:     testSinkTopic,
		KafkaGroupID:       fmt.Sprintf("test-poison-%d", time.Now().UnixNano()),
		BatchFlushInterval: 5 * time.Second,
	}

	validPayload, err := json.Marshal(temperatureDocument(6))
	require.NoError(t, err)

	producer := &kafkago.Writer{
		Addr:  kafkago.TCP(broker),
		Topic: testSourceTopic,
	}
	t.Cleanup(func() { _ = producer.Close() })

	require.NoError(t, producer.WriteMessages(ctx,
		kafkago.Message{Key: []byte("bad"), Value: []byte("not-json{{{")},
		kafkago.Message{Key: []byte("good"), Value: validPayload},
	))

	// Wire up the pipeline.
	reader := kafka.NewReader(cfg, discardLogger())
	t.Cleanup(func() { _ = reader.Close() })

	transformer := pipeline.NewTransformer(grib.DefaultOptions(), nil, discardLogger())

	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	metrics := observability.NewMetricsForTesting()
	p := pipeline.New(reader, transformer, writer, discardLogger(), metrics, 50)

	pipelineCtx, pipelineCancel := context.WithCancel(ctx)
	errCh := make(chan error, 1)
	go func() { errCh <- p.Run(pipelineCtx) }()

	// Only the valid message should appear on the sink topic.
	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testSinkTopic,
		GroupID:     fmt.Sprintf("test-sink-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	rm := readRecord(ctx, t, consumer)
	assert.Equal(t, "air_temperature", rm.StandardName)
	assert.Equal(t, "good", rm.Key)

	// Verify no second message arrives (the poison pill was skipped).
	readCtx, readCancel := context.WithTimeout(ctx, 5*time.Second)
	_, err = consumer.ReadMessage(readCtx)
	readCancel()
	assert.Error(t, err, "expected no second message on sink topic")

	pipelineCancel()
	require.NoError(t, <-errCh)
}

// --- document builders ---

func temperatureDocument(leadHours int64) *translate.Message {
	return forecastDocument(0, 0, leadHours)
}

func windDocument(leadHours int64) *translate.Message {
	return forecastDocument(2, 2, leadHours)
}

func forecastDocument(category, number, leadHours int64) *translate.Message {
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
		"parameterCategory":               category,
		"parameterNumber":                 number,
		"hoursAfterDataCutoff":            grib.MDI,
		"minutesAfterDataCutoff":          grib.MDI,
		"indicatorOfUnitOfTimeRange":      int64(1),
		"forecastTime":                    leadHours,
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
