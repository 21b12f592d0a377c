// Package kafka adapts segmentio/kafka-go readers and writers to the
// pipeline's extractor and loader interfaces.
package kafka

import (
	"context"
	"errors"
	"log/slog"

	"github.com/couchcryptid/gribmeta/internal/config"
	"github.com/couchcryptid/gribmeta/internal/pipeline"
	kafkago "github.com/segmentio/kafka-go"
)

// Reader consumes section documents from a Kafka topic.
// It implements pipeline.BatchExtractor.
type Reader struct {
	reader *kafkago.Reader
	logger *slog.Logger
}

// NewReader creates a Kafka consumer for the configured source topic.
func NewReader(cfg *config.Config, logger *slog.Logger) *Reader {
	r := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     cfg.KafkaBrokers,
		Topic:       cfg.KafkaSourceTopic,
		GroupID:     cfg.KafkaGroupID,
		StartOffset: kafkago.FirstOffset,
		MaxWait:     cfg.BatchFlushInterval,
	})
	return &Reader{reader: r, logger: logger}
}

// ExtractBatch fetches up to batchSize messages, returning early once the
// fetch wait expires so partial batches flush promptly. Offsets are not
// committed here; each RawEvent carries a Commit callback the pipeline
// invokes after a successful load.
func (r *Reader) ExtractBatch(ctx context.Context, batchSize int) ([]pipeline.RawEvent, error) {
	batch := make([]pipeline.RawEvent, 0, batchSize)

	for len(batch) < batchSize {
		fetchCtx := ctx
		var cancel context.CancelFunc
		if len(batch) > 0 {
			// Once the batch has content, wait only one flush interval
			// for more rather than blocking indefinitely.
			fetchCtx, cancel = context.WithTimeout(ctx, r.reader.Config().MaxWait)
		}

		msg, err := r.reader.FetchMessage(fetchCtx)
		if cancel != nil {
			cancel()
		}
		if err != nil {
			if len(batch) > 0 && (errors.Is(err, context.DeadlineExceeded) || ctx.Err() == nil) {
				return batch, nil
			}
			if ctx.Err() != nil {
				return batch, nil
			}
			return nil, err
		}
		batch = append(batch, r.mapMessage(msg))
	}

	return batch, nil
}

func (r *Reader) mapMessage(msg kafkago.Message) pipeline.RawEvent {
	raw := mapMessageToRawEvent(msg)
	raw.Commit = func(ctx context.Context) error {
		return r.reader.CommitMessages(ctx, msg)
	}
	return raw
}

func (r *Reader) Close() error {
	return r.reader.Close()
}

// mapMessageToRawEvent converts a Kafka message into the pipeline envelope.
func mapMessageToRawEvent(msg kafkago.Message) pipeline.RawEvent {
	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	return pipeline.RawEvent{
		Key:       msg.Key,
		Value:     msg.Value,
		Headers:   headers,
		Topic:     msg.Topic,
		Partition: msg.Partition,
		Offset:    msg.Offset,
		Timestamp: msg.Time,
	}
}
