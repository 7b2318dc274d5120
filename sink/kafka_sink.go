package sink

import (
	"context"
	"time"

	"github.com/pickme-go/errors"
	"github.com/pickme-go/k-join/data"
	"github.com/pickme-go/k-join/encoding"
	"github.com/pickme-go/k-join/event"
	"github.com/pickme-go/k-join/producer"
	"github.com/pickme-go/log/v2"
	"github.com/pickme-go/metrics/v2"
)

type KafkaSinkConfig struct {
	Topic           string
	BufferSize      int
	FlushInterval   time.Duration
	Logger          log.Logger
	MetricsReporter metrics.Reporter
}

// KafkaSink publishes snapshots keyed by user_id, so every snapshot of a key
// lands on the same partition in emission order.
type KafkaSink struct {
	topic      string
	producer   producer.Producer
	buffer     *Buffer
	keyEncoder encoding.Encoder
	encoder    encoding.Encoder
	logger     log.Logger
}

func NewKafkaSink(p producer.Producer, config *KafkaSinkConfig) (*KafkaSink, error) {
	if config.Topic == `` {
		return nil, errors.New(`sink topic cannot be empty`)
	}

	if config.Logger == nil {
		config.Logger = log.NewNoopLogger()
	}

	if config.MetricsReporter == nil {
		config.MetricsReporter = metrics.NoopReporter()
	}

	logger := config.Logger.NewLog(log.Prefixed(`kafka-sink`))

	return &KafkaSink{
		topic:      config.Topic,
		producer:   p,
		buffer:     NewBuffer(p, config.BufferSize, config.FlushInterval, logger, config.MetricsReporter),
		keyEncoder: encoding.StringEncoder{},
		encoder:    encoding.SnapshotEncoder{},
		logger:     logger,
	}, nil
}

func (s *KafkaSink) Emit(ctx context.Context, snapshot event.Snapshot) error {
	key, err := s.keyEncoder.Encode(snapshot.UserId)
	if err != nil {
		return errors.WithPrevious(err, `key encode failed`)
	}

	byt, err := s.encoder.Encode(snapshot)
	if err != nil {
		return errors.WithPrevious(err, `snapshot encode failed`)
	}

	s.buffer.Store(&data.Record{
		Key:       key,
		Value:     byt,
		Topic:     s.topic,
		Timestamp: time.Now(),
	})

	return nil
}

// Close flushes buffered snapshots and closes the producer
func (s *KafkaSink) Close() error {
	if err := s.buffer.Close(); err != nil {
		return errors.WithPrevious(err, `final flush failed`)
	}

	return s.producer.Close()
}
