package source

import (
	"context"

	"github.com/pickme-go/errors"
	"github.com/pickme-go/k-join/consumer"
	"github.com/pickme-go/k-join/data"
)

// KafkaSource reads records from the input topic. Per key ordering holds as long
// as producers key input records by user_id.
type KafkaSource struct {
	topic    string
	consumer consumer.Consumer
}

func NewKafkaSource(topic string, c consumer.Consumer) (*KafkaSource, error) {
	if topic == `` {
		return nil, errors.New(`source topic cannot be empty`)
	}

	return &KafkaSource{
		topic:    topic,
		consumer: c,
	}, nil
}

func (s *KafkaSource) Records(ctx context.Context) (<-chan *data.Record, error) {
	records, err := s.consumer.Consume(ctx, []string{s.topic})
	if err != nil {
		return nil, errors.WithPrevious(err, `cannot subscribe to `+s.topic)
	}

	return records, nil
}

func (s *KafkaSource) Close() error {
	return s.consumer.Close()
}
