package consumer

import (
	"context"
	"fmt"
	"sync"

	"github.com/Shopify/sarama"
	"github.com/pickme-go/errors"
	"github.com/pickme-go/k-join/data"
	"github.com/pickme-go/log/v2"
	"github.com/pickme-go/metrics/v2"
)

type Builder func(config *Config) (Consumer, error)

type TopicPartition struct {
	Topic     string
	Partition int32
}

func (tp TopicPartition) String() string {
	return fmt.Sprintf(`%s_%d`, tp.Topic, tp.Partition)
}

// Consumer streams records of the subscribed topics. Records of one partition
// are delivered in offset order; partitions are interleaved.
type Consumer interface {
	Consume(ctx context.Context, topics []string) (<-chan *data.Record, error)
	Close() error
}

type groupConsumer struct {
	config  *Config
	group   sarama.ConsumerGroup
	logger  log.Logger
	wg      sync.WaitGroup
	metrics struct {
		endToEndLatency metrics.Observer
	}
}

func NewConsumer(config *Config) (Consumer, error) {
	if err := config.validate(); err != nil {
		return nil, errors.WithPrevious(err, `invalid consumer config`)
	}

	group, err := sarama.NewConsumerGroup(config.BootstrapServers, config.GroupId, config.Config)
	if err != nil {
		return nil, errors.WithPrevious(err, `failed to create consumer group`)
	}

	c := &groupConsumer{
		config: config,
		group:  group,
		logger: config.Logger.NewLog(log.Prefixed(`consumer`)),
	}

	c.metrics.endToEndLatency = config.MetricsReporter.Observer(metrics.MetricConf{
		Path:   `k_join_consumer_end_to_end_latency_microseconds`,
		Labels: []string{`topic`, `partition`},
	})

	return c, nil
}

func (c *groupConsumer) Consume(ctx context.Context, topics []string) (<-chan *data.Record, error) {
	if len(topics) < 1 {
		return nil, errors.New(`topics cannot be empty`)
	}

	c.logger.Info(fmt.Sprintf(`subscribing to topics %v`, topics))

	records := make(chan *data.Record, c.config.BufferSize)
	handler := &groupHandler{
		records:         records,
		logger:          c.logger,
		endToEndLatency: c.metrics.endToEndLatency,
	}

	c.wg.Add(2)
	go func() {
		defer c.wg.Done()
		for err := range c.group.Errors() {
			c.logger.Error(fmt.Sprintf(`consumer error: %+v`, err))
		}
	}()

	go func() {
		defer c.wg.Done()
		defer close(records)
		for {
			// Consume returns on every re-balance, join the group again until ctx is done
			if err := c.group.Consume(ctx, topics, handler); err != nil {
				c.logger.Error(fmt.Sprintf(`consume failed: %+v`, err))
				if err == sarama.ErrClosedConsumerGroup {
					return
				}
			}

			if ctx.Err() != nil {
				return
			}
		}
	}()

	return records, nil
}

func (c *groupConsumer) Close() error {
	c.logger.Info(`consumer closing...`)
	if err := c.group.Close(); err != nil {
		return errors.WithPrevious(err, `cannot close consumer group`)
	}

	c.wg.Wait()
	c.logger.Info(`consumer closed`)

	return nil
}
