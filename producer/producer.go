/**
 * Copyright 2018 PickMe (Digital Mobility Solutions Lanka (PVT) Ltd).
 * All rights reserved.
 * Authors:
 *    Gayan Yapa (gayan@pickme.lk)
 */

package producer

import (
	"context"
	"fmt"
	"time"

	"github.com/Shopify/sarama"
	"github.com/pickme-go/errors"
	"github.com/pickme-go/k-join/data"
	"github.com/pickme-go/log/v2"
	"github.com/pickme-go/metrics/v2"
)

type Builder func(configs *Config) (Producer, error)

type Producer interface {
	Produce(ctx context.Context, message *data.Record) (partition int32, offset int64, err error)
	ProduceBatch(ctx context.Context, messages []*data.Record) error
	Close() error
}

type saramaProducer struct {
	id             string
	saramaProducer sarama.SyncProducer
	logger         log.Logger
	metrics        struct {
		produceLatency      metrics.Observer
		batchProduceLatency metrics.Observer
	}
}

func NewProducer(configs *Config) (Producer, error) {
	if err := configs.validate(); err != nil {
		return nil, errors.WithPrevious(err, `invalid producer config`)
	}

	configs.apply()

	logger := configs.Logger.NewLog(log.Prefixed(`producer`))
	logger.Info(`producer [` + configs.Id + `] initiating...`)

	prd, err := sarama.NewSyncProducer(configs.BootstrapServers, configs.Config)
	if err != nil {
		return nil, errors.WithPrevious(err, fmt.Sprintf(`[%s] init failed`, configs.Id))
	}

	defer logger.Info(`producer [` + configs.Id + `] initiated`)

	return newSaramaProducer(configs.Id, prd, logger, configs.MetricsReporter), nil
}

func newSaramaProducer(id string, prd sarama.SyncProducer, logger log.Logger, reporter metrics.Reporter) *saramaProducer {
	p := &saramaProducer{
		id:             id,
		saramaProducer: prd,
		logger:         logger,
	}

	p.metrics.produceLatency = reporter.Observer(metrics.MetricConf{
		Path:   `k_join_producer_produced_latency_microseconds`,
		Labels: []string{`topic`},
	})
	p.metrics.batchProduceLatency = reporter.Observer(metrics.MetricConf{
		Path:   `k_join_producer_batch_produced_latency_microseconds`,
		Labels: []string{`topic`},
	})

	return p
}

func (p *saramaProducer) Close() error {
	defer p.logger.Info(fmt.Sprintf(`producer [%s] closed`, p.id))
	return p.saramaProducer.Close()
}

func (p *saramaProducer) message(record *data.Record, t time.Time) *sarama.ProducerMessage {
	m := &sarama.ProducerMessage{
		Topic:     record.Topic,
		Key:       sarama.ByteEncoder(record.Key),
		Value:     sarama.ByteEncoder(record.Value),
		Timestamp: t,
	}

	if !record.Timestamp.IsZero() {
		m.Timestamp = record.Timestamp
	}

	return m
}

func (p *saramaProducer) Produce(ctx context.Context, message *data.Record) (partition int32, offset int64, err error) {
	t := time.Now()

	pr, o, err := p.saramaProducer.SendMessage(p.message(message, t))
	if err != nil {
		return 0, 0, errors.WithPrevious(err, `cannot send message`)
	}

	p.metrics.produceLatency.Observe(float64(time.Since(t).Nanoseconds()/1e3), map[string]string{
		`topic`: message.Topic,
	})

	p.logger.TraceContext(ctx, fmt.Sprintf("delivered message to topic %s [%d] at offset %d", message.Topic, pr, o))

	return pr, o, nil
}

func (p *saramaProducer) ProduceBatch(ctx context.Context, messages []*data.Record) error {
	if len(messages) < 1 {
		return nil
	}

	t := time.Now()
	saramaMessages := make([]*sarama.ProducerMessage, 0, len(messages))
	for _, message := range messages {
		saramaMessages = append(saramaMessages, p.message(message, t))
	}

	if err := p.saramaProducer.SendMessages(saramaMessages); err != nil {
		return errors.WithPrevious(err, `cannot produce batch`)
	}

	p.metrics.batchProduceLatency.Observe(float64(time.Since(t).Nanoseconds()/1e3), map[string]string{
		`topic`: messages[0].Topic,
	})
	p.logger.TraceContext(ctx, fmt.Sprintf("message bulk of %d delivered to %s", len(messages), messages[0].Topic))

	return nil
}
