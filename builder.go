/**
 * Copyright 2018 PickMe (Digital Mobility Solutions Lanka (PVT) Ltd).
 * All rights reserved.
 * Authors:
 *    Gayan Yapa (gayan@pickme.lk)
 */

package kjoin

import (
	"fmt"

	"github.com/Shopify/sarama"
	"github.com/pickme-go/errors"
	"github.com/pickme-go/k-join/admin"
	"github.com/pickme-go/k-join/graph"
	"github.com/pickme-go/k-join/join"
	"github.com/pickme-go/k-join/logger"
	"github.com/pickme-go/k-join/sink"
	"github.com/pickme-go/k-join/source"
	"github.com/pickme-go/k-join/store"
	"github.com/pickme-go/log/v2"
	"github.com/pickme-go/metrics/v2"
)

type JoinBuilder struct {
	config          *JoinBuilderConfig
	storeRegistry   store.Registry
	logger          log.Logger
	metricsReporter metrics.Reporter
}

// NewJoinBuilder validates the config and prints it. An invalid config is fatal.
func NewJoinBuilder(config *JoinBuilderConfig) *JoinBuilder {
	if err := config.validate(); err != nil {
		logger.DefaultLogger.Fatal(fmt.Sprintf(`invalid builder config: %+v`, err))
	}

	b := &JoinBuilder{
		config:          config,
		storeRegistry:   store.NewRegistry(),
		logger:          config.Logger.NewLog(log.Prefixed(`join-builder`)),
		metricsReporter: config.MetricsReporter,
	}

	printInfo(b)

	return b
}

func (b *JoinBuilder) StoreRegistry() store.Registry {
	return b.storeRegistry
}

// Build wires the source, the join engine and the sink into a runnable stream
func (b *JoinBuilder) Build() (*JoinStream, error) {
	engineConfig := join.NewEngineConfig()
	engineConfig.Id = b.config.ApplicationId
	engineConfig.StoreName = b.config.Store.Name
	engineConfig.NumOfShards = b.config.Store.NumOfShards
	engineConfig.SnapshotBufferSize = b.config.SnapshotBufferSize
	engineConfig.WorkerPool = b.config.WorkerPool
	engineConfig.Logger = b.config.Logger
	engineConfig.MetricsReporter = b.metricsReporter

	engine, err := join.NewEngine(engineConfig)
	if err != nil {
		return nil, errors.WithPrevious(err, `cannot create join engine`)
	}

	if err := b.storeRegistry.Register(engine.Store()); err != nil {
		return nil, errors.WithPrevious(err, `cannot register state store`)
	}

	src, err := b.source()
	if err != nil {
		engine.Stop()
		return nil, errors.WithPrevious(err, `cannot create source`)
	}

	snk, err := b.sink()
	if err != nil {
		engine.Stop()
		_ = src.Close()
		return nil, errors.WithPrevious(err, `cannot create sink`)
	}

	topology, err := b.topology(engine)
	if err != nil {
		b.logger.Warn(fmt.Sprintf(`topology cannot be rendered due to %+v`, err))
	}

	return newJoinStream(b, engine, src, snk, topology), nil
}

func (b *JoinBuilder) source() (source.Source, error) {
	if b.config.Source.Type == SourceFile {
		return source.NewFileSource(b.config.Source.File, b.config.Logger)
	}

	consumerConfig := b.config.Consumer
	consumerConfig.GroupId = b.config.ApplicationId
	consumerConfig.BootstrapServers = b.config.BootstrapServers
	consumerConfig.Logger = b.config.Logger
	consumerConfig.MetricsReporter = b.metricsReporter

	c, err := b.config.DefaultBuilders.Consumer(consumerConfig)
	if err != nil {
		return nil, errors.WithPrevious(err, `cannot create consumer`)
	}

	return source.NewKafkaSource(b.config.Source.Topic, c)
}

func (b *JoinBuilder) sink() (sink.Sink, error) {
	if b.config.Sink.Type == SinkWriter {
		return sink.NewWriterSink(b.config.Sink.Writer), nil
	}

	if err := b.ensureSinkTopic(); err != nil {
		return nil, err
	}

	producerConfig := b.config.Producer
	producerConfig.Id = fmt.Sprintf(`%s-sink`, b.config.ApplicationId)
	producerConfig.BootstrapServers = b.config.BootstrapServers
	producerConfig.Logger = b.config.Logger
	producerConfig.MetricsReporter = b.metricsReporter

	p, err := b.config.DefaultBuilders.Producer(producerConfig)
	if err != nil {
		return nil, errors.WithPrevious(err, `cannot create producer`)
	}

	return sink.NewKafkaSink(p, &sink.KafkaSinkConfig{
		Topic:           b.config.Sink.Topic,
		BufferSize:      b.config.Sink.Buffer.Size,
		FlushInterval:   b.config.Sink.Buffer.FlushInterval,
		Logger:          b.config.Logger,
		MetricsReporter: b.metricsReporter,
	})
}

func (b *JoinBuilder) ensureSinkTopic() error {
	kAdmin, err := b.config.DefaultBuilders.Admin(&admin.KafkaAdminConfig{
		BootstrapServers: b.config.BootstrapServers,
		KafkaVersion:     sarama.V2_0_0_0,
		Logger:           b.config.Logger,
	})
	if err != nil {
		return errors.WithPrevious(err, `cannot create kafka admin`)
	}
	defer kAdmin.Close()

	return admin.EnsureTopics(kAdmin, map[string]*admin.Topic{
		b.config.Sink.Topic: {
			Name:              b.config.Sink.Topic,
			NumPartitions:     b.config.Sink.NumPartitions,
			ReplicationFactor: b.config.Sink.ReplicationFactor,
		},
	})
}

func (b *JoinBuilder) topology(engine *join.Engine) (string, error) {
	g, err := graph.NewGraph()
	if err != nil {
		return ``, err
	}

	sourceName := b.config.Source.File
	if b.config.Source.Type == SourceKafka {
		sourceName = b.config.Source.Topic
	}

	if err := g.Source(string(b.config.Source.Type), sourceName, nil); err != nil {
		return ``, err
	}

	stores := make(map[int32]string)
	for _, nb := range engine.Topology() {
		if m, ok := nb.(*join.StatefulMapper); ok {
			stores[m.ID()] = m.Store.Name()
		}
	}

	if err := g.Render(engine.Topology(), stores); err != nil {
		return ``, err
	}

	sinkName := `stdout`
	if b.config.Sink.Type == SinkKafka {
		sinkName = b.config.Sink.Topic
	}

	if err := g.Sink(string(b.config.Sink.Type), sinkName, map[string]string{`key`: `user_id`}); err != nil {
		return ``, err
	}

	return g.Build(), nil
}
