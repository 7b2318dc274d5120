/**
 * Copyright 2018 PickMe (Digital Mobility Solutions Lanka (PVT) Ltd).
 * All rights reserved.
 * Authors:
 *    Gayan Yapa (gayan@pickme.lk)
 */

package kjoin

import (
	"io"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/pickme-go/errors"
	"github.com/pickme-go/k-join/admin"
	"github.com/pickme-go/k-join/consumer"
	"github.com/pickme-go/k-join/logger"
	"github.com/pickme-go/k-join/producer"
	"github.com/pickme-go/k-join/worker_pool"
	"github.com/pickme-go/log/v2"
	"github.com/pickme-go/metrics/v2"
)

type SourceType string

const (
	SourceFile  SourceType = `file`
	SourceKafka SourceType = `kafka`
)

type SinkType string

const (
	SinkWriter SinkType = `writer`
	SinkKafka  SinkType = `kafka`
)

type AdminBuilder func(config *admin.KafkaAdminConfig) (admin.KafkaAdmin, error)

type JoinBuilderConfig struct {
	ApplicationId    string
	BootstrapServers []string // kafka Brokers
	Source           struct {
		Type  SourceType
		File  string
		Topic string
	}
	Sink struct {
		Type              SinkType
		Writer            io.Writer
		Topic             string
		NumPartitions     int32
		ReplicationFactor int16
		Buffer            struct {
			Size          int
			FlushInterval time.Duration
		}
	}
	Store struct {
		Name        string
		NumOfShards int
		Http        struct {
			Host string
		}
	}
	SnapshotBufferSize int
	WorkerPool         *worker_pool.PoolConfig
	Consumer           *consumer.Config
	Producer           *producer.Config
	MetricsReporter    metrics.Reporter
	Logger             log.Logger
	ErrorHandler       ErrorHandler // defaults to NewLogErrorHandler(Logger)
	DefaultBuilders    struct {
		Consumer consumer.Builder
		Producer producer.Builder
		Admin    AdminBuilder
	}
}

func NewJoinBuilderConfig() *JoinBuilderConfig {
	config := &JoinBuilderConfig{}
	config.ApplicationId = `k-join`
	config.BootstrapServers = []string{`localhost:9092`}

	config.Source.Type = SourceFile
	config.Source.File = `events.json`
	config.Source.Topic = `events`

	config.Sink.Type = SinkWriter
	config.Sink.Writer = os.Stdout
	config.Sink.Topic = `customer_snapshots`
	config.Sink.NumPartitions = 10
	config.Sink.ReplicationFactor = 1
	config.Sink.Buffer.Size = 100
	config.Sink.Buffer.FlushInterval = 100 * time.Millisecond

	config.Store.Name = `customers`
	config.Store.NumOfShards = 64

	config.SnapshotBufferSize = 100

	//set default task execution order
	config.WorkerPool = worker_pool.NewPoolConfig()
	config.WorkerPool.Order = worker_pool.OrderByKey
	config.WorkerPool.NumOfWorkers = 10
	config.WorkerPool.WorkerBufferSize = 10

	config.Consumer = consumer.NewConsumerConfig()
	config.Producer = producer.NewConfig()

	// default metrics reporter
	config.MetricsReporter = metrics.NoopReporter()
	config.Logger = logger.DefaultLogger

	config.DefaultBuilders.Consumer = consumer.NewConsumer
	config.DefaultBuilders.Producer = producer.NewProducer
	config.DefaultBuilders.Admin = admin.NewKafkaAdmin

	return config
}

// envConfig holds the settings which can be overridden from the environment.
// Every variable is prefixed with KJOIN_.
type envConfig struct {
	ApplicationId     string        `env:"APPLICATION_ID"`
	BootstrapServers  []string      `env:"BOOTSTRAP_SERVERS" envSeparator:","`
	SourceType        string        `env:"SOURCE_TYPE"`
	SourceFile        string        `env:"SOURCE_FILE"`
	SourceTopic       string        `env:"SOURCE_TOPIC"`
	SinkType          string        `env:"SINK_TYPE"`
	SinkTopic         string        `env:"SINK_TOPIC"`
	SinkBufferSize    int           `env:"SINK_BUFFER_SIZE"`
	SinkFlushInterval time.Duration `env:"SINK_FLUSH_INTERVAL"`
	StoreHttpHost     string        `env:"STORE_HTTP_HOST"`
	NumOfWorkers      int           `env:"WORKERS"`
	WorkerBufferSize  int           `env:"WORKER_BUFFER_SIZE"`
}

// FromEnv overlays the config with the KJOIN_* environment variables which are set
func (c *JoinBuilderConfig) FromEnv() error {
	e := envConfig{}
	if err := env.ParseWithOptions(&e, env.Options{Prefix: `KJOIN_`}); err != nil {
		return errors.WithPrevious(err, `cannot parse environment`)
	}

	c.apply(e)

	return nil
}

func (c *JoinBuilderConfig) apply(e envConfig) {
	if e.ApplicationId != `` {
		c.ApplicationId = e.ApplicationId
	}

	if len(e.BootstrapServers) > 0 {
		c.BootstrapServers = e.BootstrapServers
	}

	if e.SourceType != `` {
		c.Source.Type = SourceType(e.SourceType)
	}

	if e.SourceFile != `` {
		c.Source.File = e.SourceFile
	}

	if e.SourceTopic != `` {
		c.Source.Topic = e.SourceTopic
	}

	if e.SinkType != `` {
		c.Sink.Type = SinkType(e.SinkType)
	}

	if e.SinkTopic != `` {
		c.Sink.Topic = e.SinkTopic
	}

	if e.SinkBufferSize > 0 {
		c.Sink.Buffer.Size = e.SinkBufferSize
	}

	if e.SinkFlushInterval > 0 {
		c.Sink.Buffer.FlushInterval = e.SinkFlushInterval
	}

	if e.StoreHttpHost != `` {
		c.Store.Http.Host = e.StoreHttpHost
	}

	if e.NumOfWorkers > 0 {
		c.WorkerPool.NumOfWorkers = e.NumOfWorkers
	}

	if e.WorkerBufferSize > 0 {
		c.WorkerPool.WorkerBufferSize = e.WorkerBufferSize
	}
}

func (c *JoinBuilderConfig) validate() error {
	if c.ApplicationId == `` {
		return errors.New(`[ApplicationId] cannot be empty`)
	}

	switch c.Source.Type {
	case SourceFile:
		if c.Source.File == `` {
			return errors.New(`[Source.File] cannot be empty`)
		}
	case SourceKafka:
		if c.Source.Topic == `` {
			return errors.New(`[Source.Topic] cannot be empty`)
		}
	default:
		return errors.New(`[Source.Type] should be file or kafka`)
	}

	switch c.Sink.Type {
	case SinkWriter:
		if c.Sink.Writer == nil {
			return errors.New(`[Sink.Writer] cannot be nil`)
		}
	case SinkKafka:
		if c.Sink.Topic == `` {
			return errors.New(`[Sink.Topic] cannot be empty`)
		}

		if c.Sink.NumPartitions < 1 {
			return errors.New(`[Sink.NumPartitions] should be greater than zero`)
		}

		if c.Sink.ReplicationFactor < 1 {
			return errors.New(`[Sink.ReplicationFactor] should be greater than zero`)
		}

		if c.Sink.Buffer.Size < 1 {
			return errors.New(`[Sink.Buffer.Size] should be greater than zero`)
		}

		if c.Sink.Buffer.FlushInterval < 1 {
			return errors.New(`[Sink.Buffer.FlushInterval] cannot be zero`)
		}
	default:
		return errors.New(`[Sink.Type] should be writer or kafka`)
	}

	if (c.Source.Type == SourceKafka || c.Sink.Type == SinkKafka) && len(c.BootstrapServers) < 1 {
		return errors.New(`[BootstrapServers] cannot be empty`)
	}

	if c.Store.Name == `` {
		return errors.New(`[Store.Name] cannot be empty`)
	}

	if c.Store.NumOfShards < 1 {
		return errors.New(`[Store.NumOfShards] should be greater than zero`)
	}

	//Worker Pool options
	if c.WorkerPool == nil {
		return errors.New(`[WorkerPool] cannot be nil`)
	}

	if err := c.WorkerPool.Validate(); err != nil {
		return errors.WithPrevious(err, `invalid worker pool config`)
	}

	if c.Logger == nil || c.MetricsReporter == nil {
		return errors.New(`[Logger] and [MetricsReporter] cannot be nil`)
	}

	return nil
}
