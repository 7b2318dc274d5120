package consumer

import (
	"time"

	"github.com/Shopify/sarama"
	"github.com/google/uuid"
	"github.com/pickme-go/errors"
	"github.com/pickme-go/log/v2"
	"github.com/pickme-go/metrics/v2"
	gometrics "github.com/rcrowley/go-metrics"
)

type Offset int64

const (
	Earliest Offset = -2
	Latest   Offset = -1
)

func (o Offset) String() string {
	switch o {
	case Earliest:
		return `Earliest`
	case Latest:
		return `Latest`
	default:
		return `unknown`
	}
}

type Config struct {
	Id               string
	GroupId          string
	BootstrapServers []string
	OffsetBegin      Offset
	BufferSize       int
	MetricsReporter  metrics.Reporter
	Logger           log.Logger
	*sarama.Config
}

func NewConsumerConfig() *Config {
	c := new(Config)
	c.setDefaults()
	return c
}

func (c *Config) setDefaults() {
	c.Id = uuid.New().String()
	c.Config = sarama.NewConfig()
	c.Config.Version = sarama.V2_0_0_0
	c.Config.Consumer.Return.Errors = true
	c.Config.Consumer.Group.Heartbeat.Interval = 100 * time.Millisecond
	c.Config.Consumer.Group.Rebalance.Strategy = sarama.BalanceStrategyRoundRobin
	c.Config.ChannelBufferSize = 1000
	c.Config.MetricRegistry = gometrics.NewRegistry()
	c.OffsetBegin = Earliest
	c.BufferSize = 100
	c.MetricsReporter = metrics.NoopReporter()
	c.Logger = log.NewNoopLogger()
}

func (c *Config) validate() error {
	if c.GroupId == `` {
		return errors.New(`[Consumer.GroupId] cannot be empty`)
	}

	if len(c.BootstrapServers) < 1 {
		return errors.New(`[Consumer.BootstrapServers] cannot be empty`)
	}

	if c.OffsetBegin != Earliest && c.OffsetBegin != Latest {
		return errors.New(`[Consumer.OffsetBegin] should be Earliest or Latest`)
	}

	if c.BufferSize < 0 {
		return errors.New(`[Consumer.BufferSize] cannot be negative`)
	}

	c.Config.ClientID = c.Id
	c.Config.Consumer.Offsets.Initial = int64(c.OffsetBegin)

	if err := c.Config.Validate(); err != nil {
		return errors.WithPrevious(err, `invalid sarama config`)
	}

	return nil
}
