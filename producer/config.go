package producer

import (
	"time"

	"github.com/Shopify/sarama"
	"github.com/pickme-go/errors"
	"github.com/pickme-go/log/v2"
	"github.com/pickme-go/metrics/v2"
	gometrics "github.com/rcrowley/go-metrics"
)

type RequiredAcks int

const (
	// NoResponse doesn't send any response, the TCP ACK is all you get.
	NoResponse RequiredAcks = 0

	// WaitForLeader waits for only the local commit to succeed before responding.
	WaitForLeader RequiredAcks = 1

	// WaitForAll waits for all in-sync replicas to commit before responding.
	// The minimum number of in-sync replicas is configured on the broker via
	// the `min.insync.replicas` configuration key.
	WaitForAll RequiredAcks = -1
)

func (ack RequiredAcks) String() string {
	a := `NoResponse`

	if ack == WaitForLeader {
		a = `WaitForLeader`
	}

	if ack == WaitForAll {
		a = `WaitForAll`
	}

	return a
}

type Config struct {
	Id               string
	BootstrapServers []string
	RequiredAcks     RequiredAcks
	Retry            int
	RetryBackOff     time.Duration
	MetricsReporter  metrics.Reporter
	Logger           log.Logger
	*sarama.Config
}

func NewConfig() *Config {
	c := new(Config)
	c.Config = sarama.NewConfig()
	c.Config.Version = sarama.V2_0_0_0
	c.RequiredAcks = WaitForAll
	c.Retry = 5
	c.RetryBackOff = 30 * time.Millisecond
	c.MetricsReporter = metrics.NoopReporter()
	c.Logger = log.NewNoopLogger()
	return c
}

func (c *Config) validate() error {
	if c.Id == `` {
		return errors.New(`[Producer.Id] cannot be empty`)
	}

	if len(c.BootstrapServers) < 1 {
		return errors.New(`[Producer.BootstrapServers] cannot be empty`)
	}

	if c.Retry < 1 {
		return errors.New(`[Producer.Retry] should be greater than zero`)
	}

	if c.RetryBackOff < 1*time.Millisecond {
		return errors.New(`[Producer.RetryBackOff] should be equal or greater than 1ms`)
	}

	return nil
}

// apply copies the producer options into the sarama config. Messages are
// partitioned by key hash so all snapshots of a user land on one partition, in order.
func (c *Config) apply() {
	c.Config.ClientID = c.Id
	c.Config.Producer.RequiredAcks = sarama.RequiredAcks(c.RequiredAcks)
	c.Config.Producer.Retry.Max = c.Retry
	c.Config.Producer.Retry.Backoff = c.RetryBackOff
	c.Config.Producer.Return.Successes = true
	c.Config.Producer.Return.Errors = true
	c.Config.Producer.Partitioner = sarama.NewHashPartitioner
	if c.RequiredAcks == WaitForAll {
		c.Config.Producer.Idempotent = true
		c.Config.Net.MaxOpenRequests = 1
	}
	if c.Config.MetricRegistry == nil {
		c.Config.MetricRegistry = gometrics.NewRegistry()
	}
}
