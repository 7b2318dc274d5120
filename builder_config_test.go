package kjoin

import (
	"testing"
	"time"

	"github.com/pickme-go/log/v2"
)

func TestJoinBuilderConfig_FromEnv(t *testing.T) {
	t.Setenv(`KJOIN_APPLICATION_ID`, `join-test`)
	t.Setenv(`KJOIN_BOOTSTRAP_SERVERS`, `k1:9092,k2:9092`)
	t.Setenv(`KJOIN_SOURCE_TYPE`, `kafka`)
	t.Setenv(`KJOIN_SINK_FLUSH_INTERVAL`, `2s`)
	t.Setenv(`KJOIN_WORKERS`, `4`)

	c := NewJoinBuilderConfig()
	if err := c.FromEnv(); err != nil {
		t.Fatal(err)
	}

	if c.ApplicationId != `join-test` {
		t.Errorf(`unexpected application id %s`, c.ApplicationId)
	}

	if len(c.BootstrapServers) != 2 || c.BootstrapServers[1] != `k2:9092` {
		t.Errorf(`unexpected bootstrap servers %v`, c.BootstrapServers)
	}

	if c.Source.Type != SourceKafka {
		t.Errorf(`unexpected source type %s`, c.Source.Type)
	}

	if c.Sink.Buffer.FlushInterval != 2*time.Second {
		t.Errorf(`unexpected flush interval %s`, c.Sink.Buffer.FlushInterval)
	}

	if c.WorkerPool.NumOfWorkers != 4 {
		t.Errorf(`unexpected worker count %d`, c.WorkerPool.NumOfWorkers)
	}

	// unset variables keep the defaults
	if c.Source.File != `events.json` || c.Store.Name != `customers` {
		t.Error(`defaults overridden by unset variables`)
	}
}

func TestJoinBuilderConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(c *JoinBuilderConfig)
		valid  bool
	}{
		{`defaults`, func(c *JoinBuilderConfig) {}, true},
		{`empty application id`, func(c *JoinBuilderConfig) { c.ApplicationId = `` }, false},
		{`unknown source`, func(c *JoinBuilderConfig) { c.Source.Type = `http` }, false},
		{`empty source file`, func(c *JoinBuilderConfig) { c.Source.File = `` }, false},
		{`kafka source without topic`, func(c *JoinBuilderConfig) {
			c.Source.Type = SourceKafka
			c.Source.Topic = ``
		}, false},
		{`kafka sink without brokers`, func(c *JoinBuilderConfig) {
			c.Sink.Type = SinkKafka
			c.BootstrapServers = nil
		}, false},
		{`kafka sink with zero buffer`, func(c *JoinBuilderConfig) {
			c.Sink.Type = SinkKafka
			c.Sink.Buffer.Size = 0
		}, false},
		{`nil writer`, func(c *JoinBuilderConfig) { c.Sink.Writer = nil }, false},
		{`zero shards`, func(c *JoinBuilderConfig) { c.Store.NumOfShards = 0 }, false},
		{`zero workers`, func(c *JoinBuilderConfig) { c.WorkerPool.NumOfWorkers = 0 }, false},
		{`nil logger`, func(c *JoinBuilderConfig) { c.Logger = nil }, false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			c := NewJoinBuilderConfig()
			c.Logger = log.NewNoopLogger()
			test.modify(c)

			err := c.validate()
			if test.valid && err != nil {
				t.Errorf(`unexpected error %s`, err)
			}

			if !test.valid && err == nil {
				t.Error(`expected an error`)
			}
		})
	}
}
