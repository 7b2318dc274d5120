package consumer

import (
	"context"
	"testing"
	"time"

	"github.com/Shopify/sarama"
	"github.com/pickme-go/k-join/data"
)

func TestConfig_Validate(t *testing.T) {
	c := NewConsumerConfig()
	if err := c.validate(); err == nil {
		t.Error(`expected an error for an empty group id`)
	}

	c.GroupId = `k-join`
	if err := c.validate(); err == nil {
		t.Error(`expected an error for empty bootstrap servers`)
	}

	c.BootstrapServers = []string{`localhost:9092`}
	if err := c.validate(); err != nil {
		t.Fatal(err)
	}

	if c.Config.Consumer.Offsets.Initial != sarama.OffsetOldest {
		t.Errorf(`unexpected initial offset %d`, c.Config.Consumer.Offsets.Initial)
	}

	if c.Config.ClientID != c.Id {
		t.Errorf(`client id not applied`)
	}

	c.OffsetBegin = Offset(10)
	if err := c.validate(); err == nil {
		t.Error(`expected an error for an invalid offset`)
	}
}

func TestOffset_String(t *testing.T) {
	if Earliest.String() != `Earliest` || Latest.String() != `Latest` || Offset(3).String() != `unknown` {
		t.Fail()
	}
}

func TestToRecord(t *testing.T) {
	ts := time.Now()
	r := toRecord(&sarama.ConsumerMessage{
		Key:       []byte(`0001`),
		Value:     []byte(`{}`),
		Topic:     `events`,
		Partition: 3,
		Offset:    7,
		Timestamp: ts,
	})

	if string(r.Key) != `0001` || r.Topic != `events` || r.Partition != 3 || r.Offset != 7 || !r.Timestamp.Equal(ts) {
		t.Errorf(`unexpected record %+v`, r)
	}

	if r.UUID.String() == `00000000-0000-0000-0000-000000000000` {
		t.Error(`record uuid not set`)
	}
}

func TestExtractTps(t *testing.T) {
	tps := extractTps(map[string][]int32{`events`: {0, 1}})
	if len(tps) != 2 || tps[0].String() != `events_0` {
		t.Errorf(`unexpected partitions %v`, tps)
	}
}

func TestMockConsumer_Consume(t *testing.T) {
	c := NewMockConsumer([]*data.Record{
		{Topic: `events`, Value: []byte(`1`)},
		{Topic: `other`, Value: []byte(`2`)},
		{Topic: `events`, Value: []byte(`3`)},
	})

	records, err := c.Consume(context.Background(), []string{`events`})
	if err != nil {
		t.Fatal(err)
	}

	var values []string
	for r := range records {
		values = append(values, string(r.Value))
	}

	if len(values) != 2 || values[0] != `1` || values[1] != `3` {
		t.Errorf(`unexpected values %v`, values)
	}

	_ = c.Close()
	if _, err := c.Consume(context.Background(), []string{`events`}); err == nil {
		t.Error(`expected an error after close`)
	}
}
