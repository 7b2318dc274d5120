package producer

import (
	"context"
	"testing"

	"github.com/Shopify/sarama"
	"github.com/Shopify/sarama/mocks"
	"github.com/pickme-go/k-join/data"
	"github.com/pickme-go/log/v2"
	"github.com/pickme-go/metrics/v2"
)

func TestSaramaProducer_Produce(t *testing.T) {
	config := sarama.NewConfig()
	config.Producer.Return.Successes = true

	mockSarama := mocks.NewSyncProducer(t, config)
	mockSarama.ExpectSendMessageAndSucceed()

	p := newSaramaProducer(`test`, mockSarama, log.NewNoopLogger(), metrics.NoopReporter())

	_, _, err := p.Produce(context.Background(), &data.Record{
		Key:   []byte(`0001`),
		Value: []byte(`{}`),
		Topic: `customers`,
	})
	if err != nil {
		t.Error(err)
	}

	if err := p.Close(); err != nil {
		t.Error(err)
	}
}

func TestSaramaProducer_ProduceBatch(t *testing.T) {
	config := sarama.NewConfig()
	config.Producer.Return.Successes = true

	mockSarama := mocks.NewSyncProducer(t, config)
	mockSarama.ExpectSendMessageAndSucceed()
	mockSarama.ExpectSendMessageAndSucceed()

	p := newSaramaProducer(`test`, mockSarama, log.NewNoopLogger(), metrics.NoopReporter())

	msg1 := &data.Record{Key: []byte(`100`), Value: []byte(`100`), Topic: `customers`}
	msg2 := *msg1
	msg2.Key = []byte(`200`)

	if err := p.ProduceBatch(context.Background(), []*data.Record{msg1, &msg2}); err != nil {
		t.Error(err)
	}

	if err := p.ProduceBatch(context.Background(), nil); err != nil {
		t.Error(err)
	}

	if err := p.Close(); err != nil {
		t.Error(err)
	}
}

func TestSaramaProducer_ProduceError(t *testing.T) {
	config := sarama.NewConfig()
	config.Producer.Return.Successes = true

	mockSarama := mocks.NewSyncProducer(t, config)
	mockSarama.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	p := newSaramaProducer(`test`, mockSarama, log.NewNoopLogger(), metrics.NoopReporter())
	if _, _, err := p.Produce(context.Background(), &data.Record{Topic: `customers`}); err == nil {
		t.Error(`expected an error`)
	}

	_ = p.Close()
}

func TestMockProducer_Produce(t *testing.T) {
	producer := NewMockProducer(3)

	for i := 0; i < 3; i++ {
		p1, _, err := producer.Produce(context.Background(), &data.Record{Key: []byte(`0001`), Topic: `out`})
		if err != nil {
			t.Fatal(err)
		}
		p2, _, _ := producer.Produce(context.Background(), &data.Record{Key: []byte(`0001`), Topic: `out`})
		if p1 != p2 {
			t.Error(`same key produced to different partitions`)
		}
	}

	records := producer.Records(`out`)
	if len(records) != 6 {
		t.Fatalf(`expected 6 records, got %d`, len(records))
	}

	for i, r := range records {
		if r.Offset != int64(i) {
			t.Errorf(`unexpected offset %d at %d`, r.Offset, i)
		}
	}
}

func TestMockProducer_Closed(t *testing.T) {
	producer := NewMockProducer(1)
	_ = producer.Close()

	if _, _, err := producer.Produce(context.Background(), &data.Record{}); err == nil {
		t.Error(`expected an error`)
	}
}

func TestConfig_Validate(t *testing.T) {
	c := NewConfig()
	if err := c.validate(); err == nil {
		t.Error(`expected an error for an empty id`)
	}

	c.Id = `k-join`
	c.BootstrapServers = []string{`localhost:9092`}
	if err := c.validate(); err != nil {
		t.Error(err)
	}

	c.apply()
	if !c.Config.Producer.Return.Successes || c.Config.Producer.RequiredAcks != sarama.WaitForAll {
		t.Error(`sarama config not applied`)
	}
}
