package producer

import (
	"context"
	"hash"
	"hash/fnv"
	"sync"

	"github.com/pickme-go/errors"
	"github.com/pickme-go/k-join/data"
)

// MockProducer keeps produced records in memory, partitioned by key hash
type MockProducer struct {
	hasher     hash.Hash32
	partitions int32
	records    map[string][]*data.Record
	offsets    map[string]int64
	fail       error
	closed     bool
	mu         sync.Mutex
}

func NewMockProducer(partitions int32) *MockProducer {
	if partitions < 1 {
		partitions = 1
	}

	return &MockProducer{
		hasher:     fnv.New32a(),
		partitions: partitions,
		records:    make(map[string][]*data.Record),
		offsets:    make(map[string]int64),
	}
}

// FailWith makes every following produce call return err
func (msp *MockProducer) FailWith(err error) {
	msp.mu.Lock()
	defer msp.mu.Unlock()
	msp.fail = err
}

func (msp *MockProducer) Produce(ctx context.Context, message *data.Record) (partition int32, offset int64, err error) {
	msp.mu.Lock()
	defer msp.mu.Unlock()

	return msp.produce(message)
}

func (msp *MockProducer) produce(message *data.Record) (int32, int64, error) {
	if msp.closed {
		return 0, 0, errors.New(`producer closed`)
	}

	if msp.fail != nil {
		return 0, 0, msp.fail
	}

	msp.hasher.Reset()
	if _, err := msp.hasher.Write(message.Key); err != nil {
		return 0, 0, err
	}

	p := int32(msp.hasher.Sum32() % uint32(msp.partitions))
	tp := message.Topic

	rec := *message
	rec.Partition = p
	rec.Offset = msp.offsets[tp]
	msp.offsets[tp]++
	msp.records[tp] = append(msp.records[tp], &rec)

	return p, rec.Offset, nil
}

func (msp *MockProducer) ProduceBatch(ctx context.Context, messages []*data.Record) error {
	msp.mu.Lock()
	defer msp.mu.Unlock()

	for _, msg := range messages {
		if _, _, err := msp.produce(msg); err != nil {
			return err
		}
	}

	return nil
}

// Records returns every record produced to topic in produce order
func (msp *MockProducer) Records(topic string) []*data.Record {
	msp.mu.Lock()
	defer msp.mu.Unlock()

	records := make([]*data.Record, len(msp.records[topic]))
	copy(records, msp.records[topic])

	return records
}

func (msp *MockProducer) Close() error {
	msp.mu.Lock()
	defer msp.mu.Unlock()
	msp.closed = true
	return nil
}
