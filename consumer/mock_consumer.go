package consumer

import (
	"context"
	"sync"

	"github.com/pickme-go/errors"
	"github.com/pickme-go/k-join/data"
)

// MockConsumer replays a fixed set of records, filtered by topic, then closes the
// record channel
type MockConsumer struct {
	records []*data.Record
	closed  bool
	mu      sync.Mutex
}

func NewMockConsumer(records []*data.Record) *MockConsumer {
	return &MockConsumer{
		records: records,
	}
}

func (c *MockConsumer) Consume(ctx context.Context, topics []string) (<-chan *data.Record, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, errors.New(`consumer closed`)
	}

	subscribed := make(map[string]bool)
	for _, t := range topics {
		subscribed[t] = true
	}

	ch := make(chan *data.Record)
	go func() {
		defer close(ch)
		for _, r := range c.records {
			if !subscribed[r.Topic] {
				continue
			}

			select {
			case ch <- r:
			case <-ctx.Done():
				return
			}
		}
	}()

	return ch, nil
}

func (c *MockConsumer) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}
