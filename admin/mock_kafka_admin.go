package admin

import (
	"fmt"
	"sync"

	"github.com/Shopify/sarama"
	"github.com/pickme-go/errors"
)

type MockKafkaAdmin struct {
	topics map[string]*Topic
	mu     sync.Mutex
}

func NewMockKafkaAdmin() *MockKafkaAdmin {
	return &MockKafkaAdmin{
		topics: make(map[string]*Topic),
	}
}

func (m *MockKafkaAdmin) FetchInfo(topics []string) (map[string]*Topic, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	tps := make(map[string]*Topic)
	for _, name := range topics {
		info, ok := m.topics[name]
		if !ok {
			tps[name] = &Topic{Name: name, Error: sarama.ErrUnknownTopicOrPartition}
			continue
		}
		tps[name] = info
	}

	return tps, nil
}

func (m *MockKafkaAdmin) CreateTopics(topics map[string]*Topic) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for name, tp := range topics {
		if _, ok := m.topics[name]; ok {
			return errors.New(fmt.Sprintf(`topic %s already exists`, name))
		}
		t := *tp
		t.Name = name
		m.topics[name] = &t
	}

	return nil
}

func (m *MockKafkaAdmin) DeleteTopics(topics []string) (map[string]error, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, tp := range topics {
		if _, ok := m.topics[tp]; !ok {
			return nil, errors.New(fmt.Sprintf(`topic %s does not exist`, tp))
		}
		delete(m.topics, tp)
	}

	return nil, nil
}

func (m *MockKafkaAdmin) Close() {}
