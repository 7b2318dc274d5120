package join

import (
	"context"
	"hash/fnv"
	"sort"
	"sync"

	"github.com/pickme-go/k-join/store"
)

// StateStore owns the state of every key seen by the engine. Keys are spread over
// a fixed number of shards; a shard write lock is held while an update runs so a
// key never has more than one update in flight. States are created lazily and
// never removed.
type StateStore struct {
	name   string
	shards []*shard
}

type shard struct {
	mu     sync.RWMutex
	states map[string]EntityState
}

func NewStateStore(name string, numOfShards int) *StateStore {
	if numOfShards < 1 {
		numOfShards = 1
	}

	s := &StateStore{
		name:   name,
		shards: make([]*shard, numOfShards),
	}

	for i := range s.shards {
		s.shards[i] = &shard{states: make(map[string]EntityState)}
	}

	return s
}

func (s *StateStore) Name() string {
	return s.name
}

func (s *StateStore) shard(key string) *shard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return s.shards[h.Sum32()%uint32(len(s.shards))]
}

// GetOrCreate returns the state of key, creating the initial state on first access
func (s *StateStore) GetOrCreate(key string) EntityState {
	sh := s.shard(key)

	sh.mu.RLock()
	state, ok := sh.states[key]
	sh.mu.RUnlock()
	if ok {
		return state
	}

	sh.mu.Lock()
	defer sh.mu.Unlock()

	if state, ok := sh.states[key]; ok {
		return state
	}

	state = NewEntityState(key)
	sh.states[key] = state

	return state
}

// Update replaces the state of key with fn(state) and returns the new state. fn
// runs under the shard lock and must not call back into the store.
func (s *StateStore) Update(key string, fn func(state EntityState) EntityState) EntityState {
	sh := s.shard(key)

	sh.mu.Lock()
	defer sh.mu.Unlock()

	state, ok := sh.states[key]
	if !ok {
		state = NewEntityState(key)
	}

	state = fn(state)
	sh.states[key] = state

	return state
}

func (s *StateStore) Get(key string) (EntityState, bool) {
	sh := s.shard(key)

	sh.mu.RLock()
	defer sh.mu.RUnlock()

	state, ok := sh.states[key]
	return state, ok
}

// Keys returns every known key in ascending order
func (s *StateStore) Keys() []string {
	keys := make([]string, 0)
	for _, sh := range s.shards {
		sh.mu.RLock()
		for k := range sh.states {
			keys = append(keys, k)
		}
		sh.mu.RUnlock()
	}

	sort.Strings(keys)

	return keys
}

func (s *StateStore) Len() int {
	var n int
	for _, sh := range s.shards {
		sh.mu.RLock()
		n += len(sh.states)
		sh.mu.RUnlock()
	}

	return n
}

func (s *StateStore) Read(_ context.Context, key string) (interface{}, bool, error) {
	state, ok := s.Get(key)
	if !ok {
		return nil, false, nil
	}

	return state, true, nil
}

func (s *StateStore) ReadAll(_ context.Context) ([]store.KeyValue, error) {
	keys := s.Keys()
	kvs := make([]store.KeyValue, 0, len(keys))
	for _, k := range keys {
		if state, ok := s.Get(k); ok {
			kvs = append(kvs, store.KeyValue{Key: k, Value: state})
		}
	}

	return kvs, nil
}
