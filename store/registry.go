package store

import (
	"fmt"
	"sort"
	"sync"

	"github.com/pickme-go/errors"
)

type Registry interface {
	Register(store ReadOnlyStore) error
	Store(name string) (ReadOnlyStore, bool)
	List() []string
}

type registry struct {
	stores map[string]ReadOnlyStore
	mu     *sync.RWMutex
}

func NewRegistry() Registry {
	return &registry{
		stores: make(map[string]ReadOnlyStore),
		mu:     new(sync.RWMutex),
	}
}

func (r *registry) Register(store ReadOnlyStore) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := store.Name()
	if _, ok := r.stores[name]; ok {
		return errors.New(fmt.Sprintf(`store [%s] already exist`, name))
	}

	r.stores[name] = store

	return nil
}

func (r *registry) Store(name string) (ReadOnlyStore, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	store, ok := r.stores[name]
	return store, ok
}

func (r *registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]string, 0, len(r.stores))
	for name := range r.stores {
		list = append(list, name)
	}

	sort.Strings(list)

	return list
}
