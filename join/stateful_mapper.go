package join

import (
	"context"
	"fmt"

	"github.com/pickme-go/errors"
	"github.com/pickme-go/k-join/event"
	"github.com/pickme-go/k-join/internal/node"
)

// StatefulMapper folds keyed records into the state store and forwards the
// resulting snapshot under the same key
type StatefulMapper struct {
	Id    int32
	Store *StateStore
	Rule  *UpdateRule
}

func (m *StatefulMapper) Build() (node.Node, error) {
	if m.Store == nil || m.Rule == nil {
		return nil, errors.New(`stateful mapper requires a store and an update rule`)
	}

	return &StatefulMapper{
		Id:    m.Id,
		Store: m.Store,
		Rule:  m.Rule,
	}, nil
}

func (m *StatefulMapper) ID() int32 {
	return m.Id
}

func (m *StatefulMapper) Name() string {
	return fmt.Sprintf(`stateful_map(%s)`, m.Store.Name())
}

func (m *StatefulMapper) Type() node.Type {
	return node.TypeStateful
}

func (m *StatefulMapper) Run(ctx context.Context, kIn, vIn interface{}) (kOut, vOut interface{}, next bool, err error) {
	key, ok := kIn.(string)
	if !ok {
		return nil, nil, false, errors.New(fmt.Sprintf(`invalid key type [%T], expected string`, kIn))
	}

	record, ok := vIn.(event.Record)
	if !ok {
		return nil, nil, false, errors.New(fmt.Sprintf(`invalid value type [%T], expected event.Record`, vIn))
	}

	var snapshot event.Snapshot
	m.Store.Update(key, func(state EntityState) EntityState {
		state, snapshot = m.Rule.Update(ctx, state, record)
		return state
	})

	return key, snapshot, true, nil
}
