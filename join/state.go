package join

import (
	"github.com/pickme-go/k-join/event"
)

// EntityState is the accumulated view of a single user. Values are immutable: every
// transition returns a new EntityState and never writes to the orders of the
// state it was derived from, so snapshots handed out earlier stay valid.
type EntityState struct {
	UserId  string         `json:"user_id"`
	Name    string         `json:"name"`
	Orders  []event.Record `json:"orders"`
	Version uint64         `json:"version"`
}

// NewEntityState returns the initial state of a key
func NewEntityState(userId string) EntityState {
	return EntityState{
		UserId: userId,
		Orders: []event.Record{},
	}
}

func (s EntityState) withName(name string) EntityState {
	s.Name = name
	s.Version++
	return s
}

func (s EntityState) withOrder(order event.Record) EntityState {
	orders := make([]event.Record, len(s.Orders), len(s.Orders)+1)
	copy(orders, s.Orders)
	s.Orders = append(orders, order)
	s.Version++
	return s
}

func (s EntityState) touched() EntityState {
	s.Version++
	return s
}

// Snapshot re-exports the state as a customer event. Orders are deep copies,
// changes made to a snapshot never reach the stored state.
func (s EntityState) Snapshot() event.Snapshot {
	orders := make([]event.Record, len(s.Orders))
	for i, o := range s.Orders {
		orders[i] = o.Clone()
	}

	return event.Snapshot{
		UserId: s.UserId,
		Name:   s.Name,
		Event:  event.Event{Type: event.TypeCustomer},
		Orders: orders,
	}
}
