package join

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/pickme-go/k-join/event"
	"github.com/pickme-go/k-join/worker_pool"
)

func newTestEngine(t *testing.T) *Engine {
	conf := NewEngineConfig()
	conf.WorkerPool.NumOfWorkers = 4
	conf.NumOfShards = 4

	e, err := NewEngine(conf)
	if err != nil {
		t.Fatal(err)
	}

	return e
}

func TestEngine_Process_Scenarios(t *testing.T) {
	t.Run(`customer on a fresh key`, func(t *testing.T) {
		e := newTestEngine(t)
		defer e.Stop()

		snapshot, ok := e.Process(context.Background(), event.Record{
			`user_id`: `0001`, `name`: `chris`, `event`: map[string]interface{}{`type`: `customer`},
		})
		if !ok {
			t.Fatal(`record dropped`)
		}

		state, _ := e.Store().Get(`0001`)
		if state.UserId != `0001` || state.Name != `chris` || len(state.Orders) != 0 {
			t.Errorf(`unexpected state %+v`, state)
		}

		if snapshot.Name != `chris` || snapshot.Event.Type != event.TypeCustomer {
			t.Errorf(`unexpected snapshot %+v`, snapshot)
		}
	})

	t.Run(`order on a fresh key`, func(t *testing.T) {
		e := newTestEngine(t)
		defer e.Stop()

		rec := event.Record{`user_id`: `0001`, `order_id`: `1004`, `event`: map[string]interface{}{`type`: `order`}}
		if _, ok := e.Process(context.Background(), rec); !ok {
			t.Fatal(`record dropped`)
		}

		state, _ := e.Store().Get(`0001`)
		if len(state.Orders) != 1 || state.Orders[0][`order_id`] != `1004` || state.Name != `` {
			t.Errorf(`unexpected state %+v`, state)
		}
	})

	t.Run(`unknown type on a fresh key`, func(t *testing.T) {
		e := newTestEngine(t)
		defer e.Stop()

		snapshot, ok := e.Process(context.Background(), event.Record{
			`user_id`: `0001`, `order_id`: `1004`, `event`: map[string]interface{}{`type`: `unknown`},
		})
		if !ok {
			t.Fatal(`snapshot must be emitted for unknown types`)
		}

		if snapshot.UserId != `0001` || snapshot.Name != `` || len(snapshot.Orders) != 0 {
			t.Errorf(`unexpected snapshot %+v`, snapshot)
		}

		if _, ok := e.Store().Get(`0001`); !ok {
			t.Error(`state must be created for unknown types`)
		}
	})

	t.Run(`null name keeps the previous one`, func(t *testing.T) {
		e := newTestEngine(t)
		defer e.Stop()

		e.Process(context.Background(), event.Record{`user_id`: `0002`, `name`: `ana`, `event`: map[string]interface{}{`type`: `customer`}})
		snapshot, _ := e.Process(context.Background(), event.Record{`user_id`: `0002`, `name`: nil, `event`: map[string]interface{}{`type`: `customer`}})

		if snapshot.Name != `ana` {
			t.Errorf(`expected ana, got %q`, snapshot.Name)
		}
	})

	t.Run(`missing user_id`, func(t *testing.T) {
		e := newTestEngine(t)
		defer e.Stop()

		if _, ok := e.Process(context.Background(), event.Record{`name`: `chris`, `event`: map[string]interface{}{`type`: `customer`}}); ok {
			t.Error(`record without a key must be dropped`)
		}

		if _, ok := e.Process(context.Background(), event.Record{`user_id`: nil, `event`: map[string]interface{}{`type`: `order`}}); ok {
			t.Error(`record with a null key must be dropped`)
		}

		if e.Store().Len() != 0 {
			t.Errorf(`state created for a record without a key`)
		}
	})
}

func collect(e *Engine, timeout time.Duration) ([]event.Snapshot, error) {
	var snapshots []event.Snapshot
	deadline := time.After(timeout)
	for {
		select {
		case s, ok := <-e.Snapshots():
			if !ok {
				return snapshots, nil
			}
			snapshots = append(snapshots, s)
		case <-deadline:
			return snapshots, fmt.Errorf(`timed out after %d snapshots`, len(snapshots))
		}
	}
}

func TestEngine_Consume_PerKeyOrder(t *testing.T) {
	e := newTestEngine(t)

	users := []string{`0001`, `0002`, `0003`, `0004`, `0005`, `0006`}
	ordersPerUser := 200

	records := make(chan event.Record)
	go func() {
		defer close(records)
		for i := 0; i < ordersPerUser; i++ {
			for _, u := range users {
				records <- order(u, fmt.Sprint(i))
			}
			// dropped, must not produce a snapshot
			records <- event.Record{`order_id`: fmt.Sprint(i), `event`: map[string]interface{}{`type`: `order`}}
		}
	}()

	go e.Consume(context.Background(), records)

	snapshots, err := collect(e, 10*time.Second)
	if err != nil {
		t.Fatal(err)
	}

	if len(snapshots) != len(users)*ordersPerUser {
		t.Fatalf(`expected %d snapshots, got %d`, len(users)*ordersPerUser, len(snapshots))
	}

	lengths := make(map[string]int)
	for _, s := range snapshots {
		// every snapshot of a user has exactly one more order than the previous one
		lengths[s.UserId]++
		if len(s.Orders) != lengths[s.UserId] {
			t.Fatalf(`user %s: expected %d orders, got %d`, s.UserId, lengths[s.UserId], len(s.Orders))
		}

		last := s.Orders[len(s.Orders)-1]
		if last[`order_id`] != fmt.Sprint(lengths[s.UserId]-1) {
			t.Fatalf(`user %s: out of order snapshot %v`, s.UserId, last[`order_id`])
		}
	}

	for _, u := range users {
		state, _ := e.Store().Get(u)
		if len(state.Orders) != ordersPerUser {
			t.Errorf(`user %s: expected %d orders, got %d`, u, ordersPerUser, len(state.Orders))
		}
	}
}

func TestEngine_SubmitAfterStop(t *testing.T) {
	e := newTestEngine(t)
	e.Stop()
	e.Stop()

	if err := e.Submit(context.Background(), order(`0001`, `1`)); err == nil {
		t.Error(`expected an error`)
	}

	if _, ok := <-e.Snapshots(); ok {
		t.Error(`snapshots must be closed`)
	}
}

func TestEngine_ConsumeStopsOnCancel(t *testing.T) {
	e := newTestEngine(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		e.Consume(ctx, make(chan event.Record))
		close(done)
	}()

	cancel()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal(`consume did not return`)
	}

	if _, ok := <-e.Snapshots(); ok {
		t.Error(`snapshots must be closed`)
	}
}

func TestEngine_Topology(t *testing.T) {
	e := newTestEngine(t)
	defer e.Stop()

	expected := []string{`has_user_id`, `map_user_id`, `stateful_map(customers)`, `remove_map_key`}
	builders := e.Topology()
	if len(builders) != len(expected) {
		t.Fatalf(`unexpected topology size %d`, len(builders))
	}

	for i, b := range builders {
		if b.Name() != expected[i] {
			t.Errorf(`node %d: expected %s, got %s`, i, expected[i], b.Name())
		}
	}
}

func TestNewEngine_InvalidConfig(t *testing.T) {
	conf := NewEngineConfig()
	conf.NumOfShards = 0
	if _, err := NewEngine(conf); err == nil {
		t.Error(`expected an error`)
	}

	conf = NewEngineConfig()
	conf.WorkerPool.Order = worker_pool.OrderRandom
	if _, err := NewEngine(conf); err == nil {
		t.Error(`expected an error for a random execution order`)
	}
}

func TestEngine_ConsumeCancelEmitsAppliedRecords(t *testing.T) {
	conf := NewEngineConfig()
	conf.SnapshotBufferSize = 0
	conf.WorkerPool.NumOfWorkers = 2

	e, err := NewEngine(conf)
	if err != nil {
		t.Fatal(err)
	}

	records := make(chan event.Record, 6)
	for i := 0; i < 6; i++ {
		records <- order(`0001`, fmt.Sprint(i))
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		e.Consume(ctx, records)
		close(done)
	}()

	first := <-e.Snapshots()
	cancel()

	received := []event.Snapshot{first}
	for s := range e.Snapshots() {
		received = append(received, s)
	}

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal(`consume did not return`)
	}

	state, _ := e.Store().Get(`0001`)
	if uint64(len(received)) != state.Version {
		t.Fatalf(`orders applied=%d snapshots received=%d`, state.Version, len(received))
	}

	for i, s := range received {
		if len(s.Orders) != i+1 {
			t.Errorf(`snapshot %d: expected %d orders, got %d`, i, i+1, len(s.Orders))
		}
	}
}

func TestEngine_ProcessSnapshotIsACopy(t *testing.T) {
	e := newTestEngine(t)
	defer e.Stop()

	snapshot, ok := e.Process(context.Background(), order(`0001`, `1004`))
	if !ok {
		t.Fatal(`record dropped`)
	}

	snapshot.Orders[0][`order_id`] = `changed`

	state, _ := e.Store().Get(`0001`)
	if state.Orders[0][`order_id`] != `1004` {
		t.Errorf(`stored order changed through a snapshot: %v`, state.Orders[0])
	}
}

func TestProject(t *testing.T) {
	s := event.Snapshot{UserId: `0001`}
	if Project(`0001`, s).UserId != `0001` {
		t.Fail()
	}
}
