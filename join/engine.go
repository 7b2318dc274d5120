package join

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pickme-go/errors"
	"github.com/pickme-go/k-join/event"
	"github.com/pickme-go/k-join/internal/node"
	"github.com/pickme-go/k-join/processors"
	"github.com/pickme-go/k-join/worker_pool"
	"github.com/pickme-go/log/v2"
	"github.com/pickme-go/metrics/v2"
)

type EngineConfig struct {
	Id                 string
	StoreName          string
	NumOfShards        int
	SnapshotBufferSize int
	WorkerPool         *worker_pool.PoolConfig
	Logger             log.Logger
	MetricsReporter    metrics.Reporter
}

func NewEngineConfig() *EngineConfig {
	return &EngineConfig{
		Id:                 `k-join`,
		StoreName:          `customers`,
		NumOfShards:        64,
		SnapshotBufferSize: 100,
		WorkerPool:         worker_pool.NewPoolConfig(),
		Logger:             log.NewNoopLogger(),
		MetricsReporter:    metrics.NoopReporter(),
	}
}

func (c *EngineConfig) validate() error {
	if c.Id == `` {
		return errors.New(`[Id] cannot be empty`)
	}

	if c.StoreName == `` {
		return errors.New(`[StoreName] cannot be empty`)
	}

	if c.NumOfShards < 1 {
		return errors.New(`[NumOfShards] should be greater than zero`)
	}

	if c.SnapshotBufferSize < 0 {
		return errors.New(`[SnapshotBufferSize] cannot be negative`)
	}

	if c.WorkerPool == nil {
		return errors.New(`[WorkerPool] cannot be nil`)
	}

	if c.WorkerPool.Order != worker_pool.OrderByKey {
		return errors.New(`[WorkerPool.Order] should be OrderByKey, records of a user must run on one worker`)
	}

	if c.Logger == nil || c.MetricsReporter == nil {
		return errors.New(`[Logger] and [MetricsReporter] cannot be nil`)
	}

	return nil
}

// Engine joins customer and order records by user_id.
//
// Records are pushed with Submit (or Consume) and routed to a worker by their
// user_id, so records of one user are applied one at a time in the order they
// were submitted. A snapshot is emitted on Snapshots for every record which
// carries a user_id. Process runs the same steps synchronously on the caller's
// goroutine.
type Engine struct {
	id              string
	store           *StateStore
	validator       *KeyValidator
	rule            *UpdateRule
	topologyBuilder *node.TopologyBuilder
	topology        node.Topology
	pool            *worker_pool.Pool
	snapshots       chan event.Snapshot
	logger          log.Logger
	mu              sync.RWMutex
	stopped         bool
	metrics         struct {
		received  metrics.Counter
		emitted   metrics.Counter
		processed metrics.Observer
	}
}

func NewEngine(config *EngineConfig) (*Engine, error) {
	if err := config.validate(); err != nil {
		return nil, errors.WithPrevious(err, `invalid engine config`)
	}

	logger := config.Logger.NewLog(log.Prefixed(fmt.Sprintf(`engine-%s`, config.Id)))

	e := &Engine{
		id:        config.Id,
		store:     NewStateStore(config.StoreName, config.NumOfShards),
		validator: NewKeyValidator(logger, config.MetricsReporter),
		rule:      NewUpdateRule(logger, config.MetricsReporter),
		snapshots: make(chan event.Snapshot, config.SnapshotBufferSize),
		logger:    logger,
	}

	e.metrics.received = config.MetricsReporter.Counter(metrics.MetricConf{
		Path: `k_join_engine_records_received`,
	})
	e.metrics.emitted = config.MetricsReporter.Counter(metrics.MetricConf{
		Path: `k_join_engine_snapshots_emitted`,
	})
	e.metrics.processed = config.MetricsReporter.Observer(metrics.MetricConf{
		Path: `k_join_engine_processed_latency_microseconds`,
	})

	e.topologyBuilder = e.joinTopology()

	topology, err := e.topologyBuilder.Build()
	if err != nil {
		return nil, errors.WithPrevious(err, `cannot build join topology`)
	}
	e.topology = topology

	workerTopology := new(node.TopologyBuilder)
	for _, b := range e.topologyBuilder.Builders() {
		workerTopology.Add(b)
	}
	workerTopology.Add(&processors.Processor{
		Id:          int32(len(e.topologyBuilder.Builders()) + 1),
		Label:       `emit`,
		ProcessFunc: e.emit,
	})

	pool, err := worker_pool.NewPool(config.Id, workerTopology, config.MetricsReporter, logger, config.WorkerPool)
	if err != nil {
		return nil, errors.WithPrevious(err, `cannot start worker pool`)
	}
	e.pool = pool

	logger.Info(fmt.Sprintf(`engine started with %d workers (%s)`, config.WorkerPool.NumOfWorkers, config.WorkerPool.Order))

	return e, nil
}

func (e *Engine) joinTopology() *node.TopologyBuilder {
	tb := new(node.TopologyBuilder)

	tb.Add(&processors.Filter{
		Id:    1,
		Label: `has_user_id`,
		FilterFunc: func(ctx context.Context, key, value interface{}) (bool, error) {
			record, ok := value.(event.Record)
			if !ok {
				return false, errors.New(fmt.Sprintf(`invalid value type [%T], expected event.Record`, value))
			}
			return e.validator.Valid(ctx, record), nil
		},
	})

	tb.Add(&processors.KeySelector{
		Id:    2,
		Label: `map_user_id`,
		SelectKeyFunc: func(ctx context.Context, key, value interface{}) (interface{}, error) {
			k, _ := KeyOf(value.(event.Record))
			return k, nil
		},
	})

	tb.Add(&StatefulMapper{
		Id:    3,
		Store: e.store,
		Rule:  e.rule,
	})

	tb.Add(&processors.Transformer{
		Id:    4,
		Label: `remove_map_key`,
		TransFunc: func(ctx context.Context, key, value interface{}) (interface{}, interface{}, error) {
			k, _ := key.(string)
			return nil, Project(k, value.(event.Snapshot)), nil
		},
	})

	return tb
}

func (e *Engine) emit(_ context.Context, _, value interface{}) error {
	snapshot, ok := value.(event.Snapshot)
	if !ok {
		return errors.New(fmt.Sprintf(`invalid value type [%T], expected event.Snapshot`, value))
	}

	// the state is already updated, the snapshot has to go out
	e.snapshots <- snapshot
	e.metrics.emitted.Count(1, nil)

	return nil
}

// Process applies a single record on the calling goroutine and returns the
// resulting snapshot. ok is false when the record was dropped.
func (e *Engine) Process(ctx context.Context, record event.Record) (snapshot event.Snapshot, ok bool) {
	e.metrics.received.Count(1, nil)
	defer func(begin time.Time) {
		e.metrics.processed.Observe(float64(time.Since(begin).Nanoseconds()/1e3), nil)
	}(time.Now())

	_, v, next, err := e.topology.Run(ctx, nil, record)
	if err != nil {
		e.logger.ErrorContext(ctx, err)
		return snapshot, false
	}

	if !next {
		return snapshot, false
	}

	return v.(event.Snapshot), true
}

// Submit queues a record for processing. It blocks while the worker owning the
// record's user_id is busy. Submit returns an error once the engine is stopped.
// A submitted record is applied and its snapshot emitted even if ctx is
// cancelled afterwards.
func (e *Engine) Submit(ctx context.Context, record event.Record) error {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if e.stopped {
		return errors.New(`engine stopped`)
	}

	e.metrics.received.Count(1, nil)

	var routingKey []byte
	if key, ok := record.UserId(); ok {
		routingKey = []byte(key)
	}

	begin := time.Now()
	e.pool.Run(context.WithoutCancel(ctx), routingKey, record, func() {
		e.metrics.processed.Observe(float64(time.Since(begin).Nanoseconds()/1e3), nil)
	})

	return nil
}

// Consume submits records until the channel is closed or ctx is done, then stops
// the engine.
func (e *Engine) Consume(ctx context.Context, records <-chan event.Record) {
	defer e.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case record, ok := <-records:
			if !ok {
				return
			}

			if err := e.Submit(ctx, record); err != nil {
				e.logger.ErrorContext(ctx, err)
				return
			}
		}
	}
}

// Snapshots is closed after Stop, once every submitted record was processed
func (e *Engine) Snapshots() <-chan event.Snapshot {
	return e.snapshots
}

func (e *Engine) Stop() {
	e.mu.Lock()
	if e.stopped {
		e.mu.Unlock()
		return
	}
	e.stopped = true
	e.mu.Unlock()

	e.logger.Info(`engine stopping...`)
	e.pool.Stop()
	close(e.snapshots)
	e.logger.Info(`engine stopped`)
}

func (e *Engine) Store() *StateStore {
	return e.store
}

// Topology returns the node builders records go through, in order
func (e *Engine) Topology() []node.NodeBuilder {
	return e.topologyBuilder.Builders()
}
