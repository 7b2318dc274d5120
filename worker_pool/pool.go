/**
 * Copyright 2018 PickMe (Digital Mobility Solutions Lanka (PVT) Ltd).
 * All rights reserved.
 * Authors:
 *    Gayan Yapa (gayan@pickme.lk)
 */

package worker_pool

import (
	"context"
	"fmt"
	"hash"
	"hash/fnv"
	"math/rand"
	"sync"
	"time"

	"github.com/pickme-go/errors"
	"github.com/pickme-go/k-join/internal/node"
	"github.com/pickme-go/log/v2"
	"github.com/pickme-go/metrics/v2"
)

type ExecutionOrder int

const (
	OrderRandom ExecutionOrder = iota
	OrderByKey
)

func (eo ExecutionOrder) String() string {
	o := `OrderRandom`

	if eo == OrderByKey {
		o = `OrderByKey`
	}

	return o
}

type task struct {
	ctx     context.Context
	key     []byte
	val     interface{}
	doneClb func()
}

type PoolConfig struct {
	NumOfWorkers     int
	WorkerBufferSize int
	Order            ExecutionOrder
}

func NewPoolConfig() *PoolConfig {
	return &PoolConfig{
		NumOfWorkers:     10,
		WorkerBufferSize: 10,
		Order:            OrderByKey,
	}
}

func (c *PoolConfig) Validate() error {
	if c.NumOfWorkers < 1 {
		return errors.New(`[NumOfWorkers] should be greater than zero`)
	}

	if c.WorkerBufferSize < 0 {
		return errors.New(`[WorkerBufferSize] cannot be negative`)
	}

	return nil
}

// Pool runs records through a topology on a fixed set of workers. With OrderByKey
// every record carrying the same key is executed by the same worker, one at a time,
// in the order Run was called.
type Pool struct {
	id      string
	size    int64
	workers []*worker
	logger  log.Logger
	order   ExecutionOrder
	hasher  hash.Hash32
	mu      sync.Mutex
	wg      sync.WaitGroup
	stopped bool
}

func NewPool(id string, tb *node.TopologyBuilder, metricsReporter metrics.Reporter, logger log.Logger, config *PoolConfig) (*Pool, error) {
	if err := config.Validate(); err != nil {
		return nil, errors.WithPrevious(err, `invalid pool config`)
	}

	p := &Pool{
		id:      id,
		size:    int64(config.NumOfWorkers),
		order:   config.Order,
		logger:  logger.NewLog(log.Prefixed(fmt.Sprintf(`worker-pool-%s`, id))),
		workers: make([]*worker, config.NumOfWorkers),
		hasher:  fnv.New32a(),
	}

	bufferUsage := metricsReporter.Counter(metrics.MetricConf{
		Path:   `k_join_worker_pool_buffer_usage`,
		Labels: []string{`pool_id`},
	})

	for i := int64(config.NumOfWorkers) - 1; i >= 0; i-- {
		topology, err := tb.Build()
		if err != nil {
			return nil, errors.WithPrevious(err, `cannot build worker topology`)
		}

		p.workers[i] = &worker{
			topology:    topology,
			pool:        p,
			tasks:       make(chan task, config.WorkerBufferSize),
			bufferUsage: bufferUsage,
			logger:      p.logger,
			stop:        make(chan struct{}),
		}
	}

	p.wg.Add(len(p.workers))
	for _, w := range p.workers {
		go w.start()
	}

	return p, nil
}

// Run queues the record on its worker, blocking while the worker buffer is full.
// doneClb is called after the topology finished with the record.
func (p *Pool) Run(ctx context.Context, key []byte, val interface{}, doneClb func()) {
	p.worker(key).tasks <- task{
		key:     key,
		ctx:     ctx,
		val:     val,
		doneClb: doneClb,
	}
}

// Stop waits for every queued task to finish and stops the workers.
// Run must not be called after Stop.
func (p *Pool) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	p.mu.Unlock()

	for _, w := range p.workers {
		close(w.tasks)
	}

	p.wg.Wait()
	p.logger.Info(`pool stopped`)
}

// WorkerIndex returns the worker a key is routed to with OrderByKey
func (p *Pool) WorkerIndex(key []byte) int {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.hasher.Reset()
	_, _ = p.hasher.Write(key)

	return int(int64(p.hasher.Sum32()) % p.size)
}

func (p *Pool) worker(key []byte) *worker {
	if p.order == OrderRandom && p.size > 1 {
		return p.workers[rand.Int63n(p.size)]
	}

	return p.workers[p.WorkerIndex(key)]
}

type worker struct {
	topology    node.Topology
	tasks       chan task
	pool        *Pool
	logger      log.Logger
	bufferUsage metrics.Counter
	stop        chan struct{}
}

func (w *worker) start() {
	defer w.pool.wg.Done()

	ticker := time.NewTicker(1 * time.Second)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if cap(w.tasks) > 0 {
					w.bufferUsage.Count((float64(len(w.tasks))/float64(cap(w.tasks)))*100, map[string]string{`pool_id`: w.pool.id})
				}
			case <-w.stop:
				return
			}
		}
	}()

	for task := range w.tasks {
		_, _, _, err := w.topology.Run(task.ctx, task.key, task.val)
		if err != nil {
			w.logger.ErrorContext(task.ctx, err)
		}

		if task.doneClb != nil {
			task.doneClb()
		}
	}

	close(w.stop)
}
