/**
 * Copyright 2018 PickMe (Digital Mobility Solutions Lanka (PVT) Ltd).
 * All rights reserved.
 * Authors:
 *    Gayan Yapa (gayan@pickme.lk)
 */

package sink

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pickme-go/k-join/data"
	"github.com/pickme-go/k-join/producer"
	"github.com/pickme-go/log/v2"
	"github.com/pickme-go/metrics/v2"
)

// Buffer batches records for a producer. It flushes when it holds bufferSize
// records or when flushInterval has passed since the last flush. Records of a
// failed flush stay buffered and are retried with the next one.
type Buffer struct {
	records       []*data.Record
	mu            *sync.Mutex
	flushInterval time.Duration
	bufferSize    int
	producer      producer.Producer
	lastFlushed   time.Time
	logger        log.Logger
	stop          chan struct{}
	stopped       chan struct{}
	closeOnce     sync.Once
	metrics       struct {
		flushLatency metrics.Observer
	}
}

// NewBuffer creates a new Buffer object
func NewBuffer(p producer.Producer, size int, flushInterval time.Duration, logger log.Logger, reporter metrics.Reporter) *Buffer {
	flush := 1 * time.Second
	if flushInterval != 0 {
		flush = flushInterval
	}

	if size < 1 {
		size = 1
	}

	b := &Buffer{
		records:       make([]*data.Record, 0, size),
		mu:            new(sync.Mutex),
		producer:      p,
		bufferSize:    size,
		flushInterval: flush,
		lastFlushed:   time.Now(),
		logger:        logger.NewLog(log.Prefixed(`buffer`)),
		stop:          make(chan struct{}),
		stopped:       make(chan struct{}),
	}

	b.metrics.flushLatency = reporter.Observer(metrics.MetricConf{
		Path: `k_join_sink_buffer_flush_latency_microseconds`,
	})

	go b.runFlusher()

	return b
}

func (b *Buffer) Records() []*data.Record {
	b.mu.Lock()
	defer b.mu.Unlock()

	records := make([]*data.Record, len(b.records))
	copy(records, b.records)

	return records
}

// Store stores the record in Buffer
func (b *Buffer) Store(record *data.Record) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.records = append(b.records, record)

	if len(b.records) >= b.bufferSize {
		b.flush()
	}
}

func (b *Buffer) runFlusher() {
	defer close(b.stopped)

	tic := time.NewTicker(b.flushInterval)
	defer tic.Stop()

	for {
		select {
		case <-tic.C:
			b.mu.Lock()
			if len(b.records) > 0 && time.Since(b.lastFlushed) >= b.flushInterval {
				b.flush()
			}
			b.mu.Unlock()
		case <-b.stop:
			return
		}
	}
}

func (b *Buffer) flush() {
	if err := b.flushAll(); err != nil {
		b.logger.Error(fmt.Sprintf(`buffer flush failed due to %+v`, err))
		return
	}

	b.logger.Trace(`buffer flushed`)
}

func (b *Buffer) flushAll() error {
	if len(b.records) < 1 {
		return nil
	}

	begin := time.Now()
	defer func(t time.Time) {
		b.metrics.flushLatency.Observe(float64(time.Since(t).Nanoseconds()/1e3), nil)
	}(begin)

	if err := b.producer.ProduceBatch(context.Background(), b.records); err != nil {
		return err
	}

	b.reset()

	return nil
}

func (b *Buffer) reset() {
	b.records = make([]*data.Record, 0, b.bufferSize)
	b.lastFlushed = time.Now()
}

// Close stops the flusher and flushes what is left
func (b *Buffer) Close() error {
	var err error
	b.closeOnce.Do(func() {
		close(b.stop)
		<-b.stopped

		b.logger.Info(`flushing buffer...`)
		b.mu.Lock()
		defer b.mu.Unlock()
		err = b.flushAll()
	})

	return err
}
