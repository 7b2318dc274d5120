/**
 * Copyright 2018 PickMe (Digital Mobility Solutions Lanka (PVT) Ltd).
 * All rights reserved.
 * Authors:
 *    Gayan Yapa (gayan@pickme.lk)
 */

package kjoin

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/pickme-go/errors"
	kContext "github.com/pickme-go/k-join/context"
	"github.com/pickme-go/k-join/data"
	"github.com/pickme-go/k-join/encoding"
	"github.com/pickme-go/k-join/event"
	"github.com/pickme-go/k-join/join"
	"github.com/pickme-go/k-join/sink"
	"github.com/pickme-go/k-join/source"
	"github.com/pickme-go/k-join/store"
	"github.com/pickme-go/log/v2"
	"github.com/pickme-go/metrics/v2"
)

// JoinStream pumps records from the source through the join engine and writes
// every snapshot to the sink
type JoinStream struct {
	engine       *join.Engine
	source       source.Source
	sink         sink.Sink
	decoder      encoding.Encoder
	router       *mux.Router
	httpHost     string
	topology     string
	logger       log.Logger
	errorHandler ErrorHandler
	cancel       context.CancelFunc
	done         chan struct{}
	mu           sync.Mutex
	metrics      struct {
		undecodable metrics.Counter
		sinkErrors  metrics.Counter
	}
}

func newJoinStream(b *JoinBuilder, engine *join.Engine, src source.Source, snk sink.Sink, topology string) *JoinStream {
	s := &JoinStream{
		engine:       engine,
		source:       src,
		sink:         snk,
		decoder:      encoding.RecordEncoder{},
		router:       mux.NewRouter(),
		httpHost:     b.config.Store.Http.Host,
		topology:     topology,
		logger:       b.config.Logger.NewLog(log.Prefixed(`join-stream`)),
		errorHandler: b.config.ErrorHandler,
		done:         make(chan struct{}),
	}

	if s.errorHandler == nil {
		s.errorHandler = NewLogErrorHandler(b.config.Logger)
	}

	s.metrics.undecodable = b.metricsReporter.Counter(metrics.MetricConf{
		Path: `k_join_stream_undecodable_records`,
	})
	s.metrics.sinkErrors = b.metricsReporter.Counter(metrics.MetricConf{
		Path: `k_join_stream_sink_errors`,
	})

	store.MakeEndpoints(s.router, b.storeRegistry, s.logger)
	s.router.HandleFunc(`/topology`, s.topologyHandler).Methods(http.MethodGet)

	return s
}

// Router exposes the query routes so callers can mount more handlers before Start
func (s *JoinStream) Router() *mux.Router {
	return s.router
}

func (s *JoinStream) Engine() *join.Engine {
	return s.engine
}

func (s *JoinStream) topologyHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set(`Content-Type`, `text/vnd.graphviz`)
	if _, err := w.Write([]byte(s.topology)); err != nil {
		s.logger.Error(err)
	}
}

// Start runs the stream until the source is exhausted or Stop is called. It
// returns once every accepted record has been written to the sink.
func (s *JoinStream) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	s.cancel = cancel
	s.mu.Unlock()

	defer close(s.done)
	defer cancel()

	records, err := s.source.Records(ctx)
	if err != nil {
		s.engine.Stop()
		return errors.WithPrevious(err, `cannot start source`)
	}

	server := s.startHttp()

	go s.pump(ctx, records)

	// snapshots is closed by the engine once the pump stopped it and the
	// workers drained
	for snapshot := range s.engine.Snapshots() {
		s.emit(ctx, snapshot)
	}

	s.logger.Info(`stream drained, closing...`)

	if err := s.sink.Close(); err != nil {
		s.logger.Error(fmt.Sprintf(`sink close failed due to %+v`, err))
	}

	if err := s.source.Close(); err != nil {
		s.logger.Error(fmt.Sprintf(`source close failed due to %+v`, err))
	}

	if server != nil {
		shutdownCtx, c := context.WithTimeout(context.Background(), 5*time.Second)
		defer c()
		if err := server.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(fmt.Sprintf(`http server shutdown failed due to %+v`, err))
		}
	}

	s.logger.Info(`k-join shutdown completed`)

	return nil
}

func (s *JoinStream) pump(ctx context.Context, records <-chan *data.Record) {
	defer s.engine.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case raw, ok := <-records:
			if !ok {
				return
			}

			rCtx := kContext.FromRecord(ctx, raw)
			record, err := s.decode(raw)
			if err != nil {
				s.metrics.undecodable.Count(1, nil)
				s.errorHandler.Handle(rCtx, &StreamError{Type: ErrUndecodable, Record: raw, Err: err})
				continue
			}

			if err := s.engine.Submit(rCtx, record); err != nil {
				s.logger.ErrorContext(rCtx, err)
				return
			}
		}
	}
}

func (s *JoinStream) decode(raw *data.Record) (event.Record, error) {
	v, err := s.decoder.Decode(raw.Value)
	if err != nil {
		return nil, err
	}

	record, ok := v.(event.Record)
	if !ok {
		return nil, errors.New(fmt.Sprintf(`invalid record type [%T]`, v))
	}

	return record, nil
}

// emit writes a snapshot to the sink. Sink failures are logged and the snapshot
// skipped so a single bad write cannot stall the stream.
func (s *JoinStream) emit(ctx context.Context, snapshot event.Snapshot) {
	if err := s.sink.Emit(ctx, snapshot); err != nil {
		s.metrics.sinkErrors.Count(1, nil)
		s.errorHandler.Handle(ctx, &StreamError{Type: ErrSink, UserId: snapshot.UserId, Err: err})
	}
}

func (s *JoinStream) startHttp() *http.Server {
	if s.httpHost == `` {
		return nil
	}

	server := &http.Server{
		Addr:    s.httpHost,
		Handler: handlers.CORS()(s.router),
	}

	go func() {
		s.logger.Info(fmt.Sprintf(`http server started on %s`, s.httpHost))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error(fmt.Sprintf(`http server stopped due to %+v`, err))
		}
	}()

	return server
}

// Stop cancels the stream and waits until Start returns
func (s *JoinStream) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()

	if cancel == nil {
		return
	}

	cancel()
	<-s.done
}
