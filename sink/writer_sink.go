package sink

import (
	"context"
	"io"
	"sync"

	"github.com/pickme-go/errors"
	"github.com/pickme-go/k-join/encoding"
	"github.com/pickme-go/k-join/event"
)

// WriterSink writes each snapshot as one JSON line
type WriterSink struct {
	w       io.Writer
	encoder encoding.Encoder
	mu      sync.Mutex
}

func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{
		w:       w,
		encoder: encoding.SnapshotEncoder{},
	}
}

func (s *WriterSink) Emit(ctx context.Context, snapshot event.Snapshot) error {
	byt, err := s.encoder.Encode(snapshot)
	if err != nil {
		return errors.WithPrevious(err, `snapshot encode failed`)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.w.Write(append(byt, '\n')); err != nil {
		return errors.WithPrevious(err, `snapshot write failed`)
	}

	return nil
}

func (s *WriterSink) Close() error {
	return nil
}
