package kjoin

import (
	"context"
	"fmt"

	"github.com/pickme-go/k-join/data"
	"github.com/pickme-go/log/v2"
)

type StreamErrorType string

const (
	ErrUndecodable StreamErrorType = `undecodable`
	ErrSink        StreamErrorType = `sink`
)

// StreamError describes a record the stream could not handle. Record is nil for
// sink errors since snapshots are not tied to a single input record.
type StreamError struct {
	Type   StreamErrorType
	UserId string
	Record *data.Record
	Err    error
}

func (e *StreamError) Error() string {
	if e.Record != nil {
		return fmt.Sprintf(`%s error on %s: %s`, e.Type, e.Record, e.Err)
	}
	return fmt.Sprintf(`%s error on [%s]: %s`, e.Type, e.UserId, e.Err)
}

// ErrorHandler is called for every record the stream skips. Handlers must not
// block, the stream waits for them.
type ErrorHandler interface {
	Handle(ctx context.Context, err *StreamError)
}

type ErrorHandlerFunc func(ctx context.Context, err *StreamError)

func (f ErrorHandlerFunc) Handle(ctx context.Context, err *StreamError) {
	f(ctx, err)
}

type logErrorHandler struct {
	logger log.Logger
}

// NewLogErrorHandler logs skipped records and drops them
func NewLogErrorHandler(logger log.Logger) ErrorHandler {
	return &logErrorHandler{logger: logger.NewLog(log.Prefixed(`error-handler`))}
}

func (h *logErrorHandler) Handle(ctx context.Context, err *StreamError) {
	if err.Type == ErrUndecodable {
		h.logger.WarnContext(ctx, fmt.Sprintf(`record skipped: %s`, err))
		return
	}

	h.logger.ErrorContext(ctx, fmt.Sprintf(`snapshot skipped: %s`, err))
}
