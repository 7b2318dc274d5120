package context

import (
	"context"
	"time"

	"github.com/pickme-go/k-join/data"
	"github.com/pickme-go/traceable-context"
)

var recordMeta = `rc_meta`

// RecordMeta describes where a record came from
type RecordMeta struct {
	Topic     string
	Partition int32
	Offset    int64
	Timestamp time.Time
}

// FromRecord attaches the record origin to the parent context
func FromRecord(parent context.Context, record *data.Record) context.Context {
	return traceable_context.WithValue(parent, &recordMeta, &RecordMeta{
		Topic:     record.Topic,
		Offset:    record.Offset,
		Partition: record.Partition,
		Timestamp: record.Timestamp,
	})
}

// Meta returns the record origin, or nil when the context was not created by FromRecord
func Meta(ctx context.Context) *RecordMeta {
	if ctx == nil {
		return nil
	}

	if meta, ok := ctx.Value(&recordMeta).(*RecordMeta); ok {
		return meta
	}

	return nil
}
