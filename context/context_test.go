package context

import (
	"context"
	"testing"
	"time"

	"github.com/pickme-go/k-join/data"
)

func TestFromRecord(t *testing.T) {
	ts := time.Now()
	ctx := FromRecord(context.Background(), &data.Record{
		Topic:     `events`,
		Partition: 2,
		Offset:    42,
		Timestamp: ts,
	})

	meta := Meta(ctx)
	if meta == nil {
		t.Fatal(`meta not available`)
	}

	if meta.Topic != `events` || meta.Partition != 2 || meta.Offset != 42 || !meta.Timestamp.Equal(ts) {
		t.Errorf(`unexpected meta %+v`, meta)
	}
}

func TestMeta_Missing(t *testing.T) {
	if Meta(context.Background()) != nil {
		t.Error(`expected nil meta`)
	}
}
