package sink

import (
	"context"

	"github.com/pickme-go/k-join/event"
)

// Sink receives joined snapshots in emission order. Implementations must be safe
// for concurrent use.
type Sink interface {
	Emit(ctx context.Context, snapshot event.Snapshot) error
	Close() error
}
