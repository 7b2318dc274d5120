package source

import (
	"context"

	"github.com/pickme-go/k-join/data"
)

// Source produces raw input records. The channel is closed when the source is
// exhausted or ctx is done.
type Source interface {
	Records(ctx context.Context) (<-chan *data.Record, error)
	Close() error
}
