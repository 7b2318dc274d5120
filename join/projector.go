package join

import (
	"github.com/pickme-go/k-join/event"
)

// Project drops the routing key, leaving the snapshot to be emitted
func Project(key string, snapshot event.Snapshot) event.Snapshot {
	return snapshot
}
