/**
 * Copyright 2018 PickMe (Digital Mobility Solutions Lanka (PVT) Ltd).
 * All rights reserved.
 * Authors:
 *    Gayan Yapa (gayan@pickme.lk)
 */

package encoding

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/pickme-go/errors"
	"github.com/pickme-go/k-join/event"
)

// RecordEncoder decodes JSON objects into event.Record values. Numbers are kept as
// json.Number so order payloads are re-emitted without precision loss.
type RecordEncoder struct{}

func (RecordEncoder) Encode(v interface{}) ([]byte, error) {
	switch r := v.(type) {
	case event.Record:
		return json.Marshal(r)
	case map[string]interface{}:
		return json.Marshal(r)
	default:
		return nil, errors.New(fmt.Sprintf(`invalid type [%T], expected event.Record`, v))
	}
}

func (RecordEncoder) Decode(data []byte) (interface{}, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	record := event.Record{}
	if err := dec.Decode(&record); err != nil {
		return nil, errors.WithPrevious(err, `record decode error`)
	}

	return record, nil
}

// SnapshotEncoder encodes joined snapshots
type SnapshotEncoder struct{}

func (SnapshotEncoder) Encode(v interface{}) ([]byte, error) {
	var s event.Snapshot
	switch snapshot := v.(type) {
	case event.Snapshot:
		s = snapshot
	case *event.Snapshot:
		s = *snapshot
	default:
		return nil, errors.New(fmt.Sprintf(`invalid type [%T], expected event.Snapshot`, v))
	}

	if s.Orders == nil {
		s.Orders = []event.Record{}
	}

	return json.Marshal(s)
}

func (SnapshotEncoder) Decode(data []byte) (interface{}, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	s := event.Snapshot{}
	if err := dec.Decode(&s); err != nil {
		return nil, errors.WithPrevious(err, `snapshot decode error`)
	}

	return s, nil
}
