/**
 * Copyright 2018 PickMe (Digital Mobility Solutions Lanka (PVT) Ltd).
 * All rights reserved.
 * Authors:
 *    Gayan Yapa (gayan@pickme.lk)
 */

package store

import (
	"context"
)

type KeyValue struct {
	Key   string      `json:"key"`
	Value interface{} `json:"value"`
}

// ReadOnlyStore is the query side of a state store
type ReadOnlyStore interface {
	Name() string
	Read(ctx context.Context, key string) (value interface{}, found bool, err error)
	ReadAll(ctx context.Context) ([]KeyValue, error)
}
