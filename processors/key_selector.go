/**
 * Copyright 2018 PickMe (Digital Mobility Solutions Lanka (PVT) Ltd).
 * All rights reserved.
 * Authors:
 *    Gayan Yapa (gayan@pickme.lk)
 */

package processors

import (
	"context"

	"github.com/pickme-go/errors"
	"github.com/pickme-go/k-join/internal/node"
)

type SelectKeyFunc func(ctx context.Context, key, value interface{}) (kOut interface{}, err error)

type KeySelector struct {
	Id            int32
	Label         string
	SelectKeyFunc SelectKeyFunc
}

func (ks *KeySelector) Build() (node.Node, error) {
	if ks.SelectKeyFunc == nil {
		return nil, errors.New(`select key function cannot be nil`)
	}

	return &KeySelector{
		Id:            ks.Id,
		Label:         ks.Label,
		SelectKeyFunc: ks.SelectKeyFunc,
	}, nil
}

func (ks *KeySelector) ID() int32 {
	return ks.Id
}

func (ks *KeySelector) Name() string {
	if ks.Label != `` {
		return ks.Label
	}
	return `key_selector`
}

func (ks *KeySelector) Type() node.Type {
	return node.TypeKeySelector
}

func (ks *KeySelector) Run(ctx context.Context, kIn, vIn interface{}) (kOut, vOut interface{}, next bool, err error) {
	k, err := ks.SelectKeyFunc(ctx, kIn, vIn)
	if err != nil {
		return nil, nil, false, errors.WithPrevious(err, `error in select key function`)
	}

	return k, vIn, true, nil
}
