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

type ProcessFunc func(ctx context.Context, key, value interface{}) error

// Processor runs a side effect (emitting, printing) and passes the record through unchanged
type Processor struct {
	Id          int32
	Label       string
	ProcessFunc ProcessFunc
}

func (p *Processor) Run(ctx context.Context, kIn, vIn interface{}) (interface{}, interface{}, bool, error) {
	if err := p.ProcessFunc(ctx, kIn, vIn); err != nil {
		return kIn, vIn, false, errors.WithPrevious(err, `process error`)
	}

	return kIn, vIn, true, nil
}

func (p *Processor) Build() (node.Node, error) {
	if p.ProcessFunc == nil {
		return nil, errors.New(`process function cannot be nil`)
	}

	return &Processor{
		Id:          p.Id,
		Label:       p.Label,
		ProcessFunc: p.ProcessFunc,
	}, nil
}

func (p *Processor) Name() string {
	if p.Label != `` {
		return p.Label
	}
	return `processor`
}

func (p *Processor) Type() node.Type {
	return node.TypeSink
}

func (p *Processor) ID() int32 {
	return p.Id
}
