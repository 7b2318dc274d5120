package processors

import (
	"context"

	"github.com/pickme-go/errors"
	"github.com/pickme-go/k-join/internal/node"
)

type TransFunc func(ctx context.Context, key, value interface{}) (kOut, vOut interface{}, err error)

type Transformer struct {
	Id        int32
	Label     string
	TransFunc TransFunc
}

func (t *Transformer) Build() (node.Node, error) {
	if t.TransFunc == nil {
		return nil, errors.New(`transform function cannot be nil`)
	}

	return &Transformer{
		Id:        t.Id,
		Label:     t.Label,
		TransFunc: t.TransFunc,
	}, nil
}

func (t *Transformer) ID() int32 {
	return t.Id
}

func (t *Transformer) Name() string {
	if t.Label != `` {
		return t.Label
	}
	return `transformer`
}

func (t *Transformer) Type() node.Type {
	return node.TypeTransformer
}

func (t *Transformer) Run(ctx context.Context, kIn, vIn interface{}) (kOut, vOut interface{}, next bool, err error) {
	k, v, err := t.TransFunc(ctx, kIn, vIn)
	if err != nil {
		return nil, nil, false, errors.WithPrevious(err, `transformer error`)
	}

	return k, v, true, nil
}
