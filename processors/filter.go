package processors

import (
	"context"

	"github.com/pickme-go/errors"
	"github.com/pickme-go/k-join/internal/node"
)

type FilterFunc func(ctx context.Context, key, value interface{}) (bool, error)

type Filter struct {
	Id         int32
	Label      string
	FilterFunc FilterFunc
}

func (f *Filter) Build() (node.Node, error) {
	if f.FilterFunc == nil {
		return nil, errors.New(`filter function cannot be nil`)
	}

	return &Filter{
		Id:         f.Id,
		Label:      f.Label,
		FilterFunc: f.FilterFunc,
	}, nil
}

func (f *Filter) Name() string {
	if f.Label != `` {
		return f.Label
	}
	return `filter`
}

func (f *Filter) Type() node.Type {
	return node.TypeFilter
}

func (f *Filter) ID() int32 {
	return f.Id
}

func (f *Filter) Run(ctx context.Context, kIn, vIn interface{}) (kOut, vOut interface{}, next bool, err error) {
	ok, err := f.FilterFunc(ctx, kIn, vIn)
	if err != nil {
		return nil, nil, false, errors.WithPrevious(err, `filter error`)
	}

	return kIn, vIn, ok, nil
}
