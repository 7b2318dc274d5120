package node

import (
	"context"
)

type mockNode struct {
	id int32
	fn func(ctx context.Context, kIn, vIn interface{}) (kOut, vOut interface{}, next bool, err error)
}

func (n *mockNode) ID() int32 {
	return n.id
}

func (n *mockNode) Type() Type {
	return Type(`mock`)
}

func (n *mockNode) Name() string {
	return `mock`
}

func (n *mockNode) Run(ctx context.Context, kIn, vIn interface{}) (kOut, vOut interface{}, next bool, err error) {
	return n.fn(ctx, kIn, vIn)
}

func (n *mockNode) Build() (Node, error) {
	return &mockNode{id: n.id, fn: n.fn}, nil
}

func newMockBuilder(id int32, fn func(ctx context.Context, kIn, vIn interface{}) (kOut, vOut interface{}, next bool, err error)) NodeBuilder {
	return &mockNode{id: id, fn: fn}
}
