package node

import (
	"context"

	"github.com/pickme-go/errors"
)

type Type string

const TypeFilter Type = `filter`
const TypeKeySelector Type = `key_selector`
const TypeTransformer Type = `transformer`
const TypeStateful Type = `stateful_mapper`
const TypeSink Type = `sink`

// Node is a single processing step. A node returning next == false stops the
// record from reaching the following nodes.
type Node interface {
	ID() int32
	Type() Type
	Name() string
	Run(ctx context.Context, kIn, vIn interface{}) (kOut, vOut interface{}, next bool, err error)
}

// NodeBuilder creates a Node instance. Every worker builds its own topology so
// builders must not share per record state between the nodes they create.
type NodeBuilder interface {
	ID() int32
	Type() Type
	Name() string
	Build() (Node, error)
}

type TopologyBuilder struct {
	builders []NodeBuilder
}

func (tb *TopologyBuilder) Add(builder NodeBuilder) *TopologyBuilder {
	tb.builders = append(tb.builders, builder)
	return tb
}

func (tb *TopologyBuilder) Builders() []NodeBuilder {
	return tb.builders
}

func (tb *TopologyBuilder) Build() (Topology, error) {
	topology := Topology{}

	if len(tb.builders) < 1 {
		return topology, errors.New(`topology cannot be empty`)
	}

	for _, builder := range tb.builders {
		n, err := builder.Build()
		if err != nil {
			return topology, errors.WithPrevious(err, `node build failed`)
		}
		topology.nodes = append(topology.nodes, n)
	}

	return topology, nil
}

type Topology struct {
	nodes []Node
}

func (t Topology) Nodes() []Node {
	return t.nodes
}

// Run passes the record through each node in order and returns the output of the
// last node which ran.
func (t Topology) Run(ctx context.Context, kIn, vIn interface{}) (kOut, vOut interface{}, next bool, err error) {
	kOut, vOut = kIn, vIn
	for _, n := range t.nodes {
		kOut, vOut, next, err = n.Run(ctx, kOut, vOut)
		if err != nil {
			return nil, nil, false, err
		}

		if !next {
			return kOut, vOut, false, nil
		}
	}

	return kOut, vOut, true, nil
}
