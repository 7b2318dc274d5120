package graph

import (
	"fmt"
	"sort"

	"github.com/awalterschulze/gographviz"
	"github.com/pickme-go/errors"
	"github.com/pickme-go/k-join/internal/node"
)

// Graph renders a linear join topology as a Graphviz digraph
type Graph struct {
	parent   string
	last     string
	vizGraph *gographviz.Graph
}

func NewGraph() (*Graph, error) {
	parent := `root`
	g := gographviz.NewGraph()
	if err := g.SetName(parent); err != nil {
		return nil, err
	}

	if err := g.SetDir(true); err != nil {
		return nil, err
	}

	if err := g.AddAttr(parent, `splines`, `ortho`); err != nil {
		return nil, err
	}

	if err := g.AddAttr(parent, `rankdir`, `LR`); err != nil {
		return nil, err
	}

	return &Graph{
		parent:   parent,
		vizGraph: g,
	}, nil
}

func (g *Graph) addNode(name string, attrs map[string]string) error {
	if err := g.vizGraph.AddNode(g.parent, name, attrs); err != nil {
		return errors.WithPrevious(err, fmt.Sprintf(`cannot add node %s`, name))
	}

	if g.last != `` {
		if err := g.vizGraph.AddEdge(g.last, name, true, nil); err != nil {
			return errors.WithPrevious(err, fmt.Sprintf(`cannot add edge %s -> %s`, g.last, name))
		}
	}

	g.last = name

	return nil
}

func (g *Graph) Source(typ, name string, info map[string]string) error {
	return g.addNode(`source`, map[string]string{
		`label`:     fmt.Sprintf(`"%s"`, nodeInfo(typ, name, info)),
		`color`:     `black`,
		`fillcolor`: `deepskyblue1`,
		`style`:     `filled`,
		`shape`:     `oval`,
	})
}

func (g *Graph) Sink(typ, name string, info map[string]string) error {
	return g.addNode(`sink`, map[string]string{
		`label`:     fmt.Sprintf(`"%s"`, nodeInfo(typ, name, info)),
		`color`:     `black`,
		`fillcolor`: `orange`,
		`style`:     `filled`,
		`shape`:     `oval`,
	})
}

// Store draws a state store attached to the last added node
func (g *Graph) Store(name string) error {
	id := `store_` + name
	if err := g.vizGraph.AddNode(g.parent, id, map[string]string{
		`label`:     fmt.Sprintf(`"%s"`, name),
		`shape`:     `cylinder`,
		`fillcolor`: `grey95`,
		`style`:     `filled`,
	}); err != nil {
		return err
	}

	return g.vizGraph.AddEdge(g.last, id, true, map[string]string{
		`dir`: `both`,
	})
}

func (g *Graph) Processor(b node.NodeBuilder) error {
	attrs := map[string]string{
		`fontcolor`: `grey100`,
		`fillcolor`: `slateblue4`,
		`style`:     `filled`,
		`shape`:     `square`,
	}

	switch b.Type() {
	case node.TypeFilter:
		attrs[`fontcolor`] = `black`
		attrs[`fillcolor`] = `olivedrab2`
		attrs[`shape`] = `rectangle`
		attrs[`style`] = `"rounded,filled"`
	case node.TypeStateful:
		attrs[`fillcolor`] = `brown`
	case node.TypeSink:
		attrs[`fillcolor`] = `orange`
	}

	attrs[`label`] = fmt.Sprintf(`"%s\n%s"`, b.Type(), b.Name())

	return g.addNode(fmt.Sprintf(`%s_%d`, b.Type(), b.ID()), attrs)
}

// Render draws builders in order. stores maps a node id to the name of the state
// store it owns.
func (g *Graph) Render(builders []node.NodeBuilder, stores map[int32]string) error {
	for _, b := range builders {
		if err := g.Processor(b); err != nil {
			return err
		}

		if store, ok := stores[b.ID()]; ok {
			if err := g.Store(store); err != nil {
				return errors.WithPrevious(err, `cannot draw store`)
			}
		}
	}

	return nil
}

func (g *Graph) Build() string {
	return g.vizGraph.String()
}

func nodeInfo(typ string, name string, info map[string]string) string {
	str := fmt.Sprintf(`type:%s\nname:%s\n`, typ, name)

	keys := make([]string, 0, len(info))
	for k := range info {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		str += fmt.Sprintf(`%s:%s\n`, k, info[k])
	}

	return str
}
