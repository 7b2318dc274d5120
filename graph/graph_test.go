package graph

import (
	"context"
	"strings"
	"testing"

	"github.com/pickme-go/k-join/internal/node"
	"github.com/pickme-go/k-join/processors"
)

func TestGraph_Render(t *testing.T) {
	g, err := NewGraph()
	if err != nil {
		t.Fatal(err)
	}

	if err := g.Source(`file`, `events.json`, nil); err != nil {
		t.Fatal(err)
	}

	builders := []node.NodeBuilder{
		&processors.Filter{
			Id:    1,
			Label: `has_user_id`,
			FilterFunc: func(ctx context.Context, key, value interface{}) (bool, error) {
				return true, nil
			},
		},
		&processors.Transformer{
			Id:    2,
			Label: `remove_map_key`,
			TransFunc: func(ctx context.Context, key, value interface{}) (interface{}, interface{}, error) {
				return key, value, nil
			},
		},
	}

	if err := g.Render(builders, map[int32]string{1: `customers`}); err != nil {
		t.Fatal(err)
	}

	if err := g.Sink(`writer`, `stdout`, map[string]string{`format`: `json`}); err != nil {
		t.Fatal(err)
	}

	dot := g.Build()
	for _, want := range []string{`digraph root`, `filter_1`, `transformer_2`, `store_customers`, `source->filter_1`, `transformer_2->sink`} {
		if !strings.Contains(dot, want) {
			t.Errorf(`%s missing in %s`, want, dot)
		}
	}
}
