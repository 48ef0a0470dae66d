package dag

import (
	"context"

	"github.com/kbukum/bridgekit/provider"
)

// StreamNodeConfig configures a node that drains a streaming provider.
type StreamNodeConfig[I, O any] struct {
	// Name is the unique node identifier in the graph.
	Name string
	// Service is the streaming provider to open and drain.
	Service provider.Stream[I, O]
	// Extract reads the open request from state.
	Extract func(state *State) (I, error)
	// Output is the port where the drained elements are written.
	Output Port[[]O]
	// Limit bounds how many elements are drained. 0 means drain until
	// the stream ends — with a bridge-backed producer that never
	// finishes, set a limit or the node never completes.
	Limit int
}

// FromStream bridges a provider.Stream[I,O] into a DAG Node: the node
// opens the stream, drains its single iterator (honoring Limit), and
// writes the collected elements to the output port. A bridge-backed
// producer (see provider.NewBridgeStream) thereby becomes one stage of
// a graph, back-pressured while downstream nodes wait on its level.
func FromStream[I, O any](cfg StreamNodeConfig[I, O]) Node {
	return &streamNode[I, O]{cfg: cfg}
}

type streamNode[I, O any] struct {
	cfg StreamNodeConfig[I, O]
}

func (n *streamNode[I, O]) Name() string { return n.cfg.Name }

func (n *streamNode[I, O]) Run(ctx context.Context, state *State) (any, error) {
	input, err := n.cfg.Extract(state)
	if err != nil {
		return nil, err
	}

	it, err := n.cfg.Service.Execute(ctx, input)
	if err != nil {
		return nil, err
	}
	defer it.Close()

	var elements []O
	for n.cfg.Limit <= 0 || len(elements) < n.cfg.Limit {
		v, ok, err := it.Next(ctx)
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		elements = append(elements, v)
	}

	Write(state, n.cfg.Output, elements)
	return elements, nil
}
