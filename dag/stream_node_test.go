package dag

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/kbukum/bridgekit/bridge"
	"github.com/kbukum/bridgekit/provider"
	"github.com/kbukum/bridgekit/resilience"
)

// chunkStream is a bridge-backed streaming provider that splits its
// input into words, one yield per word.
func chunkStream() provider.Stream[string, string] {
	return provider.NewBridgeStream(provider.BridgeStreamConfig[string]{
		Name: "chunker",
		NewStrategy: func() bridge.BackPressureStrategy {
			return resilience.NewWatermark(resilience.WatermarkConfig{Name: "chunker", Low: 2, High: 8})
		},
	}, func(ctx context.Context, input string, source *bridge.Source[string, error]) {
		defer source.Finish()
		for _, word := range strings.Fields(input) {
			if source.Yield(word) == bridge.Dropped {
				return
			}
		}
	})
}

func TestFromStream_DrainsBridgeBackedProvider(t *testing.T) {
	inputPort := Port[string]{Key: "text"}
	outputPort := Port[[]string]{Key: "words"}

	node := FromStream(StreamNodeConfig[string, string]{
		Name:    "chunk",
		Service: chunkStream(),
		Extract: func(state *State) (string, error) {
			return Read(state, inputPort)
		},
		Output: outputPort,
	})

	state := NewState()
	Write(state, inputPort, "one two three")

	if _, err := node.Run(context.Background(), state); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	words, err := Read(state, outputPort)
	if err != nil {
		t.Fatal(err)
	}
	if len(words) != 3 || words[0] != "one" || words[2] != "three" {
		t.Errorf("expected [one two three], got %v", words)
	}
}

func TestFromStream_LimitBoundsUnfinishedStream(t *testing.T) {
	endless := provider.NewBridgeStream(provider.BridgeStreamConfig[int]{
		Name: "counter",
		NewStrategy: func() bridge.BackPressureStrategy {
			return resilience.NewWatermark(resilience.WatermarkConfig{Name: "counter", Low: 2, High: 8})
		},
	}, func(ctx context.Context, _ struct{}, source *bridge.Source[int, error]) {
		for i := 0; ; i++ {
			if source.Yield(i) == bridge.Dropped {
				return
			}
		}
	})

	outputPort := Port[[]int]{Key: "counts"}
	node := FromStream(StreamNodeConfig[struct{}, int]{
		Name:    "count",
		Service: endless,
		Extract: func(*State) (struct{}, error) { return struct{}{}, nil },
		Output:  outputPort,
		Limit:   5,
	})

	state := NewState()
	if _, err := node.Run(context.Background(), state); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	counts, err := Read(state, outputPort)
	if err != nil {
		t.Fatal(err)
	}
	if len(counts) != 5 || counts[0] != 0 || counts[4] != 4 {
		t.Errorf("expected [0..4], got %v", counts)
	}
}

func TestFromStream_ProducerFailureFailsNode(t *testing.T) {
	failure := errors.New("source broke")
	flaky := provider.NewBridgeStream(provider.BridgeStreamConfig[string]{
		Name: "flaky",
		NewStrategy: func() bridge.BackPressureStrategy {
			return resilience.NewWatermark(resilience.DefaultWatermarkConfig("flaky"))
		},
	}, func(ctx context.Context, _ struct{}, source *bridge.Source[string, error]) {
		source.Yield("partial")
		source.FinishWithError(failure)
	})

	node := FromStream(StreamNodeConfig[struct{}, string]{
		Name:    "flaky-node",
		Service: flaky,
		Extract: func(*State) (struct{}, error) { return struct{}{}, nil },
		Output:  Port[[]string]{Key: "chunks"},
	})

	_, err := node.Run(context.Background(), NewState())
	if !errors.Is(err, failure) {
		t.Errorf("expected the producer failure out of the node, got %v", err)
	}
}

func TestFromStream_InGraphWithDownstreamNode(t *testing.T) {
	textPort := Port[string]{Key: "text"}
	wordsPort := Port[[]string]{Key: "words"}
	countPort := Port[int]{Key: "count"}

	g := &Graph{
		Nodes: map[string]Node{
			"chunk": FromStream(StreamNodeConfig[string, string]{
				Name:    "chunk",
				Service: chunkStream(),
				Extract: func(state *State) (string, error) {
					return Read(state, textPort)
				},
				Output: wordsPort,
			}),
			"count": newFuncNode("count", func(_ context.Context, state *State) (any, error) {
				words, err := Read(state, wordsPort)
				if err != nil {
					return nil, err
				}
				Write(state, countPort, len(words))
				return len(words), nil
			}),
		},
		Edges: []Edge{{From: "chunk", To: "count"}},
	}

	state := NewState()
	Write(state, textPort, "a b c d")

	engine := &Engine{}
	result, err := engine.ExecuteBatch(context.Background(), g, state)
	if err != nil {
		t.Fatal(err)
	}
	if result.NodeResults["chunk"].Status != "completed" || result.NodeResults["count"].Status != "completed" {
		t.Fatalf("expected both nodes completed, got %+v", result.NodeResults)
	}

	count, err := Read(state, countPort)
	if err != nil {
		t.Fatal(err)
	}
	if count != 4 {
		t.Errorf("expected 4 words counted downstream, got %d", count)
	}
}
