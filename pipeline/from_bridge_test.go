package pipeline

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"github.com/kbukum/bridgekit/bridge"
	"github.com/kbukum/bridgekit/resilience"
)

func testWatermark() *resilience.Watermark {
	return resilience.NewWatermark(resilience.WatermarkConfig{Name: "test", Low: 4, High: 16})
}

func TestFromBridge_CollectsYieldedElements(t *testing.T) {
	source, p := NewBridge[int](testWatermark(), nil)

	go func() {
		source.YieldAll([]int{1, 2, 3})
		source.Finish()
	}()

	got, err := Collect(context.Background(), p)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 || got[0] != 1 || got[2] != 3 {
		t.Errorf("got %v, want [1 2 3]", got)
	}
}

func TestFromBridge_OperatorsStack(t *testing.T) {
	source, p := NewBridge[int](testWatermark(), nil)

	go func() {
		for i := 1; i <= 6; i++ {
			source.Yield(i)
		}
		source.Finish()
	}()

	evens := Filter(p, func(n int) bool { return n%2 == 0 })
	labels := Map(evens, func(_ context.Context, n int) (string, error) {
		return strconv.Itoa(n), nil
	})

	got, err := Collect(context.Background(), labels)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 || got[0] != "2" || got[2] != "6" {
		t.Errorf("got %v, want [2 4 6]", got)
	}
}

func TestFromBridge_FailurePropagatesThroughDrain(t *testing.T) {
	source, p := NewBridge[int](testWatermark(), nil)
	failure := errors.New("producer failed")

	go func() {
		source.Yield(1)
		source.FinishWithError(failure)
	}()

	var seen []int
	err := Drain(p, func(_ context.Context, n int) error {
		seen = append(seen, n)
		return nil
	}).Run(context.Background())

	if !errors.Is(err, failure) {
		t.Errorf("expected producer failure out of the pipeline, got %v", err)
	}
	if len(seen) != 1 || seen[0] != 1 {
		t.Errorf("buffered elements must drain before the failure, saw %v", seen)
	}
}

func TestFromBridge_BufferDecouplesProducer(t *testing.T) {
	source, p := NewBridge[int](testWatermark(), nil)

	go func() {
		for i := 0; i < 20; i++ {
			source.Yield(i)
		}
		source.Finish()
	}()

	got, err := Collect(context.Background(), Buffer(p, 4))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 20 {
		t.Fatalf("expected 20 elements through the buffer stage, got %d", len(got))
	}
	for i, v := range got {
		if v != i {
			t.Fatalf("order violated at %d: got %d", i, v)
		}
	}
}

func TestFromBridge_TakeBoundsALiveStream(t *testing.T) {
	source, p := NewBridge[int](testWatermark(), nil)

	// The producer never finishes; Take stops after three elements and
	// Collect closes it, which closes the bridge iterator, terminates the
	// bridge and drops later yields.
	go func() {
		for i := 0; ; i++ {
			if source.Yield(i) == bridge.Dropped {
				return
			}
		}
	}()

	got, err := Collect(context.Background(), Take(p, 3))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 || got[0] != 0 || got[2] != 2 {
		t.Errorf("expected [0 1 2], got %v", got)
	}
}
