package bridge

import "sync"

// alwaysStrategy always returns the configured verdict, regardless of
// depth. Used for scenarios where back-pressure is not under test.
type alwaysStrategy struct {
	produce bool
}

func (s alwaysStrategy) OnYield(int) bool   { return s.produce }
func (s alwaysStrategy) OnConsume(int) bool { return s.produce }

// watermarkStrategy returns true while depth is below high, false at or
// above it.
type watermarkStrategy struct {
	high int
}

func (s watermarkStrategy) OnYield(depth int) bool   { return depth < s.high }
func (s watermarkStrategy) OnConsume(depth int) bool { return depth < s.high }

// spyDelegate records every ProduceMore/DidTerminate invocation so tests
// can assert on ordering and cardinality.
type spyDelegate struct {
	mu             sync.Mutex
	produceMoreN   int
	didTerminateN  int
	terminatedChan chan struct{}
}

func newSpyDelegate() *spyDelegate {
	return &spyDelegate{terminatedChan: make(chan struct{}, 1)}
}

func (d *spyDelegate) ProduceMore() {
	d.mu.Lock()
	d.produceMoreN++
	d.mu.Unlock()
}

func (d *spyDelegate) DidTerminate() {
	d.mu.Lock()
	d.didTerminateN++
	d.mu.Unlock()
	select {
	case d.terminatedChan <- struct{}{}:
	default:
	}
}

func (d *spyDelegate) counts() (produceMore, didTerminate int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.produceMoreN, d.didTerminateN
}

// recordingStrategy captures the depth of every OnYield/OnConsume call and
// always reports demand.
type recordingStrategy struct {
	mu       sync.Mutex
	yields   []int
	consumes []int
}

func (s *recordingStrategy) OnYield(depth int) bool {
	s.mu.Lock()
	s.yields = append(s.yields, depth)
	s.mu.Unlock()
	return true
}

func (s *recordingStrategy) OnConsume(depth int) bool {
	s.mu.Lock()
	s.consumes = append(s.consumes, depth)
	s.mu.Unlock()
	return true
}

func (s *recordingStrategy) calls() (yields, consumes []int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int(nil), s.yields...), append([]int(nil), s.consumes...)
}

func intsEqual(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
