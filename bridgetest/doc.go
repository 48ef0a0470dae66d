// Package bridgetest provides testing infrastructure for bridgekit
// components and bridge-backed streams.
//
// The bridgetest package extends bridgekit's component lifecycle pattern with
// testing-specific capabilities, enabling easy setup, teardown, and state
// management for test components.
//
// # Quick Start
//
// Basic usage with automatic cleanup:
//
//	func TestMyFeature(t *testing.T) {
//	    bridgetest.T(t).Setup(myComponent)
//	    // Component is automatically cleaned up when test ends
//	}
//
// Manual cleanup:
//
//	cleanup, err := bridgetest.Setup(myComponent)
//	if err != nil {
//	    t.Fatal(err)
//	}
//	defer cleanup()
//
// Managing multiple components:
//
//	manager := bridgetest.NewManager(ctx)
//	manager.Add(sourceComponent)
//	manager.Add(recorderComponent)
//	manager.StartAll()
//	defer manager.Cleanup()
//
// # Architecture
//
// The TestComponent interface extends component.Component with three
// testing-specific methods:
//
//   - Reset(ctx): Restore component to initial state
//   - Snapshot(ctx): Capture current state
//   - Restore(ctx, snapshot): Restore to a captured state
//
// This hybrid approach provides consistency with production code while
// adding testing capabilities needed for test isolation and state management.
//
// # Stream assertions
//
// StreamRecorder drains one bridge stream onto a recorded slice, so tests
// can yield from the producer side and assert on what the consumer saw:
//
//	source, stream := bridge.New[int, error](strategy, nil)
//	recorder := bridgetest.NewStreamRecorder("recorder", stream)
//	bridgetest.T(t).Setup(recorder)
//	source.YieldAll([]int{1, 2, 3})
//
// # Thread Safety
//
// All Manager operations are thread-safe. Individual TestComponent
// implementations should ensure thread-safety if used in concurrent tests.
//
package bridgetest
