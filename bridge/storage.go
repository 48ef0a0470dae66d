package bridge

import "sync"

// storage is the single lock-guarded object a Source and a Stream share.
// Every public operation funnels through it: acquire the lock, run the
// matching transition from machine.go, release the lock, then perform the
// returned action's side effects outside the lock: resume the waiter
// first, then invoke the delegate callback.
type storage[T any, F error] struct {
	mu       sync.Mutex
	state    state[T, F]
	delegate Delegate
}

func newStorage[T any, F error](strategy BackPressureStrategy, delegate Delegate) *storage[T, F] {
	return &storage[T, F]{
		state:    state[T, F]{kind: stateInitial, strategy: strategy},
		delegate: delegate,
	}
}

func (s *storage[T, F]) yield(elements []T) YieldResult {
	s.mu.Lock()
	next, act, res := yieldTransition(s.state, elements)
	s.state = next
	delegate := s.captureDelegateLocked(act)
	s.mu.Unlock()

	s.perform(act, delegate)
	return res
}

func (s *storage[T, F]) finish(failure F, hasFailure bool) {
	s.mu.Lock()
	next, act := finishTransition(s.state, failure, hasFailure)
	s.state = next
	delegate := s.captureDelegateLocked(act)
	s.mu.Unlock()

	s.perform(act, delegate)
}

// next runs step A and, when step A decides to suspend, step B under one
// continuous hold of the lock. Holding the lock across both steps is what
// makes step B's precondition airtight: no yield or finish can slip in
// between deciding to park and actually parking w.
func (s *storage[T, F]) next(w waiter[T, F]) nextOutcome[T, F] {
	s.mu.Lock()
	next, act, outcome := nextStepATransition(s.state)
	s.state = next
	if outcome.suspend {
		next, act = nextStepBTransition(s.state, w)
		s.state = next
	}
	delegate := s.captureDelegateLocked(act)
	s.mu.Unlock()

	s.perform(act, delegate)
	return outcome
}

func (s *storage[T, F]) cancel() {
	s.mu.Lock()
	next, act := cancelTransition(s.state)
	s.state = next
	delegate := s.captureDelegateLocked(act)
	s.mu.Unlock()

	s.perform(act, delegate)
}

func (s *storage[T, F]) sequenceDeinitialized() {
	s.mu.Lock()
	next, act := sequenceDeinitTransition(s.state)
	s.state = next
	delegate := s.captureDelegateLocked(act)
	s.mu.Unlock()

	s.perform(act, delegate)
}

func (s *storage[T, F]) iteratorInitialized() {
	s.mu.Lock()
	next, act := iteratorInitTransition(s.state)
	s.state = next
	delegate := s.captureDelegateLocked(act)
	s.mu.Unlock()

	s.perform(act, delegate)
}

func (s *storage[T, F]) iteratorDeinitialized() {
	s.mu.Lock()
	next, act := iteratorDeinitTransition(s.state)
	s.state = next
	delegate := s.captureDelegateLocked(act)
	s.mu.Unlock()

	s.perform(act, delegate)
}

// captureDelegateLocked reads the delegate reference while the lock is
// held and clears it from storage the instant a transition commits to
// Finished, so no callback can fire after termination and the callback
// itself never runs under the lock.
func (s *storage[T, F]) captureDelegateLocked(act action[T, F]) Delegate {
	delegate := s.delegate
	if act.didTerminate {
		s.delegate = nil
	}
	return delegate
}

// perform runs an action's side effects. Must only be called after the
// lock has been released.
func (s *storage[T, F]) perform(act action[T, F], delegate Delegate) {
	if act.resumeWaiter != nil {
		act.resumeWaiter <- act.resumeWith
	}
	if delegate == nil {
		return
	}
	if act.produceMore {
		delegate.ProduceMore()
	}
	if act.didTerminate {
		delegate.DidTerminate()
	}
}
