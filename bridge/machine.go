package bridge

// The functions in this file are the state machine: pure, non-blocking,
// non-I/O transition functions of the form (state, event) -> (state',
// action). None of them lock, call out, or allocate beyond the buffer
// append path. Each corresponds to one external event (yield, finish,
// next, cancellation, handle teardown); together they are the only place
// the bridge's behavior is decided.

// yieldTransition handles a producer depositing elements.
func yieldTransition[T any, F error](s state[T, F], elements []T) (state[T, F], action[T, F], YieldResult) {
	switch s.kind {
	case stateInitial:
		s.kind = stateStreaming
		s.buffer = append(s.buffer, elements...)
		produce := s.strategy.OnYield(len(s.buffer))
		s.outstandingDemand = produce
		return s, action[T, F]{}, yieldResultFor(produce)

	case stateStreaming:
		if s.waiter == nil || len(elements) == 0 {
			s.buffer = append(s.buffer, elements...)
			produce := s.strategy.OnYield(len(s.buffer))
			s.outstandingDemand = produce
			return s, action[T, F]{}, yieldResultFor(produce)
		}

		// A parked waiter implies an empty buffer, so the new elements
		// become the buffer outright; its head resumes the waiter.
		head, rest := elements[0], elements[1:]
		w := s.waiter
		s.waiter = nil
		s.buffer = append(s.buffer, rest...)
		produce := s.strategy.OnYield(len(s.buffer))
		s.outstandingDemand = produce
		act := action[T, F]{resumeWaiter: w, resumeWith: elementResult[T, F](head)}
		return s, act, yieldResultFor(produce)

	case stateSourceFinished, stateFinished:
		return s, action[T, F]{}, Dropped

	default:
		panic("bridge: unreachable state in yield")
	}
}

// finishTransition handles the producer signalling end-of-stream, with or
// without a failure. Idempotent: SourceFinished/Finished ignore it.
func finishTransition[T any, F error](s state[T, F], failure F, hasFailure bool) (state[T, F], action[T, F]) {
	switch s.kind {
	case stateInitial:
		s.kind = stateSourceFinished
		s.failure, s.hasFailure = failure, hasFailure
		return s, action[T, F]{}

	case stateStreaming:
		if s.waiter == nil {
			s.kind = stateSourceFinished
			s.failure, s.hasFailure = failure, hasFailure
			return s, action[T, F]{}
		}

		// A parked waiter implies an empty buffer, so there is
		// nothing left to drain; terminate outright.
		w := s.waiter
		s.waiter = nil
		s.kind = stateFinished
		s.strategy = nil
		resumeWith := endResult[T, F]()
		if hasFailure {
			resumeWith = failureResult[T, F](failure)
		}
		return s, action[T, F]{resumeWaiter: w, resumeWith: resumeWith, didTerminate: true}

	case stateSourceFinished, stateFinished:
		return s, action[T, F]{}

	default:
		panic("bridge: unreachable state in finish")
	}
}

// nextStepATransition is step A of Next: decide, under lock,
// whether a value is already available or the caller must suspend.
func nextStepATransition[T any, F error](s state[T, F]) (state[T, F], action[T, F], nextOutcome[T, F]) {
	switch s.kind {
	case stateInitial:
		s.kind = stateStreaming
		return s, action[T, F]{}, nextOutcome[T, F]{suspend: true}

	case stateStreaming:
		if s.waiter != nil {
			panic("bridge: concurrent Next calls are not allowed (at most one in-flight consumer)")
		}
		if len(s.buffer) == 0 {
			return s, action[T, F]{}, nextOutcome[T, F]{suspend: true}
		}

		head := s.buffer[0]
		s.buffer = s.buffer[1:]
		produce := s.strategy.OnConsume(len(s.buffer))
		flipped := produce && !s.outstandingDemand
		s.outstandingDemand = produce
		return s, action[T, F]{produceMore: flipped}, nextOutcome[T, F]{result: elementResult[T, F](head)}

	case stateSourceFinished:
		if len(s.buffer) > 0 {
			head := s.buffer[0]
			s.buffer = s.buffer[1:]
			return s, action[T, F]{}, nextOutcome[T, F]{result: elementResult[T, F](head)}
		}

		s.kind = stateFinished
		s.strategy = nil
		res := endResult[T, F]()
		if s.hasFailure {
			res = failureResult[T, F](s.failure)
		}
		return s, action[T, F]{didTerminate: true}, nextOutcome[T, F]{result: res}

	case stateFinished:
		return s, action[T, F]{}, nextOutcome[T, F]{result: endResult[T, F]()}

	default:
		panic("bridge: unreachable state in next step A")
	}
}

// nextStepBTransition is step B of Next: register the waiter the
// consumer just created and signal produce_more if demand flips.
func nextStepBTransition[T any, F error](s state[T, F], w waiter[T, F]) (state[T, F], action[T, F]) {
	if s.kind != stateStreaming || s.waiter != nil || len(s.buffer) != 0 {
		panic("bridge: next step B invoked when a value was already available")
	}

	s.waiter = w
	produce := s.strategy.OnConsume(0)
	flipped := produce && !s.outstandingDemand
	s.outstandingDemand = produce
	return s, action[T, F]{produceMore: flipped}
}

// cancelTransition handles the consumer's task being cancelled while
// awaiting Next. Always resolves the consumer and
// always terminates the stream when there is anything left to terminate.
func cancelTransition[T any, F error](s state[T, F]) (state[T, F], action[T, F]) {
	switch s.kind {
	case stateInitial:
		s.kind = stateFinished
		s.strategy = nil
		return s, action[T, F]{didTerminate: true}

	case stateStreaming:
		w := s.waiter
		s.waiter = nil
		s.kind = stateFinished
		s.strategy = nil
		return s, action[T, F]{resumeWaiter: w, resumeWith: endResult[T, F](), didTerminate: true}

	case stateSourceFinished, stateFinished:
		return s, action[T, F]{}

	default:
		panic("bridge: unreachable state in cancel")
	}
}

// sequenceDeinitTransition handles the stream handle being released
// without an iterator ever having been created. If one was created, the
// consumer still
// owns termination of the stream and this is a no-op.
func sequenceDeinitTransition[T any, F error](s state[T, F]) (state[T, F], action[T, F]) {
	if s.kind == stateFinished || s.iteratorCreated {
		return s, action[T, F]{}
	}
	s.kind = stateFinished
	s.strategy = nil
	return s, action[T, F]{didTerminate: true}
}

// iteratorInitTransition handles Stream.Iterator. Late creation after the
// stream already finished is tolerated; a second live iterator is a
// programmer error.
func iteratorInitTransition[T any, F error](s state[T, F]) (state[T, F], action[T, F]) {
	if s.kind == stateFinished {
		return s, action[T, F]{}
	}
	if s.iteratorCreated {
		panic("bridge: at most one iterator may ever be created from a stream")
	}
	s.iteratorCreated = true
	return s, action[T, F]{}
}

// iteratorDeinitTransition handles Iterator.Close, the consumer's own
// termination trigger.
func iteratorDeinitTransition[T any, F error](s state[T, F]) (state[T, F], action[T, F]) {
	if s.kind == stateFinished {
		// Covers iterators created after termination, whose creation
		// never set the flag.
		return s, action[T, F]{}
	}
	if !s.iteratorCreated {
		panic("bridge: iterator_deinitialized observed without a created iterator")
	}

	w := s.waiter
	s.waiter = nil
	s.kind = stateFinished
	s.strategy = nil
	return s, action[T, F]{resumeWaiter: w, resumeWith: endResult[T, F](), didTerminate: true}
}
