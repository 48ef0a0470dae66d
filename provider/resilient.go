package provider

import (
	"context"
	"errors"

	goerrors "github.com/kbukum/bridgekit/errors"
	"github.com/kbukum/bridgekit/resilience"
)

// WithResilience wraps a RequestResponse provider with resilience middleware.
// Execution chain: RateLimiter → Bulkhead → CircuitBreaker → Retry → Execute.
// Nil config fields are skipped. Empty config returns the provider unchanged.
func WithResilience[I, O any](p RequestResponse[I, O], cfg ResilienceConfig) RequestResponse[I, O] {
	if cfg.IsEmpty() {
		return p
	}
	return &resilientRR[I, O]{
		inner: p,
		state: BuildResilience(cfg),
	}
}

// WithStreamResilience wraps a Stream provider with resilience middleware.
// Resilience is applied to the Execute call that opens the stream.
// Individual Next() calls on the returned Iterator are NOT wrapped.
func WithStreamResilience[I, O any](p Stream[I, O], cfg ResilienceConfig) Stream[I, O] {
	if cfg.IsEmpty() {
		return p
	}
	return &resilientStream[I, O]{
		inner: p,
		state: BuildResilience(cfg),
	}
}

// --- RequestResponse wrapper ---

type resilientRR[I, O any] struct {
	inner RequestResponse[I, O]
	state *ResilienceState
}

func (r *resilientRR[I, O]) Name() string                         { return r.inner.Name() }
func (r *resilientRR[I, O]) IsAvailable(ctx context.Context) bool { return r.inner.IsAvailable(ctx) }

func (r *resilientRR[I, O]) Execute(ctx context.Context, input I) (O, error) {
	return ExecuteWithResilience(ctx, r.state, func() (O, error) {
		return r.inner.Execute(ctx, input)
	})
}

// --- Stream wrapper ---

type resilientStream[I, O any] struct {
	inner Stream[I, O]
	state *ResilienceState
}

func (r *resilientStream[I, O]) Name() string                         { return r.inner.Name() }
func (r *resilientStream[I, O]) IsAvailable(ctx context.Context) bool { return r.inner.IsAvailable(ctx) }

func (r *resilientStream[I, O]) Execute(ctx context.Context, input I) (Iterator[O], error) {
	return ExecuteWithResilience(ctx, r.state, func() (Iterator[O], error) {
		return r.inner.Execute(ctx, input)
	})
}

// --- Core execution chain ---

// ExecuteWithResilience runs fn through the resilience chain:
// RateLimiter.Wait → Bulkhead → CircuitBreaker → Retry → fn.
// Exported so callers outside the middleware can reuse the chain.
// Resilience errors are wrapped as AppError for consistency.
func ExecuteWithResilience[T any](ctx context.Context, s *ResilienceState, fn func() (T, error)) (T, error) {
	if s == nil {
		return fn()
	}

	// Layer 1: Rate limiter (wait for token)
	if s.rl != nil {
		if err := s.rl.Wait(ctx); err != nil {
			var zero T
			return zero, wrapResilienceError(err)
		}
	}

	// Build the innermost call: retry wrapping fn, or bare fn
	call := fn
	if s.retryCfg != nil {
		retryCfg := *s.retryCfg
		call = func() (T, error) {
			return resilience.Retry(ctx, retryCfg, fn)
		}
	}

	// Layer 2: Circuit breaker wrapping call
	if s.cb != nil {
		cbCall := call
		call = func() (T, error) {
			var result T
			var resultErr error
			cbErr := s.cb.Execute(func() error {
				result, resultErr = cbCall()
				return resultErr
			})
			if cbErr != nil && resultErr == nil {
				return result, wrapResilienceError(cbErr)
			}
			return result, resultErr
		}
	}

	// Layer 3: Bulkhead wrapping everything
	if s.bh != nil {
		bhCall := call
		result, err := resilience.ExecuteWithResult(s.bh, ctx, func() (T, error) {
			return bhCall()
		})
		if err != nil {
			return result, wrapResilienceError(err)
		}
		return result, nil
	}

	return call()
}

// wrapResilienceError converts resilience sentinel errors to AppError
// for consistent error handling across the stack.
func wrapResilienceError(err error) error {
	if err == nil {
		return nil
	}

	// Already an AppError — return as-is
	if _, ok := goerrors.AsAppError(err); ok {
		return err
	}

	switch {
	case errors.Is(err, resilience.ErrCircuitOpen):
		return goerrors.ServiceUnavailable("provider").WithCause(err)
	case errors.Is(err, resilience.ErrRateLimited):
		return goerrors.RateLimited().WithCause(err)
	case errors.Is(err, resilience.ErrBulkheadFull), errors.Is(err, resilience.ErrBulkheadTimeout):
		return goerrors.ServiceUnavailable("provider").
			WithCause(err).
			WithDetail("reason", "concurrency limit reached")
	case errors.Is(err, context.Canceled):
		return goerrors.Timeout("request canceled").WithCause(err)
	case errors.Is(err, context.DeadlineExceeded):
		return goerrors.Timeout("deadline exceeded").WithCause(err)
	default:
		return err
	}
}
