package provider

import "context"

// Provider is the base interface all providers implement, streaming or
// request/response alike.
type Provider interface {
	// Name returns the provider's unique name.
	Name() string
	// IsAvailable checks if the provider is ready to handle requests.
	IsAvailable(ctx context.Context) bool
}

// Factory creates a provider instance from untyped configuration, for
// callers that construct providers from config files.
type Factory[T Provider] func(cfg map[string]any) (T, error)
