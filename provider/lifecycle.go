package provider

import "context"

// Initializable is optionally implemented by providers that need setup
// before handling requests (e.g., dial a backend, warm a cache). Callers
// that construct providers should call Init() before first use.
type Initializable interface {
	Init(ctx context.Context) error
}

// Closeable is optionally implemented by providers that hold resources
// requiring explicit cleanup (e.g., a connection or background worker).
// Callers should call Close() during shutdown.
type Closeable interface {
	Close(ctx context.Context) error
}
