// Package errors provides unified error handling at this module's
// outer surfaces (HTTP, config, resilience rejections). Stream failures
// inside a bridge stay plain error values; adapters wrap them into
// AppError only at the transport boundary.
// It implements structured error types with error codes, HTTP status mapping,
// and retryable detection following RFC 7807 and Google AIP-193.
package errors
