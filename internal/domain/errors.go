package domain

import "errors"

var (
	// ErrInvalidURL is returned when an offer URL cannot be parsed.
	// It propagates to the ingestion pipeline's per-record failure
	// accounting; a malformed URL must never be silently fingerprinted.
	ErrInvalidURL = errors.New("invalid offer URL")

	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrRateLimited is returned when rate limit is exceeded
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrStoreFailure is returned when a catalog store operation fails
	ErrStoreFailure = errors.New("catalog store operation failed")
)
