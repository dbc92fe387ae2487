package usecase

import "time"

const (
	// DefaultSummaryCacheTTL bounds how long a cached summary may be served
	// after a write that failed to invalidate it.
	DefaultSummaryCacheTTL = 10 * time.Minute

	// IdempotencyKeyTTL is how long idempotency keys are cached
	IdempotencyKeyTTL = 24 * time.Hour
)
