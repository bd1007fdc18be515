package port

import "context"

type IdempotencyRepository interface {
	// SetIdempotency claims a key, returns false if it was already claimed
	SetIdempotency(ctx context.Context, key string) (bool, error)

	// ReleaseIdempotency frees a claimed key (for rollback when the guarded call fails)
	ReleaseIdempotency(ctx context.Context, key string) error
}
