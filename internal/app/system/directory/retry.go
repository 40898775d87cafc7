// internal/app/system/directory/retry.go
package directory

import (
	"context"
	"time"
)

// WithRetry wraps a Client with bounded exponential backoff. Retries apply
// only to this external fetch — nothing inside the tenancy/quota core
// retries.
func WithRetry(c Client, attempts int, baseDelay time.Duration) Client {
	if attempts < 1 {
		attempts = 1
	}
	return &retryClient{inner: c, attempts: attempts, baseDelay: baseDelay}
}

type retryClient struct {
	inner     Client
	attempts  int
	baseDelay time.Duration
}

func (r *retryClient) Search(ctx context.Context, q Query) ([]Business, error) {
	var lastErr error
	delay := r.baseDelay
	for i := 0; i < r.attempts; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
		}
		results, err := r.inner.Search(ctx, q)
		if err == nil {
			return results, nil
		}
		lastErr = err
	}
	return nil, lastErr
}
