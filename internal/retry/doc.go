// Package retry runs an operation again after failures, waiting an
// exponentially growing delay between attempts.
//
// # Usage
//
//	policy := retry.DefaultPolicy()
//	policy.Retryable = func(err error) bool {
//	    var se *http.StatusError
//	    return errors.As(err, &se)
//	}
//
//	err := retry.Do(ctx, policy, func(ctx context.Context) error {
//	    return client.DownloadFile(ctx, url, dest, nil)
//	})
//
// # Backoff
//
// The n-th wait (n starting at 1) is Initial * Multiplier^(n-1), capped at
// MaxDelay. With Jitter enabled the wait is drawn uniformly from [0, delay).
// Waits abort as soon as the context is cancelled.
package retry
