package retry

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"time"
)

// Policy configures Do.
type Policy struct {
	// MaxAttempts is the total number of calls, including the first one.
	// Default: 5
	MaxAttempts int

	// Initial is the delay before the second attempt.
	// Default: 1s
	Initial time.Duration

	// Multiplier grows the delay after every failed attempt.
	// Default: 2
	Multiplier float64

	// MaxDelay caps a single wait.
	// Default: 60s
	MaxDelay time.Duration

	// Jitter draws each wait uniformly from [0, delay).
	Jitter bool

	// Retryable reports whether err is worth another attempt.
	// A nil Retryable retries every error.
	Retryable func(error) bool

	// OnRetry is called before each wait.
	OnRetry func(attempt int, err error, wait time.Duration)
}

// DefaultPolicy returns five attempts with exponential, jittered backoff.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: 5,
		Initial:     time.Second,
		Multiplier:  2,
		MaxDelay:    60 * time.Second,
		Jitter:      true,
	}
}

// ExhaustedError is returned when every attempt failed with a retryable error.
type ExhaustedError struct {
	Attempts int
	Err      error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("giving up after %d attempts: %v", e.Attempts, e.Err)
}

func (e *ExhaustedError) Unwrap() error {
	return e.Err
}

// Do calls fn until it succeeds, returns a non-retryable error, the context
// is done, or MaxAttempts calls have been made.
//
// A non-retryable error is returned unchanged. When attempts run out the
// last error is returned inside an *ExhaustedError, so errors.Is and
// errors.As still match it.
func Do(ctx context.Context, p Policy, fn func(ctx context.Context) error) error {
	p = p.withDefaults()

	var err error
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		if err = fn(ctx); err == nil {
			return nil
		}
		if p.Retryable != nil && !p.Retryable(err) {
			return err
		}
		if attempt == p.MaxAttempts {
			break
		}

		wait := p.Delay(attempt)
		if p.OnRetry != nil {
			p.OnRetry(attempt, err, wait)
		}

		select {
		case <-ctx.Done():
			return errors.Join(ctx.Err(), err)
		case <-time.After(wait):
		}
	}

	return &ExhaustedError{Attempts: p.MaxAttempts, Err: err}
}

// Delay returns the wait that follows the given failed attempt.
func (p Policy) Delay(attempt int) time.Duration {
	p = p.withDefaults()

	delay := float64(p.Initial) * math.Pow(p.Multiplier, float64(attempt-1))
	if delay > float64(p.MaxDelay) {
		delay = float64(p.MaxDelay)
	}

	if p.Jitter && delay > 0 {
		delay = rand.Float64() * delay
	}
	return time.Duration(delay)
}

func (p Policy) withDefaults() Policy {
	d := DefaultPolicy()
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = d.MaxAttempts
	}
	if p.Initial < 0 {
		p.Initial = 0
	}
	if p.Multiplier < 1 {
		p.Multiplier = d.Multiplier
	}
	if p.MaxDelay <= 0 {
		p.MaxDelay = d.MaxDelay
	}
	return p
}
