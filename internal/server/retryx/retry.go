// Package retryx runs external calls under a deadline with bounded
// exponential backoff.
package retryx

import (
	"context"
	"errors"
	"time"

	"github.com/sethvargo/go-retry"
)

// Policy bounds one external call.
// Timeout covers all attempts together; Retries is the number of extra attempts.
type Policy struct {
	Timeout   time.Duration
	Retries   int
	BaseDelay time.Duration
}

func (p Policy) backoff() retry.Backoff {
	base := p.BaseDelay
	if base <= 0 {
		base = time.Millisecond
	}
	retries := p.Retries
	if retries < 0 {
		retries = 0
	}
	return retry.WithMaxRetries(uint64(retries), retry.NewExponential(base))
}

// Do calls fn until it succeeds, the retries are spent or the deadline
// passes. Context errors are never retried.
func Do(ctx context.Context, p Policy, fn func(ctx context.Context) error) error {
	if p.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.Timeout)
		defer cancel()
	}

	return retry.Do(ctx, p.backoff(), func(ctx context.Context) error {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
			return err
		}
		return retry.RetryableError(err)
	})
}

// Value is Do for calls that produce a result.
func Value[T any](ctx context.Context, p Policy, fn func(ctx context.Context) (T, error)) (T, error) {
	var out T
	err := Do(ctx, p, func(ctx context.Context) error {
		v, err := fn(ctx)
		if err != nil {
			return err
		}
		out = v
		return nil
	})
	return out, err
}
