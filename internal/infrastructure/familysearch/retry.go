package familysearch

import (
	"context"
	"errors"
	"time"
)

// permanentError stops retryWithContext from trying again.
type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

func permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// retryWithContext calls fn up to maxTries times until it succeeds, returns
// a permanent error or ctx is done. The wait between attempts starts at
// delay and doubles, capped at maxDelay.
func retryWithContext[T any](ctx context.Context, maxTries int, delay, maxDelay time.Duration, fn func(context.Context) (T, error)) (T, error) {
	if maxTries <= 0 {
		maxTries = 1
	}
	var zero T
	var lastErr error
	for i := 0; i < maxTries; i++ {
		if i > 0 {
			if err := sleep(ctx, delay); err != nil {
				return zero, err
			}
			delay = min(delay*2, maxDelay)
		}
		if ctx.Err() != nil {
			return zero, ctx.Err()
		}
		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}
		var p *permanentError
		if errors.As(err, &p) {
			return zero, p.err
		}
		if ctx.Err() != nil {
			return zero, ctx.Err()
		}
		lastErr = err
	}
	return zero, lastErr
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
