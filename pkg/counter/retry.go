package counter

import (
	"context"
	stderrors "errors"
	"io"
	"net"
	"time"
)

// transientError marks a failure worth another attempt.
type transientError struct{ err error }

func (e *transientError) Error() string { return e.err.Error() }
func (e *transientError) Unwrap() error { return e.err }

// retry runs fn up to attempts times, doubling delay after each failure.
// Only errors wrapped in *transientError are retried; the last error is
// returned unwrapped.
func retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	attempts = max(attempts, 1)
	var lastErr error

	for i := range attempts {
		err := fn()
		if err == nil {
			return nil
		}
		var te *transientError
		if !stderrors.As(err, &te) {
			return err
		}
		lastErr = te.err

		if i < attempts-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
				delay *= 2
			}
		}
	}
	return lastErr
}

// classify wraps connection-level failures as transient.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var ne net.Error
	if stderrors.Is(err, io.EOF) || stderrors.As(err, &ne) {
		return &transientError{err}
	}
	return err
}
