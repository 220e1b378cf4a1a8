// Package counter implements the shared countdown that gates bisection
// builds.
//
// A bisection build sets the counter to N; the first N resolutions across
// every participating process are served from the bisection repository.
// [Counter.TryDecrement] must therefore be atomic across processes, not
// just goroutines. [FileCounter] uses an advisory lock on a local file,
// [RedisCounter] a server-side script for builds spread over machines.
//
// All I/O failures are reported with [errors.ErrCodeCounterIO]; callers
// treat them as fatal.
package counter

import (
	"context"
	"strings"

	"github.com/matzehuels/sysresolve/pkg/errors"
)

// Counter is a non-negative integer shared between processes.
type Counter interface {
	// TryDecrement returns the current value and, if it is positive,
	// decrements it. Both happen atomically.
	TryDecrement(ctx context.Context) (int, error)

	// Value returns the current value.
	Value(ctx context.Context) (int, error)

	// Set replaces the current value.
	Set(ctx context.Context, v int) error
}

// Open returns the counter addressed by location: a redis:// or rediss:// URL
// selects a [RedisCounter], anything else is a file path.
func Open(location string) (Counter, error) {
	if location == "" {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "empty counter location")
	}
	if strings.HasPrefix(location, "redis://") || strings.HasPrefix(location, "rediss://") {
		return NewRedisCounter(location)
	}
	return NewFileCounter(location)
}
