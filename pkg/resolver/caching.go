package resolver

import (
	"context"
	"sync"

	"github.com/matzehuels/sysresolve/pkg/artifact"
	"github.com/matzehuels/sysresolve/pkg/observability"
)

const cacheKeyType = "resolve"

type cacheKey struct {
	artifact   artifact.Coordinate
	provider   bool
	persistent bool
}

// Caching memoizes another resolver. Entries are keyed by the full
// request, flags included, and are never evicted. Errors are not cached.
//
// Concurrent first requests for the same key may all reach the wrapped
// resolver; the last result stored wins.
type Caching struct {
	next Resolver

	mu      sync.RWMutex
	entries map[cacheKey]Result
}

var _ Resolver = (*Caching)(nil)

// NewCaching wraps next.
func NewCaching(next Resolver) *Caching {
	return &Caching{next: next, entries: make(map[cacheKey]Result)}
}

func (c *Caching) Resolve(ctx context.Context, req Request) (Result, error) {
	key := cacheKey{artifact: req.Artifact, provider: req.ProviderNeeded, persistent: req.PersistentFileNeeded}

	c.mu.RLock()
	res, ok := c.entries[key]
	c.mu.RUnlock()
	if ok {
		observability.Cache().OnCacheHit(ctx, cacheKeyType)
		return res, nil
	}
	observability.Cache().OnCacheMiss(ctx, cacheKeyType)

	res, err := c.next.Resolve(ctx, req)
	if err != nil {
		return Result{}, err
	}

	c.mu.Lock()
	c.entries[key] = res
	n := len(c.entries)
	c.mu.Unlock()
	observability.Cache().OnCacheSet(ctx, cacheKeyType, n)

	return res, nil
}

// Len returns the number of cached results.
func (c *Caching) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
