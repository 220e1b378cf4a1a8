package resolver

import (
	"context"

	"github.com/matzehuels/sysresolve/pkg/artifact"
	"github.com/matzehuels/sysresolve/pkg/counter"
	"github.com/matzehuels/sysresolve/pkg/repository"
)

// Bisect serves artifacts from an override repository while a shared
// counter is positive. Each resolution consumes one unit, across every
// process sharing the counter.
type Bisect struct {
	Repository repository.Repository
	Counter    counter.Counter
}

// resolve reports whether the stage applies to this request and, if so,
// the hit. An applying stage is terminal: a missing file yields an empty
// result rather than falling through to later stages.
func (b *Bisect) resolve(ctx context.Context, a artifact.Coordinate) (Result, bool, error) {
	if b.Repository == nil || b.Counter == nil {
		return Result{}, false, nil
	}
	v, err := b.Counter.TryDecrement(ctx)
	if err != nil {
		return Result{}, false, err
	}
	if v <= 0 {
		return Result{}, false, nil
	}

	p, ok := b.Repository.PrimaryPath(a, !a.IsVersionless())
	if !ok || !exists(p.Path) {
		return Result{}, true, nil
	}
	return Result{
		Path:       p.Path,
		Namespace:  p.Namespace,
		Repository: p.Repository.ID(),
	}, true, nil
}
