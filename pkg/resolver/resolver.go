package resolver

import (
	"context"

	"github.com/matzehuels/sysresolve/pkg/artifact"
)

// Request asks for one artifact.
type Request struct {
	Artifact artifact.Coordinate

	// ProviderNeeded asks for the owning system package to be reported.
	ProviderNeeded bool

	// PersistentFileNeeded tells the resolver the caller keeps the path
	// beyond the current build, so it must be a real file on disk.
	PersistentFileNeeded bool
}

// NewRequest returns a request for c without flags.
func NewRequest(c artifact.Coordinate) Request { return Request{Artifact: c} }

// Result is the outcome of a resolution. The zero value means not found.
type Result struct {
	// Path is the canonical absolute path of the artifact file.
	Path string `json:"path,omitempty"`

	// CompatVersion is the version under which the file was found, set
	// only when a specific version was requested.
	CompatVersion string `json:"compatVersion,omitempty"`

	// Provider is the system package owning Path, when requested and known.
	Provider string `json:"provider,omitempty"`

	// Namespace is the namespace of the repository that produced the hit.
	Namespace string `json:"namespace,omitempty"`

	// Repository is the id of the repository that produced the hit.
	Repository string `json:"repository,omitempty"`
}

// Found reports whether the artifact was resolved.
func (r Result) Found() bool { return r.Path != "" }

// Resolver resolves artifact requests.
type Resolver interface {
	Resolve(ctx context.Context, req Request) (Result, error)
}

// ResolverFunc adapts a function to [Resolver].
type ResolverFunc func(ctx context.Context, req Request) (Result, error)

func (f ResolverFunc) Resolve(ctx context.Context, req Request) (Result, error) { return f(ctx, req) }

// ResolveAll resolves requests in order. It stops at the first error.
func ResolveAll(ctx context.Context, r Resolver, reqs []Request) ([]Result, error) {
	out := make([]Result, 0, len(reqs))
	for _, req := range reqs {
		res, err := r.Resolve(ctx, req)
		if err != nil {
			return out, err
		}
		out = append(out, res)
	}
	return out, nil
}

// ResolveFile is the positional form kept for callers that only need a
// path. An empty extension means jar and an empty version means the
// default version. The returned path is empty when nothing was found.
func ResolveFile(ctx context.Context, r Resolver, group, name, version, extension string) (string, error) {
	c := artifact.Of(group, name, extension, "", version)
	if err := c.Validate(); err != nil {
		return "", err
	}
	res, err := r.Resolve(ctx, NewRequest(c))
	if err != nil {
		return "", err
	}
	return res.Path, nil
}
