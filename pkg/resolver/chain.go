package resolver

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/sysresolve/pkg/artifact"
	"github.com/matzehuels/sysresolve/pkg/depmap"
	"github.com/matzehuels/sysresolve/pkg/observability"
	"github.com/matzehuels/sysresolve/pkg/repository"
)

// Stage names reported to observability hooks.
const (
	StageBlacklist = "blacklist"
	StageBisect    = "bisect"
	StageRuntime   = "runtime"
	StageSystem    = "system"
	StageNone      = "none"
)

// ProviderLookup finds the system package owning a file.
// [provenance.Index] implements it.
type ProviderLookup interface {
	Lookup(ctx context.Context, path string) (string, bool)
}

// Options configures a [Chain]. Every field is optional.
type Options struct {
	// Graph supplies alternate coordinates. Nil means no mappings.
	Graph *depmap.Graph

	// System is probed in the last stage.
	System repository.Repository

	// Bisect enables the bisection stage.
	Bisect *Bisect

	// RuntimeHome is the directory JAVA_HOME coordinates resolve under.
	// Empty disables the runtime stage.
	RuntimeHome string

	// Provenance answers provider lookups.
	Provenance ProviderLookup

	// Blacklist lists coordinates that never resolve.
	Blacklist *Blacklist

	// Debug looks up providers for every hit, for logging.
	Debug bool

	Logger *log.Logger
}

// Chain is the layered resolver. It is safe for concurrent use.
type Chain struct {
	graph      *depmap.Graph
	system     repository.Repository
	bisect     *Bisect
	runtime    runtimeStage
	provenance ProviderLookup
	blacklist  *Blacklist
	debug      bool
	logger     *log.Logger
}

var _ Resolver = (*Chain)(nil)

// NewChain returns a chain configured by opts.
func NewChain(opts Options) *Chain {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Graph == nil {
		opts.Graph = depmap.NewGraph(opts.Logger)
	}
	return &Chain{
		graph:      opts.Graph,
		system:     opts.System,
		bisect:     opts.Bisect,
		runtime:    newRuntimeStage(opts.RuntimeHome),
		provenance: opts.Provenance,
		blacklist:  opts.Blacklist,
		debug:      opts.Debug,
		logger:     opts.Logger,
	}
}

// Resolve runs the stages in order. See the package documentation.
func (c *Chain) Resolve(ctx context.Context, req Request) (Result, error) {
	start := time.Now()
	res, stage, err := c.resolve(ctx, req)
	observability.Resolver().OnResolve(ctx, stage, res.Found(), time.Since(start), err)
	return res, err
}

func (c *Chain) resolve(ctx context.Context, req Request) (Result, string, error) {
	a := req.Artifact

	if c.blacklist != nil && c.blacklist.Contains(a) {
		c.logger.Debug("artifact is blacklisted", "artifact", a)
		return Result{}, StageBlacklist, nil
	}

	if c.bisect != nil {
		hit, applies, err := c.bisect.resolve(ctx, a)
		if err != nil {
			c.logger.Error("failed to decrement bisection counter", "err", err)
			return Result{}, StageBisect, err
		}
		if applies {
			c.logger.Debug("resolving artifact from bisection repository", "artifact", a)
			if !hit.Found() {
				return Result{}, StageBisect, nil
			}
			return c.finish(ctx, req, hit), StageBisect, nil
		}
	}

	c.logger.Debug("trying to resolve artifact", "artifact", a)

	if hit, ok := c.runtime.resolve(c.graph, a); ok {
		return c.finish(ctx, req, hit), StageRuntime, nil
	}

	if c.system != nil {
		if hit, ok := c.resolveSystem(a); ok {
			return c.finish(ctx, req, hit), StageSystem, nil
		}
	}

	c.logger.Debug("failed to resolve artifact", "artifact", a)
	return Result{}, StageNone, nil
}

// candidates returns the coordinates probed for a, most specific first.
// Translate always ends with a itself. POM requests additionally try the
// JAR mappings with the extension switched back to pom, since mapping
// data is usually written for JARs only.
func (c *Chain) candidates(a artifact.Coordinate) []artifact.Coordinate {
	cands := c.graph.Translate(a)
	if a.IsPOM() {
		for _, j := range c.graph.Translate(a.WithExtension(artifact.DefaultExtension)) {
			cands = append(cands, j.WithExtension("pom"))
		}
	}
	return cands
}

func (c *Chain) resolveSystem(a artifact.Coordinate) (Result, bool) {
	cands := c.candidates(a)

	versions := []string{a.Version}
	if !a.IsVersionless() {
		versions = append(versions, artifact.DefaultVersion)
	}

	for _, v := range versions {
		probe := make([]artifact.Coordinate, len(cands))
		for i, cand := range cands {
			probe[i] = cand.WithVersion(v)
		}

		for _, p := range c.system.ArtifactPaths(probe, v != artifact.DefaultVersion) {
			c.logger.Debug("checking artifact path", "path", p.Path)
			if !exists(p.Path) {
				continue
			}
			res := Result{
				Path:       p.Path,
				Namespace:  p.Namespace,
				Repository: p.Repository.ID(),
			}
			if !a.IsVersionless() {
				res.CompatVersion = v
			}
			return res, true
		}
	}
	return Result{}, false
}

// finish canonicalizes the hit and attaches the provider.
func (c *Chain) finish(ctx context.Context, req Request, res Result) Result {
	if canonical, err := filepath.EvalSymlinks(res.Path); err == nil {
		res.Path = canonical
	}
	if abs, err := filepath.Abs(res.Path); err == nil {
		res.Path = abs
	}
	c.logger.Debug("artifact was resolved", "artifact", req.Artifact, "path", res.Path, "compat", res.CompatVersion)

	if (req.ProviderNeeded || c.debug) && c.provenance != nil {
		if pkg, ok := c.provenance.Lookup(ctx, res.Path); ok {
			res.Provider = pkg
			c.logger.Debug("artifact is provided by package", "artifact", req.Artifact, "package", pkg)
		} else {
			c.logger.Debug("artifact is not provided by any package", "artifact", req.Artifact)
		}
	}
	return res
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
