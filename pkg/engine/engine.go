package engine

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/sysresolve/pkg/config"
	"github.com/matzehuels/sysresolve/pkg/counter"
	"github.com/matzehuels/sysresolve/pkg/depmap"
	"github.com/matzehuels/sysresolve/pkg/errors"
	"github.com/matzehuels/sysresolve/pkg/provenance"
	"github.com/matzehuels/sysresolve/pkg/repository"
	"github.com/matzehuels/sysresolve/pkg/resolver"
)

// Options configures [New].
type Options struct {
	// Logger is handed to every component. Nil means log.Default().
	Logger *log.Logger

	// Provenance answers provider lookups. Nil means the process-wide
	// RPM index from [provenance.Default].
	Provenance *provenance.Index

	// NoCache disables the result cache.
	NoCache bool
}

// Stats describes engine construction.
type Stats struct {
	Depmap   depmap.Stats
	LoadTime time.Duration
}

// Engine is an assembled resolver. It is safe for concurrent use.
type Engine struct {
	Config     *config.Config
	Graph      *depmap.Graph
	System     repository.Repository
	Blacklist  *resolver.Blacklist
	Chain      *resolver.Chain
	Provenance *provenance.Index

	// Counter is the bisection counter, nil when bisection is disabled.
	Counter counter.Counter

	Stats Stats

	resolver resolver.Resolver
	logger   *log.Logger
}

var _ resolver.Resolver = (*Engine)(nil)

// New builds an engine from cfg. cfg should already be validated; New
// still reports configuration errors it runs into.
func New(ctx context.Context, cfg *config.Config, opts Options) (*Engine, error) {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Provenance == nil {
		opts.Provenance = provenance.Default()
	}

	e := &Engine{
		Config:     cfg,
		Graph:      depmap.NewGraph(opts.Logger),
		Provenance: opts.Provenance,
		logger:     opts.Logger,
	}

	system, err := repository.Build(cfg.Repositories, cfg.ResolveRepository)
	if err != nil {
		return nil, err
	}
	e.System = system

	start := time.Now()
	loader := depmap.NewLoader(e.Graph, depmap.Options{Workers: cfg.LoaderWorkers, Logger: opts.Logger})
	stats, err := loader.Load(ctx, cfg.MetadataDirs())
	if err != nil {
		return nil, err
	}
	e.Stats = Stats{Depmap: stats, LoadTime: time.Since(start)}
	opts.Logger.Debug("loaded dependency map",
		"files", stats.Files,
		"failed", stats.Failed,
		"mappings", stats.Mappings,
		"duration", e.Stats.LoadTime)

	blacklisted, err := cfg.BlacklistCoordinates()
	if err != nil {
		return nil, err
	}
	e.Blacklist = resolver.NewBlacklist(e.Graph, blacklisted)

	var bisect *resolver.Bisect
	if cfg.BisectCounter != "" {
		repo, err := repository.Build(cfg.Repositories, cfg.BisectRepository)
		if err != nil {
			return nil, err
		}
		c, err := counter.Open(cfg.BisectCounter)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "bisect counter")
		}
		e.Counter = c
		bisect = &resolver.Bisect{Repository: repo, Counter: c}
		opts.Logger.Debug("bisection enabled", "repository", repo.ID(), "counter", cfg.BisectCounter)
	}

	e.Chain = resolver.NewChain(resolver.Options{
		Graph:       e.Graph,
		System:      system,
		Bisect:      bisect,
		RuntimeHome: cfg.RuntimeHome,
		Provenance:  opts.Provenance,
		Blacklist:   e.Blacklist,
		Debug:       cfg.Debug,
		Logger:      opts.Logger,
	})

	e.resolver = e.Chain
	if !opts.NoCache {
		e.resolver = resolver.NewCaching(e.Chain)
	}
	return e, nil
}

// Resolve resolves req through the cache, when enabled, and the chain.
func (e *Engine) Resolve(ctx context.Context, req resolver.Request) (resolver.Result, error) {
	return e.resolver.Resolve(ctx, req)
}

// Close releases the bisection counter.
func (e *Engine) Close() error {
	if c, ok := e.Counter.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
