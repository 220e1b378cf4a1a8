// Package provenance maps installed files to the system package that owns
// them.
//
// The [Index] is built lazily: the first [Index.Lookup] runs one bulk
// query against a [Source] and every later lookup is a map read. A failed
// query leaves the index empty for the rest of the process so an
// expensive external tool is never invoked twice. The query runs detached
// from the caller's cancellation: a caller that gives up cannot poison the
// index for everyone else.
package provenance

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/sysresolve/pkg/observability"
)

// Source enumerates every file owned by every installed package.
type Source interface {
	// Query returns a map from absolute file path to package name.
	Query(ctx context.Context) (map[string]string, error)
}

// SourceFunc adapts a function to [Source].
type SourceFunc func(ctx context.Context) (map[string]string, error)

func (f SourceFunc) Query(ctx context.Context) (map[string]string, error) { return f(ctx) }

// Index is a build-once, read-forever path to package map.
type Index struct {
	source Source
	logger *log.Logger

	once  sync.Once
	owner map[string]string

	mu  sync.Mutex
	err error
}

// Option configures an [Index].
type Option func(*Index)

// WithLogger sets the logger used to report query failures.
func WithLogger(l *log.Logger) Option {
	return func(ix *Index) { ix.logger = l }
}

// NewIndex returns an index that queries source on first use.
func NewIndex(source Source, opts ...Option) *Index {
	ix := &Index{source: source, logger: log.Default()}
	for _, opt := range opts {
		opt(ix)
	}
	return ix
}

// Lookup returns the package owning path. The path is canonicalized by
// following symlinks first; if that fails the path is used as given.
func (ix *Index) Lookup(ctx context.Context, path string) (string, bool) {
	if canonical, err := filepath.EvalSymlinks(path); err == nil {
		path = canonical
	}
	ix.build(ctx)
	pkg, ok := ix.owner[path]
	return pkg, ok
}

// Len returns the number of indexed files, building the index if needed.
func (ix *Index) Len(ctx context.Context) int {
	ix.build(ctx)
	return len(ix.owner)
}

// Err returns the query error, if the build failed. It is nil while the
// index has not been built.
func (ix *Index) Err() error {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	return ix.err
}

func (ix *Index) build(ctx context.Context) {
	ix.once.Do(func() {
		ctx := context.WithoutCancel(ctx)
		start := time.Now()
		owner, err := ix.source.Query(ctx)
		if err != nil {
			ix.logger.Warn("package database query failed, provenance will be unavailable", "err", err)
			ix.mu.Lock()
			ix.err = err
			ix.mu.Unlock()
			owner = nil
		}
		if owner == nil {
			owner = map[string]string{}
		}
		ix.owner = owner
		observability.Resolver().OnProvenanceIndex(ctx, len(owner), time.Since(start), err)
		ix.logger.Debug("built provenance index", "files", len(owner), "took", time.Since(start))
	})
}

var (
	defaultOnce  sync.Once
	defaultIndex *Index
)

// RPMDatabase is the directory whose modification time fingerprints the
// cached package index.
const RPMDatabase = "/var/lib/rpm"

// Default returns the process-wide index backed by the RPM database. Query
// results are cached under the user cache directory until the database
// changes.
func Default() *Index {
	defaultOnce.Do(func() {
		defaultIndex = NewIndex(&CachedSource{
			Source:      NewRPMSource(),
			Dir:         DefaultCacheDir(),
			TTL:         DefaultCacheTTL,
			Fingerprint: ModTimeFingerprint(RPMDatabase),
		})
	})
	return defaultIndex
}
