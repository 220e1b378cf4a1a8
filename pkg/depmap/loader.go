package depmap

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/sysresolve/pkg/observability"
)

// Options configures a [Loader].
type Options struct {
	// Workers bounds the number of fragments parsed at once.
	// Zero selects [DefaultWorkers].
	Workers int

	// Logger receives per-fragment diagnostics. Nil means log.Default().
	Logger *log.Logger
}

// Stats summarizes one [Loader.Load] call.
type Stats struct {
	Files    int // fragments attempted
	Failed   int // fragments dropped because they could not be read or parsed
	Mappings int // edges handed to the graph, including duplicates
}

// DefaultWorkers returns twice the CPU count, clamped to [1, 8].
func DefaultWorkers() int {
	return min(max(2*runtime.NumCPU(), 1), 8)
}

// Loader reads mapping fragments into a [Graph].
type Loader struct {
	graph   *Graph
	workers int
	logger  *log.Logger
}

// NewLoader returns a loader feeding graph.
func NewLoader(graph *Graph, opts Options) *Loader {
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers()
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	return &Loader{graph: graph, workers: opts.Workers, logger: opts.Logger}
}

// Workers returns the size of the parse pool.
func (l *Loader) Workers() int { return l.workers }

type parsed struct {
	edges []Edge
	err   error
}

// Load parses every fragment under locations and adds the mappings to the
// graph. A location is a fragment file or a directory whose regular files
// are read in lexicographic order. Missing locations are skipped.
//
// Fragments are parsed concurrently but inserted in discovery order once
// all parses finish, so the resulting graph does not depend on scheduling.
// A fragment that fails to parse is dropped. The only error returned is
// the context's.
func (l *Loader) Load(ctx context.Context, locations []string) (Stats, error) {
	start := time.Now()
	files := l.expand(locations)
	results := make([]parsed, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.workers)
	for i, path := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			edges, err := ReadFragment(path)
			results[i] = parsed{edges: edges, err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Stats{Files: len(files)}, err
	}

	stats := Stats{Files: len(files)}
	for i, r := range results {
		if r.err != nil {
			stats.Failed++
			l.logger.Warn("skipping malformed mapping fragment", "file", files[i], "err", r.err)
			continue
		}
		for _, e := range r.edges {
			l.graph.AddMapping(e.From, e.To, e.Namespace)
		}
		stats.Mappings += len(r.edges)
	}

	observability.Depmap().OnLoadComplete(ctx, stats.Files, stats.Failed, stats.Mappings, time.Since(start))
	l.logger.Debug("loaded mapping fragments", "files", stats.Files, "failed", stats.Failed, "mappings", stats.Mappings, "workers", l.workers)
	return stats, nil
}

func (l *Loader) expand(locations []string) []string {
	var files []string
	for _, loc := range locations {
		info, err := os.Stat(loc)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				l.logger.Debug("mapping location does not exist", "path", loc)
			} else {
				l.logger.Warn("cannot access mapping location", "path", loc, "err", err)
			}
			continue
		}
		if !info.IsDir() {
			files = append(files, loc)
			continue
		}

		entries, err := os.ReadDir(loc)
		if err != nil {
			l.logger.Warn("cannot list mapping directory", "path", loc, "err", err)
			continue
		}
		// ReadDir returns entries sorted by filename.
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			files = append(files, filepath.Join(loc, e.Name()))
		}
	}
	return files
}
