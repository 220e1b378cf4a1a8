package depmap

import (
	"slices"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/sysresolve/pkg/artifact"
)

// Edge is a single mapping between two versionless coordinates.
type Edge struct {
	From      artifact.Coordinate
	To        artifact.Coordinate
	Namespace string // empty for the global scope
}

// Graph is a bidirectional mapping graph over versionless coordinates.
//
// Graph is safe for concurrent use. Reads never block each other; the
// write lock is only taken by [Graph.AddMapping].
type Graph struct {
	mu      sync.RWMutex
	forward map[artifact.Coordinate]*coordSet
	reverse map[artifact.Coordinate]*coordSet
	ns      map[edgeKey]string
	edges   int
	logger  *log.Logger
}

type edgeKey struct{ from, to artifact.Coordinate }

// NewGraph returns an empty graph. A nil logger falls back to log.Default().
func NewGraph(logger *log.Logger) *Graph {
	if logger == nil {
		logger = log.Default()
	}
	return &Graph{
		forward: make(map[artifact.Coordinate]*coordSet),
		reverse: make(map[artifact.Coordinate]*coordSet),
		ns:      make(map[edgeKey]string),
		logger:  logger,
	}
}

// AddMapping records that from is provided by to. Both coordinates are
// reduced to their versionless form. Adding an existing edge is a no-op;
// the edge keeps the namespace it was first added with.
func (g *Graph) AddMapping(from, to artifact.Coordinate, namespace string) {
	from, to = from.Versionless(), to.Versionless()

	g.mu.Lock()
	defer g.mu.Unlock()

	if !setFor(g.forward, from).add(to) {
		return
	}
	setFor(g.reverse, to).add(from)
	g.ns[edgeKey{from, to}] = namespace
	g.edges++
}

// Translate returns every coordinate reachable from c in depth-first
// post-order. The versionless form of c is always the last element.
func (g *Graph) Translate(c artifact.Coordinate) []artifact.Coordinate {
	g.mu.RLock()
	defer g.mu.RUnlock()

	out := walk(g.forward, c.Versionless(), make(map[artifact.Coordinate]bool), nil)
	if g.debugEnabled() {
		g.logger.Debug("translated artifact", "artifact", c, "result", artifact.Join(out))
	}
	return out
}

// RelativesOf returns everything that may refer to the same artifact as c:
// the forward closure of every coordinate that maps to c, directly or
// transitively, including c itself. The result has no duplicates and is
// ordered by first discovery.
func (g *Graph) RelativesOf(c artifact.Coordinate) []artifact.Coordinate {
	g.mu.RLock()
	defer g.mu.RUnlock()

	c = c.Versionless()
	seen := newCoordSet()
	for _, ancestor := range walk(g.reverse, c, make(map[artifact.Coordinate]bool), nil) {
		for _, r := range walk(g.forward, ancestor, make(map[artifact.Coordinate]bool), nil) {
			seen.add(r)
		}
	}
	if g.debugEnabled() {
		g.logger.Debug("computed relatives", "artifact", c, "relatives", artifact.Join(seen.items))
	}
	return slices.Clone(seen.items)
}

func (g *Graph) debugEnabled() bool { return g.logger.GetLevel() <= log.DebugLevel }

// Namespace returns the namespace of the edge from -> to.
func (g *Graph) Namespace(from, to artifact.Coordinate) (string, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	ns, ok := g.ns[edgeKey{from.Versionless(), to.Versionless()}]
	return ns, ok
}

// IsEmpty reports whether the graph has no mappings.
func (g *Graph) IsEmpty() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.edges == 0
}

// Len returns the number of distinct edges.
func (g *Graph) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.edges
}

// Edges returns a snapshot of all edges sorted by source, then target.
func (g *Graph) Edges() []Edge {
	g.mu.RLock()
	defer g.mu.RUnlock()

	out := make([]Edge, 0, g.edges)
	for from, targets := range g.forward {
		for _, to := range targets.items {
			out = append(out, Edge{From: from, To: to, Namespace: g.ns[edgeKey{from, to}]})
		}
	}
	slices.SortFunc(out, func(a, b Edge) int {
		if r := artifact.Compare(a.From, b.From); r != 0 {
			return r
		}
		return artifact.Compare(a.To, b.To)
	})
	return out
}

// walk appends the post-order traversal of adj starting at node to out.
// onPath holds the nodes of the current branch only; it is restored on
// return so other branches may revisit them.
func walk(adj map[artifact.Coordinate]*coordSet, node artifact.Coordinate, onPath map[artifact.Coordinate]bool, out []artifact.Coordinate) []artifact.Coordinate {
	onPath[node] = true
	if next, ok := adj[node]; ok {
		for _, n := range next.items {
			if !onPath[n] {
				out = walk(adj, n, onPath, out)
			}
		}
	}
	delete(onPath, node)
	return append(out, node)
}

func setFor(m map[artifact.Coordinate]*coordSet, c artifact.Coordinate) *coordSet {
	s, ok := m[c]
	if !ok {
		s = newCoordSet()
		m[c] = s
	}
	return s
}

// coordSet is an insertion-ordered set.
type coordSet struct {
	index map[artifact.Coordinate]struct{}
	items []artifact.Coordinate
}

func newCoordSet() *coordSet {
	return &coordSet{index: make(map[artifact.Coordinate]struct{})}
}

func (s *coordSet) add(c artifact.Coordinate) bool {
	if _, ok := s.index[c]; ok {
		return false
	}
	s.index[c] = struct{}{}
	s.items = append(s.items, c)
	return true
}
