package resolver

import (
	"slices"
	"sync"

	"github.com/matzehuels/sysresolve/pkg/artifact"
	"github.com/matzehuels/sysresolve/pkg/depmap"
)

// Blacklist is a set of coordinates that must not be resolved. Entries
// are stored in version-and-extensionless form.
type Blacklist struct {
	mu      sync.RWMutex
	entries map[artifact.Coordinate]struct{}
}

// NewBlacklist seeds the list with the placeholder artifacts and the
// configured coordinates, then adds every relative of each seed found in
// graph. A nil graph adds no relatives.
func NewBlacklist(graph *depmap.Graph, configured []artifact.Coordinate) *Blacklist {
	b := &Blacklist{entries: make(map[artifact.Coordinate]struct{})}

	seeds := append([]artifact.Coordinate{artifact.Dummy, artifact.DummyJPP}, configured...)
	for _, s := range seeds {
		b.Add(s)
		if graph == nil {
			continue
		}
		for _, r := range graph.RelativesOf(s.VersionAndExtensionless()) {
			b.Add(r)
		}
	}
	return b
}

// Contains reports whether c, ignoring version and extension, is listed.
func (b *Blacklist) Contains(c artifact.Coordinate) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, ok := b.entries[c.VersionAndExtensionless()]
	return ok
}

// Add lists c without expanding its relatives.
func (b *Blacklist) Add(c artifact.Coordinate) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries[c.VersionAndExtensionless()] = struct{}{}
}

// Entries returns the listed coordinates in sorted order.
func (b *Blacklist) Entries() []artifact.Coordinate {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]artifact.Coordinate, 0, len(b.entries))
	for c := range b.entries {
		out = append(out, c)
	}
	slices.SortFunc(out, artifact.Compare)
	return out
}
