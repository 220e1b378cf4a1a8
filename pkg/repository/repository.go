package repository

import (
	"path/filepath"

	"github.com/matzehuels/sysresolve/pkg/artifact"
	"github.com/matzehuels/sysresolve/pkg/layout"
)

// Repository produces candidate paths for artifact coordinates.
// Implementations are immutable and safe for concurrent use.
type Repository interface {
	// ID returns the configured identifier.
	ID() string

	// Namespace returns the namespace the repository serves, or "".
	Namespace() string

	// ArtifactPaths returns every candidate path for coords, in repository
	// priority order and then coordinate order. When versioned is false
	// the version is left out of the generated paths.
	ArtifactPaths(coords []artifact.Coordinate, versioned bool) []Path

	// PrimaryPath returns the first candidate for c.
	PrimaryPath(c artifact.Coordinate, versioned bool) (Path, bool)
}

// Path is a candidate location together with the leaf repository that
// produced it.
type Path struct {
	Path       string
	Coordinate artifact.Coordinate
	Repository Repository // leaf repository
	Namespace  string     // leaf namespace, or that of the closest compound
}

// Stereotype restricts a simple repository to matching artifacts. Empty
// fields match anything.
type Stereotype struct {
	Extension  string `toml:"extension" yaml:"extension" json:"extension,omitempty"`
	Classifier string `toml:"classifier" yaml:"classifier" json:"classifier,omitempty"`
}

func (s Stereotype) matches(c artifact.Coordinate) bool {
	return (s.Extension == "" || s.Extension == c.Extension) &&
		(s.Classifier == "" || s.Classifier == c.Classifier)
}

// ===== Simple =====

// Simple is a single layout under a single root.
type Simple struct {
	id          string
	namespace   string
	layout      layout.Layout
	root        string
	stereotypes []Stereotype
}

var _ Repository = (*Simple)(nil)

// NewSimple returns a repository using l under root. An empty root yields
// paths relative to the enclosing compound's prefix, or to the working
// directory.
func NewSimple(id, namespace string, l layout.Layout, root string, stereotypes []Stereotype) *Simple {
	return &Simple{
		id:          id,
		namespace:   namespace,
		layout:      l,
		root:        root,
		stereotypes: stereotypes,
	}
}

func (r *Simple) ID() string            { return r.id }
func (r *Simple) Namespace() string     { return r.namespace }
func (r *Simple) Layout() layout.Layout { return r.layout }
func (r *Simple) Root() string          { return r.root }

// Accepts reports whether c matches one of the stereotypes. A repository
// without stereotypes accepts everything.
func (r *Simple) Accepts(c artifact.Coordinate) bool {
	if len(r.stereotypes) == 0 {
		return true
	}
	for _, s := range r.stereotypes {
		if s.matches(c) {
			return true
		}
	}
	return false
}

func (r *Simple) PrimaryPath(c artifact.Coordinate, versioned bool) (Path, bool) {
	if !r.Accepts(c) {
		return Path{}, false
	}
	rel, ok := r.layout.Path(c, versioned)
	if !ok {
		return Path{}, false
	}
	if r.root != "" {
		rel = filepath.Join(r.root, rel)
	}
	return Path{Path: rel, Coordinate: c, Repository: r, Namespace: r.namespace}, true
}

func (r *Simple) ArtifactPaths(coords []artifact.Coordinate, versioned bool) []Path {
	var out []Path
	for _, c := range coords {
		if p, ok := r.PrimaryPath(c, versioned); ok {
			out = append(out, p)
		}
	}
	return out
}

// ===== Compound =====

// Compound queries its children in order.
type Compound struct {
	id        string
	namespace string
	prefix    string
	children  []Repository
}

var _ Repository = (*Compound)(nil)

// NewCompound returns a repository that concatenates the candidates of
// children. A non-empty prefix is prepended to every relative child path;
// absolute child paths are kept as they are.
func NewCompound(id, namespace, prefix string, children []Repository) *Compound {
	return &Compound{id: id, namespace: namespace, prefix: prefix, children: children}
}

func (r *Compound) ID() string             { return r.id }
func (r *Compound) Namespace() string      { return r.namespace }
func (r *Compound) Prefix() string         { return r.prefix }
func (r *Compound) Children() []Repository { return r.children }

func (r *Compound) ArtifactPaths(coords []artifact.Coordinate, versioned bool) []Path {
	var out []Path
	for _, child := range r.children {
		for _, p := range child.ArtifactPaths(coords, versioned) {
			if r.prefix != "" && !filepath.IsAbs(p.Path) {
				p.Path = filepath.Join(r.prefix, p.Path)
			}
			if p.Namespace == "" {
				p.Namespace = r.namespace
			}
			out = append(out, p)
		}
	}
	return out
}

func (r *Compound) PrimaryPath(c artifact.Coordinate, versioned bool) (Path, bool) {
	paths := r.ArtifactPaths([]artifact.Coordinate{c}, versioned)
	if len(paths) == 0 {
		return Path{}, false
	}
	return paths[0], true
}
