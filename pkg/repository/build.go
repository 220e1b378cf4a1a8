package repository

import (
	"strings"

	"github.com/matzehuels/sysresolve/pkg/errors"
	"github.com/matzehuels/sysresolve/pkg/layout"
)

// TypeCompound is the definition type of compound repositories. Every
// other type names a [layout.Layout].
const TypeCompound = "compound"

// Definition is the configuration form of a repository.
type Definition struct {
	ID          string       `toml:"id" yaml:"id" json:"id"`
	Type        string       `toml:"type" yaml:"type" json:"type"`
	Root        string       `toml:"root" yaml:"root" json:"root,omitempty"`
	Prefix      string       `toml:"prefix" yaml:"prefix" json:"prefix,omitempty"`
	Namespace   string       `toml:"namespace" yaml:"namespace" json:"namespace,omitempty"`
	Children    []string     `toml:"children" yaml:"children" json:"children,omitempty"`
	Stereotypes []Stereotype `toml:"stereotypes" yaml:"stereotypes" json:"stereotypes,omitempty"`
}

// Build constructs the repository named id from defs, resolving compound
// children recursively. Unknown ids, missing or unknown types and
// reference cycles are reported as configuration errors.
func Build(defs []Definition, id string) (Repository, error) {
	b := builder{
		defs:   make(map[string]Definition, len(defs)),
		onPath: make(map[string]bool),
	}
	for _, d := range defs {
		if d.ID == "" {
			return nil, errors.New(errors.ErrCodeInvalidConfig, "repository definition without id")
		}
		if _, dup := b.defs[d.ID]; dup {
			return nil, errors.New(errors.ErrCodeInvalidConfig, "repository %q is defined more than once", d.ID)
		}
		b.defs[d.ID] = d
	}
	return b.build(id, nil)
}

type builder struct {
	defs   map[string]Definition
	onPath map[string]bool
}

func (b *builder) build(id string, path []string) (Repository, error) {
	d, ok := b.defs[id]
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "repository %q is not configured", id)
	}
	if b.onPath[id] {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "repository reference cycle: %s -> %s",
			strings.Join(path, " -> "), id)
	}
	if d.Type == "" {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "repository %q has missing type", id)
	}

	if d.Type != TypeCompound {
		l, err := layout.Parse(d.Type)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "repository %q", id)
		}
		return NewSimple(d.ID, d.Namespace, l, d.Root, d.Stereotypes), nil
	}

	b.onPath[id] = true
	defer delete(b.onPath, id)

	children := make([]Repository, 0, len(d.Children))
	for _, childID := range d.Children {
		child, err := b.build(childID, append(path, id))
		if err != nil {
			return nil, err
		}
		children = append(children, child)
	}
	return NewCompound(d.ID, d.Namespace, d.Prefix, children), nil
}

// Walk calls fn for r and every repository below it, depth first.
func Walk(r Repository, fn func(Repository)) {
	fn(r)
	if c, ok := r.(*Compound); ok {
		for _, child := range c.children {
			Walk(child, fn)
		}
	}
}
