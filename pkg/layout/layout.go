// Package layout maps artifact coordinates to repository-relative paths.
//
// Three schemes are supported:
//
//	maven  g/r/o/u/p/name/version/name-version.ext
//	jpp    group/name-version.ext       (group dots kept literally)
//	flat   group-name-version.ext       (everything in one segment)
//
// Versionless lookups omit the version; the maven scheme has no
// versionless form. See [Layout.Path].
package layout

import (
	"strings"

	"github.com/matzehuels/sysresolve/pkg/artifact"
	"github.com/matzehuels/sysresolve/pkg/errors"
)

// Layout is a repository path scheme.
type Layout int

const (
	// Maven is the hierarchical layout used by upstream Maven repositories.
	Maven Layout = iota
	// JPP keeps one directory per group, e.g. /usr/share/java.
	JPP
	// Flat stores every artifact in a single directory.
	Flat
)

var names = map[Layout]string{
	Maven: "maven",
	JPP:   "jpp",
	Flat:  "flat",
}

// Parse returns the layout with the given configuration name.
func Parse(name string) (Layout, error) {
	for l, n := range names {
		if n == name {
			return l, nil
		}
	}
	return 0, errors.New(errors.ErrCodeInvalidLayout, "unknown repository layout %q (want maven, jpp or flat)", name)
}

// Names returns the configuration names of all layouts.
func Names() []string { return []string{"maven", "jpp", "flat"} }

// String returns the configuration name of the layout.
func (l Layout) String() string {
	if n, ok := names[l]; ok {
		return n
	}
	return "unknown"
}

// Path returns the relative path of c under this layout. When versioned is
// false the version is omitted. The boolean result is false when the layout
// has no path for the request, which is the case for versionless lookups in
// the maven layout.
func (l Layout) Path(c artifact.Coordinate, versioned bool) (string, bool) {
	var b strings.Builder

	switch l {
	case Maven:
		if !versioned {
			return "", false
		}
		b.WriteString(strings.ReplaceAll(c.Group, ".", "/"))
		b.WriteByte('/')
		b.WriteString(c.Name)
		b.WriteByte('/')
		b.WriteString(c.Version)
		b.WriteByte('/')
		b.WriteString(c.Name)

	case JPP:
		if dir, ok := jppDirectory(c.Group); ok {
			b.WriteString(dir)
			b.WriteByte('/')
		}
		b.WriteString(c.Name)

	case Flat:
		b.WriteString(strings.ReplaceAll(c.Group, "/", "."))
		b.WriteByte('-')
		b.WriteString(c.Name)

	default:
		return "", false
	}

	if versioned {
		b.WriteByte('-')
		b.WriteString(c.Version)
	}
	if c.Classifier != "" {
		b.WriteByte('-')
		b.WriteString(c.Classifier)
	}
	if c.Extension != "" {
		b.WriteByte('.')
		b.WriteString(c.Extension)
	}

	return b.String(), true
}

// jppDirectory strips the JPP marker from a group. "JPP/x" becomes "x",
// a bare "JPP" has no directory, anything else (including "JPP-x") is kept.
func jppDirectory(group string) (string, bool) {
	switch {
	case group == "JPP":
		return "", false
	case strings.HasPrefix(group, "JPP/"):
		return group[len("JPP/"):], true
	default:
		return group, true
	}
}
