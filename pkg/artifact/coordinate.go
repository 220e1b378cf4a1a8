package artifact

import (
	"cmp"
	"fmt"
	"strings"

	"github.com/matzehuels/sysresolve/pkg/errors"
)

const (
	// DefaultVersion marks a coordinate whose version is unspecified and
	// managed by the system.
	DefaultVersion = "SYSTEM"

	// DefaultExtension is the extension assumed when none is given.
	DefaultExtension = "jar"

	// RuntimeGroup is the group of virtual coordinates that refer to files
	// inside the current runtime home rather than a repository.
	RuntimeGroup = "JAVA_HOME"
)

var (
	// Dummy is a placeholder artifact. Dependencies on it are never resolved.
	Dummy = New("org.fedoraproject.xmvn", "xmvn-void")

	// DummyJPP is the same placeholder spelled in JPP style.
	DummyJPP = New("JPP/maven", "empty-dep")
)

// Coordinate identifies an artifact. The zero value is not a valid
// coordinate; use [New] or [Parse].
type Coordinate struct {
	Group      string
	Name       string
	Extension  string
	Classifier string
	Version    string
}

// New returns a coordinate with default extension, classifier and version.
func New(group, name string) Coordinate {
	return Coordinate{
		Group:     group,
		Name:      name,
		Extension: DefaultExtension,
		Version:   DefaultVersion,
	}
}

// Of returns a fully specified coordinate. Empty extension and version
// fall back to their defaults; an empty classifier stays empty.
func Of(group, name, extension, classifier, version string) Coordinate {
	c := Coordinate{Group: group, Name: name, Extension: extension, Classifier: classifier, Version: version}
	return c.normalize()
}

// Parse parses a colon-separated coordinate string. See the package
// documentation for accepted forms.
func Parse(s string) (Coordinate, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")

	var c Coordinate
	switch len(parts) {
	case 2:
		c = Coordinate{Group: parts[0], Name: parts[1]}
	case 3:
		c = Coordinate{Group: parts[0], Name: parts[1], Version: parts[2]}
	case 4:
		c = Coordinate{Group: parts[0], Name: parts[1], Extension: parts[2], Version: parts[3]}
	case 5:
		c = Coordinate{Group: parts[0], Name: parts[1], Extension: parts[2], Classifier: parts[3], Version: parts[4]}
	default:
		return Coordinate{}, errors.New(errors.ErrCodeInvalidCoordinate,
			"bad artifact coordinates %q, expected format is group:name[:extension[:classifier]][:version]", s)
	}

	c = c.normalize()
	if err := c.Validate(); err != nil {
		return Coordinate{}, err
	}
	return c, nil
}

// MustParse is like [Parse] but panics on error. Intended for tests and
// package-level variables.
func MustParse(s string) Coordinate {
	c, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return c
}

// Validate checks that every component is usable as a path segment.
func (c Coordinate) Validate() error {
	for _, f := range []struct {
		field, value string
		required     bool
	}{
		{"group", c.Group, true},
		{"name", c.Name, true},
		{"extension", c.Extension, false},
		{"classifier", c.Classifier, false},
		{"version", c.Version, true},
	} {
		if err := errors.ValidateCoordinatePart(f.field, f.value, f.required); err != nil {
			return err
		}
	}
	return nil
}

func (c Coordinate) normalize() Coordinate {
	if c.Extension == "" {
		c.Extension = DefaultExtension
	}
	if c.Version == "" {
		c.Version = DefaultVersion
	}
	return c
}

// Versionless returns c with its version set to [DefaultVersion].
func (c Coordinate) Versionless() Coordinate {
	c.Version = DefaultVersion
	return c
}

// VersionAndExtensionless returns c with version and extension reset to
// their defaults.
func (c Coordinate) VersionAndExtensionless() Coordinate {
	c.Version = DefaultVersion
	c.Extension = DefaultExtension
	return c
}

// WithVersion returns a copy of c with the given version.
func (c Coordinate) WithVersion(v string) Coordinate {
	c.Version = v
	return c
}

// WithExtension returns a copy of c with the given extension.
func (c Coordinate) WithExtension(ext string) Coordinate {
	c.Extension = ext
	return c
}

// IsVersionless reports whether c carries the default version.
func (c Coordinate) IsVersionless() bool { return c.Version == DefaultVersion }

// IsPOM reports whether c refers to a project model rather than a binary.
func (c Coordinate) IsPOM() bool { return c.Extension == "pom" }

// IsRuntime reports whether c is a virtual coordinate inside the runtime home.
func (c Coordinate) IsRuntime() bool { return c.Group == RuntimeGroup }

// String returns the canonical group:name:extension[:classifier]:version form.
func (c Coordinate) String() string {
	if c.Classifier == "" {
		return fmt.Sprintf("%s:%s:%s:%s", c.Group, c.Name, c.Extension, c.Version)
	}
	return fmt.Sprintf("%s:%s:%s:%s:%s", c.Group, c.Name, c.Extension, c.Classifier, c.Version)
}

// Compare orders coordinates lexicographically by group, name, extension,
// classifier and version. It returns -1, 0 or +1.
func Compare(a, b Coordinate) int {
	if r := cmp.Compare(a.Group, b.Group); r != 0 {
		return r
	}
	if r := cmp.Compare(a.Name, b.Name); r != 0 {
		return r
	}
	if r := cmp.Compare(a.Extension, b.Extension); r != 0 {
		return r
	}
	if r := cmp.Compare(a.Classifier, b.Classifier); r != 0 {
		return r
	}
	return cmp.Compare(a.Version, b.Version)
}

// Join renders coordinates as a comma-separated list, for log messages.
func Join(cs []Coordinate) string {
	parts := make([]string, len(cs))
	for i, c := range cs {
		parts[i] = c.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
