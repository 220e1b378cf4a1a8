package artifact

import (
	"strings"

	"github.com/package-url/packageurl-go"

	"github.com/matzehuels/sysresolve/pkg/errors"
)

// purlPrefix marks a coordinate written as a Maven package URL.
const purlPrefix = "pkg:maven/"

// PURL renders c as a Maven package URL. The extension becomes the "type"
// qualifier unless it is the default, and a system-managed version is
// omitted.
func (c Coordinate) PURL() string {
	c = c.normalize()

	var qualifiers packageurl.Qualifiers
	if c.Classifier != "" {
		qualifiers = append(qualifiers, packageurl.Qualifier{Key: "classifier", Value: c.Classifier})
	}
	if c.Extension != DefaultExtension {
		qualifiers = append(qualifiers, packageurl.Qualifier{Key: "type", Value: c.Extension})
	}

	version := c.Version
	if version == DefaultVersion {
		version = ""
	}
	return packageurl.NewPackageURL(packageurl.TypeMaven, c.Group, c.Name, version, qualifiers, "").ToString()
}

// ParsePURL parses a Maven package URL such as
// pkg:maven/junit/junit@4.12?type=pom.
func ParsePURL(s string) (Coordinate, error) {
	p, err := packageurl.FromString(strings.TrimSpace(s))
	if err != nil {
		return Coordinate{}, errors.Wrap(errors.ErrCodeInvalidCoordinate, err, "bad package URL %q", s)
	}
	if p.Type != packageurl.TypeMaven {
		return Coordinate{}, errors.New(errors.ErrCodeInvalidCoordinate,
			"package URL %q has type %q, expected %q", s, p.Type, packageurl.TypeMaven)
	}

	c := Coordinate{Group: p.Namespace, Name: p.Name, Version: p.Version}
	for _, q := range p.Qualifiers {
		switch q.Key {
		case "type":
			c.Extension = q.Value
		case "classifier":
			c.Classifier = q.Value
		}
	}

	c = c.normalize()
	if err := c.Validate(); err != nil {
		return Coordinate{}, err
	}
	return c, nil
}

// ParseAny accepts either the colon-separated form understood by [Parse]
// or a Maven package URL.
func ParseAny(s string) (Coordinate, error) {
	if strings.HasPrefix(strings.TrimSpace(s), purlPrefix) {
		return ParsePURL(s)
	}
	return Parse(s)
}
