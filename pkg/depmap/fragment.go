package depmap

import (
	"bufio"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/matzehuels/sysresolve/pkg/artifact"
)

var (
	// ErrMissingSource is returned when a <dependency> has no <maven> child.
	ErrMissingSource = errors.New("dependency has no <maven> element")

	// ErrDuplicateElement is returned when a coordinate element repeats a
	// child that may appear at most once.
	ErrDuplicateElement = errors.New("element may appear at most once")

	// ErrMissingElement is returned when a coordinate element lacks a
	// required child.
	ErrMissingElement = errors.New("required element is missing")
)

var gzipMagic = []byte{0x1f, 0x8b}

type dependencyElem struct {
	Maven     []coordElem `xml:"maven"`
	JPP       []coordElem `xml:"jpp"`
	Namespace []string    `xml:"namespace"`
}

type coordElem struct {
	GroupID    []string `xml:"groupId"`
	ArtifactID []string `xml:"artifactId"`
	Extension  []string `xml:"extension"`
	Classifier []string `xml:"classifier"`
	Version    []string `xml:"version"`
}

// ReadFragment parses the fragment file at path.
func ReadFragment(path string) ([]Edge, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	edges, err := ParseFragment(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return edges, nil
}

// ParseFragment parses one mapping fragment. Gzip input is detected by its
// magic number. Content that does not start with an XML declaration is
// treated as a sequence of <dependency> elements and wrapped in a root
// element. Every <dependency> anywhere in the document contributes one
// edge; a dependency without a <jpp> target maps to [artifact.Dummy],
// marking an artifact that nothing on the system provides.
func ParseFragment(r io.Reader) ([]Edge, error) {
	data, err := readMaybeCompressed(r)
	if err != nil {
		return nil, err
	}
	if !hasXMLDecl(data) {
		data = wrap(data)
	}

	var edges []Edge
	dec := xml.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return edges, nil
		}
		if err != nil {
			return nil, fmt.Errorf("parse fragment: %w", err)
		}

		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != "dependency" {
			continue
		}

		var dep dependencyElem
		if err := dec.DecodeElement(&dep, &se); err != nil {
			return nil, fmt.Errorf("parse dependency: %w", err)
		}
		edge, ok, err := dep.edge()
		if err != nil {
			return nil, err
		}
		if ok {
			edges = append(edges, edge)
		}
	}
}

func (d dependencyElem) edge() (Edge, bool, error) {
	if len(d.Maven) == 0 {
		return Edge{}, false, ErrMissingSource
	}
	from, err := d.Maven[0].coordinate()
	if err != nil {
		return Edge{}, false, fmt.Errorf("<maven>: %w", err)
	}
	ns, err := single("namespace", d.Namespace, "")
	if err != nil {
		return Edge{}, false, err
	}
	if len(d.JPP) == 0 {
		return Edge{From: from, To: artifact.Dummy, Namespace: ns}, true, nil
	}
	to, err := d.JPP[0].coordinate()
	if err != nil {
		return Edge{}, false, fmt.Errorf("<jpp>: %w", err)
	}
	return Edge{From: from, To: to, Namespace: ns}, true, nil
}

func (e coordElem) coordinate() (artifact.Coordinate, error) {
	group, err := required("groupId", e.GroupID)
	if err != nil {
		return artifact.Coordinate{}, err
	}
	name, err := required("artifactId", e.ArtifactID)
	if err != nil {
		return artifact.Coordinate{}, err
	}
	ext, err := single("extension", e.Extension, artifact.DefaultExtension)
	if err != nil {
		return artifact.Coordinate{}, err
	}
	cls, err := single("classifier", e.Classifier, "")
	if err != nil {
		return artifact.Coordinate{}, err
	}
	// Mappings are versionless; a <version> is tolerated but ignored.
	if _, err := single("version", e.Version, ""); err != nil {
		return artifact.Coordinate{}, err
	}

	c := artifact.Of(group, name, ext, cls, artifact.DefaultVersion)
	if err := c.Validate(); err != nil {
		return artifact.Coordinate{}, err
	}
	return c, nil
}

func single(tag string, values []string, def string) (string, error) {
	switch len(values) {
	case 0:
		return def, nil
	case 1:
		return strings.TrimSpace(values[0]), nil
	default:
		return "", fmt.Errorf("<%s>: %w", tag, ErrDuplicateElement)
	}
}

func required(tag string, values []string) (string, error) {
	if len(values) == 0 {
		return "", fmt.Errorf("<%s>: %w", tag, ErrMissingElement)
	}
	return single(tag, values, "")
}

func readMaybeCompressed(r io.Reader) ([]byte, error) {
	br := bufio.NewReader(r)
	magic, _ := br.Peek(len(gzipMagic))
	if !bytes.Equal(magic, gzipMagic) {
		return io.ReadAll(br)
	}

	zr, err := gzip.NewReader(br)
	if err != nil {
		return nil, fmt.Errorf("open compressed fragment: %w", err)
	}
	defer zr.Close()

	data, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("decompress fragment: %w", err)
	}
	return data, nil
}

func hasXMLDecl(data []byte) bool {
	return len(data) >= 5 && bytes.EqualFold(data[:5], []byte("<?xml"))
}

func wrap(data []byte) []byte {
	out := make([]byte, 0, len(data)+len("<dependencies></dependencies>"))
	out = append(out, "<dependencies>"...)
	out = append(out, data...)
	return append(out, "</dependencies>"...)
}
