package depmap

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/sysresolve/pkg/artifact"
)

// ToDOT converts the graph to Graphviz DOT. Vertices are labelled with
// their group:name[:extension] form; namespaced edges carry the namespace
// as a dashed, labelled edge.
func (g *Graph) ToDOT() string {
	edges := g.Edges()

	var buf bytes.Buffer
	buf.WriteString("digraph depmap {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=12];\n")
	buf.WriteString("\n")

	seen := make(map[artifact.Coordinate]bool)
	for _, e := range edges {
		for _, c := range []artifact.Coordinate{e.From, e.To} {
			if seen[c] {
				continue
			}
			seen[c] = true
			fmt.Fprintf(&buf, "  %q [label=%q];\n", c.String(), dotLabel(c))
		}
	}

	buf.WriteString("\n")
	for _, e := range edges {
		if e.Namespace == "" {
			fmt.Fprintf(&buf, "  %q -> %q;\n", e.From.String(), e.To.String())
			continue
		}
		fmt.Fprintf(&buf, "  %q -> %q [style=dashed, label=%q];\n", e.From.String(), e.To.String(), e.Namespace)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func dotLabel(c artifact.Coordinate) string {
	parts := []string{c.Group, c.Name}
	if c.Extension != artifact.DefaultExtension {
		parts = append(parts, c.Extension)
	}
	if c.Classifier != "" {
		parts = append(parts, c.Classifier)
	}
	return strings.Join(parts, ":")
}

// RenderSVG renders a DOT document to SVG using the embedded Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
