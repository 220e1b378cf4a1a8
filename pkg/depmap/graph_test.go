package depmap

import (
	"bytes"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/sysresolve/pkg/artifact"
)

func coord(s string) artifact.Coordinate { return artifact.MustParse(s) }

func count(cs []artifact.Coordinate, c artifact.Coordinate) int {
	n := 0
	for _, x := range cs {
		if x == c {
			n++
		}
	}
	return n
}

func TestTranslateContainsSelf(t *testing.T) {
	g := NewGraph(nil)

	got := g.Translate(coord("foo:bar:1.2"))
	want := []artifact.Coordinate{coord("foo:bar")}
	if !slices.Equal(got, want) {
		t.Errorf("Translate() on empty graph = %v, want %v", got, want)
	}

	g.AddMapping(coord("foo:bar"), coord("JPP:bar"), "")
	got = g.Translate(coord("foo:bar:1.2"))
	if got[len(got)-1] != coord("foo:bar") {
		t.Errorf("last element = %v, want the requested coordinate", got[len(got)-1])
	}
}

func TestTranslateDiamond(t *testing.T) {
	a, b, c, d := coord("g:a"), coord("g:b"), coord("g:c"), coord("g:d")

	g := NewGraph(nil)
	g.AddMapping(a, b, "")
	g.AddMapping(a, c, "")
	g.AddMapping(b, d, "")
	g.AddMapping(c, d, "")

	got := g.Translate(a)
	want := []artifact.Coordinate{d, b, d, c, a}
	if !slices.Equal(got, want) {
		t.Fatalf("Translate() = %v, want %v", got, want)
	}
	if n := count(got, d); n != 2 {
		t.Errorf("bottom vertex appears %d times, want 2", n)
	}
}

func TestTranslateCycle(t *testing.T) {
	a, b, c := coord("g:a"), coord("g:b"), coord("g:c")

	g := NewGraph(nil)
	g.AddMapping(a, b, "")
	g.AddMapping(b, c, "")
	g.AddMapping(c, a, "")
	g.AddMapping(a, a, "")

	got := g.Translate(a)
	want := []artifact.Coordinate{c, b, a}
	if !slices.Equal(got, want) {
		t.Errorf("Translate() = %v, want %v", got, want)
	}
}

func TestTranslateIgnoresVersion(t *testing.T) {
	g := NewGraph(nil)
	g.AddMapping(coord("commons-io:commons-io:2.4"), coord("JPP:commons-io:1.0"), "")

	got := g.Translate(coord("commons-io:commons-io:9.9"))
	if !slices.Contains(got, coord("JPP:commons-io")) {
		t.Errorf("Translate() = %v, want it to contain JPP:commons-io", got)
	}
}

func TestTranslateExtensionIsPartOfIdentity(t *testing.T) {
	g := NewGraph(nil)
	g.AddMapping(coord("g:a"), coord("JPP:a"), "")

	got := g.Translate(coord("g:a:pom:SYSTEM"))
	if len(got) != 1 {
		t.Errorf("Translate(pom) = %v, want only the request itself", got)
	}
}

func TestRelativesOf(t *testing.T) {
	a, b, c, x := coord("g:a"), coord("g:b"), coord("g:c"), coord("g:x")

	g := NewGraph(nil)
	g.AddMapping(a, b, "")
	g.AddMapping(c, b, "")
	g.AddMapping(x, coord("g:y"), "")

	got := g.RelativesOf(a)
	for _, want := range []artifact.Coordinate{a, b} {
		if !slices.Contains(got, want) {
			t.Errorf("RelativesOf(a) = %v, missing %v", got, want)
		}
	}
	if slices.Contains(got, c) {
		t.Errorf("RelativesOf(a) = %v, must not contain sibling source c", got)
	}

	got = g.RelativesOf(b)
	for _, want := range []artifact.Coordinate{a, b, c} {
		if !slices.Contains(got, want) {
			t.Errorf("RelativesOf(b) = %v, missing %v", got, want)
		}
	}
	if slices.Contains(got, x) {
		t.Errorf("RelativesOf(b) = %v, must not contain unrelated x", got)
	}

	lonely := coord("g:lonely")
	if got := g.RelativesOf(lonely); !slices.Equal(got, []artifact.Coordinate{lonely}) {
		t.Errorf("RelativesOf(lonely) = %v, want only itself", got)
	}
}

func TestRelativesOfHasNoDuplicates(t *testing.T) {
	a, b, c, d := coord("g:a"), coord("g:b"), coord("g:c"), coord("g:d")

	g := NewGraph(nil)
	g.AddMapping(a, b, "")
	g.AddMapping(a, c, "")
	g.AddMapping(b, d, "")
	g.AddMapping(c, d, "")

	got := g.RelativesOf(d)
	for _, x := range got {
		if n := count(got, x); n != 1 {
			t.Errorf("RelativesOf(d) contains %v %d times", x, n)
		}
	}
}

func TestAddMappingIdempotent(t *testing.T) {
	g := NewGraph(nil)
	if !g.IsEmpty() {
		t.Fatal("new graph is not empty")
	}

	g.AddMapping(coord("g:a:1"), coord("g:b:2"), "first")
	g.AddMapping(coord("g:a:3"), coord("g:b"), "second")

	if g.Len() != 1 {
		t.Errorf("Len() = %d, want 1", g.Len())
	}
	ns, ok := g.Namespace(coord("g:a"), coord("g:b"))
	if !ok || ns != "first" {
		t.Errorf("Namespace() = %q, %v, want first, true", ns, ok)
	}
	if _, ok := g.Namespace(coord("g:b"), coord("g:a")); ok {
		t.Error("Namespace() of reversed edge should not exist")
	}
}

func TestEdgesSorted(t *testing.T) {
	g := NewGraph(nil)
	g.AddMapping(coord("z:z"), coord("a:a"), "")
	g.AddMapping(coord("a:a"), coord("z:z"), "ns")
	g.AddMapping(coord("a:a"), coord("b:b"), "")

	edges := g.Edges()
	if len(edges) != 3 {
		t.Fatalf("Edges() returned %d edges, want 3", len(edges))
	}
	if edges[0].To != coord("b:b") || edges[1].Namespace != "ns" || edges[2].From != coord("z:z") {
		t.Errorf("Edges() not sorted: %v", edges)
	}
}

func TestConcurrentReads(t *testing.T) {
	g := NewGraph(nil)
	for i := range 50 {
		from := artifact.Of("g", "a", "jar", "", "SYSTEM")
		from.Name = from.Name + string(rune('a'+i%26))
		g.AddMapping(from, coord("JPP:target"), "")
	}

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				_ = g.Translate(coord("g:aa"))
				_ = g.RelativesOf(coord("JPP:target"))
			}
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		g.AddMapping(coord("late:comer"), coord("JPP:target"), "")
	}()
	wg.Wait()
}

func TestTraversalLoggingFollowsLevel(t *testing.T) {
	tests := []struct {
		level log.Level
		want  bool
	}{
		{log.InfoLevel, false},
		{log.DebugLevel, true},
	}

	for _, tt := range tests {
		t.Run(tt.level.String(), func(t *testing.T) {
			var buf bytes.Buffer
			g := NewGraph(log.NewWithOptions(&buf, log.Options{Level: tt.level}))
			g.AddMapping(coord("junit:junit"), coord("JPP:junit"), "")

			g.Translate(coord("junit:junit"))
			g.RelativesOf(coord("JPP:junit"))

			out := buf.String()
			for _, msg := range []string{"translated artifact", "computed relatives"} {
				if got := strings.Contains(out, msg); got != tt.want {
					t.Errorf("log contains %q = %v, want %v; log:\n%s", msg, got, tt.want, out)
				}
			}
		})
	}
}
