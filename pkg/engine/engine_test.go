package engine

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/matzehuels/sysresolve/pkg/artifact"
	"github.com/matzehuels/sysresolve/pkg/config"
	"github.com/matzehuels/sysresolve/pkg/provenance"
	"github.com/matzehuels/sysresolve/pkg/repository"
	"github.com/matzehuels/sysresolve/pkg/resolver"
)

const fragment = `<dependencies>
<dependency>
  <maven><groupId>org.apache.commons</groupId><artifactId>commons-io</artifactId></maven>
  <jpp><groupId>JPP</groupId><artifactId>commons-io</artifactId></jpp>
</dependency>
<dependency>
  <maven><groupId>org.unwanted</groupId><artifactId>thing</artifactId></maven>
  <jpp><groupId>JPP</groupId><artifactId>thing</artifactId></jpp>
</dependency>
<dependency>
  <maven><groupId>org.retired</groupId><artifactId>gone</artifactId></maven>
</dependency>
</dependencies>`

func writeFile(t *testing.T, path, content string) string {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	canonical, err := filepath.EvalSymlinks(path)
	if err != nil {
		t.Fatal(err)
	}
	return canonical
}

// testConfig returns a configuration rooted at a temporary prefix with
// one jpp jar repository and one mapping fragment.
func testConfig(t *testing.T) (*config.Config, string) {
	t.Helper()
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "usr/share/maven-fragments/commons-io.xml"), fragment)

	c := config.Default()
	c.Prefixes = []string{root}
	c.Repositories = []repository.Definition{
		{ID: "jars", Type: "jpp", Root: "usr/share/java", Stereotypes: []repository.Stereotype{{Extension: "jar"}}},
		{ID: "resolve", Type: repository.TypeCompound, Prefix: root, Children: []string{"jars"}},
		{ID: "bisect", Type: "flat", Root: filepath.Join(root, "bisect")},
	}
	c.Blacklist = []string{"JPP:thing"}
	return c, root
}

func newEngine(t *testing.T, c *config.Config, opts Options) *Engine {
	t.Helper()
	if err := c.Validate(); err != nil {
		t.Fatalf("Validate() error: %v", err)
	}
	if opts.Provenance == nil {
		opts.Provenance = provenance.NewIndex(provenance.StaticSource{})
	}
	e, err := New(context.Background(), c, opts)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	t.Cleanup(func() { e.Close() })
	return e
}

func TestEngineResolvesThroughFragments(t *testing.T) {
	c, root := testConfig(t)
	jar := writeFile(t, filepath.Join(root, "usr/share/java/commons-io.jar"), "")

	e := newEngine(t, c, Options{Provenance: provenance.NewIndex(provenance.StaticSource{jar: "apache-commons-io"})})

	if e.Stats.Depmap.Files != 1 || e.Stats.Depmap.Mappings != 3 {
		t.Errorf("Stats = %+v", e.Stats.Depmap)
	}

	res, err := e.Resolve(context.Background(), resolver.Request{
		Artifact:       artifact.MustParse("org.apache.commons:commons-io:2.4"),
		ProviderNeeded: true,
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Path != jar || res.CompatVersion != artifact.DefaultVersion || res.Provider != "apache-commons-io" {
		t.Errorf("Resolve() = %+v", res)
	}
}

func TestEngineBlacklistIncludesRelatives(t *testing.T) {
	c, root := testConfig(t)
	writeFile(t, filepath.Join(root, "usr/share/java/thing.jar"), "")
	e := newEngine(t, c, Options{})

	res, err := e.Resolve(context.Background(), resolver.NewRequest(artifact.MustParse("org.unwanted:thing")))
	if err != nil {
		t.Fatal(err)
	}
	if res.Found() {
		t.Errorf("blacklisted artifact resolved: %+v", res)
	}
}

func TestEngineBlacklistsArtifactsWithoutProvider(t *testing.T) {
	c, root := testConfig(t)
	writeFile(t, filepath.Join(root, "usr/share/java/org.retired/gone.jar"), "")
	e := newEngine(t, c, Options{})

	gone := artifact.MustParse("org.retired:gone")
	if !e.Blacklist.Contains(gone) {
		t.Errorf("blacklist does not contain %v: %v", gone, e.Blacklist.Entries())
	}
	res, err := e.Resolve(context.Background(), resolver.NewRequest(gone.WithVersion("1.0")))
	if err != nil {
		t.Fatal(err)
	}
	if res.Found() {
		t.Errorf("artifact mapped to nothing resolved: %+v", res)
	}
}

func TestEngineBisection(t *testing.T) {
	c, root := testConfig(t)
	system := writeFile(t, filepath.Join(root, "usr/share/java/commons-io.jar"), "")
	override := writeFile(t, filepath.Join(root, "bisect/org.apache.commons-commons-io.jar"), "")
	counterPath := writeFile(t, filepath.Join(root, "counter"), "1\n")
	c.BisectCounter = counterPath

	e := newEngine(t, c, Options{NoCache: true})
	if e.Counter == nil {
		t.Fatal("Counter is nil with bisection configured")
	}

	req := resolver.NewRequest(artifact.MustParse("org.apache.commons:commons-io"))
	for i, want := range []string{override, system} {
		res, err := e.Resolve(context.Background(), req)
		if err != nil {
			t.Fatal(err)
		}
		if res.Path != want {
			t.Errorf("Resolve() #%d = %q, want %q", i, res.Path, want)
		}
	}
}

func TestEngineCaches(t *testing.T) {
	c, root := testConfig(t)
	jar := filepath.Join(root, "usr/share/java/commons-io.jar")
	writeFile(t, jar, "")
	e := newEngine(t, c, Options{})

	req := resolver.NewRequest(artifact.MustParse("org.apache.commons:commons-io"))
	first, _ := e.Resolve(context.Background(), req)
	if err := os.Remove(jar); err != nil {
		t.Fatal(err)
	}
	second, _ := e.Resolve(context.Background(), req)
	if first != second || !second.Found() {
		t.Errorf("cached result changed: %+v then %+v", first, second)
	}
}

func TestEngineConfigErrors(t *testing.T) {
	c, _ := testConfig(t)
	c.ResolveRepository = "missing"
	if _, err := New(context.Background(), c, Options{Provenance: provenance.NewIndex(provenance.StaticSource{})}); err == nil {
		t.Error("New() accepted an undefined resolve repository")
	}

	c, _ = testConfig(t)
	c.BisectCounter = filepath.Join(t.TempDir(), "missing-dir", "counter")
	if _, err := New(context.Background(), c, Options{Provenance: provenance.NewIndex(provenance.StaticSource{})}); err == nil {
		t.Error("New() accepted an unusable counter path")
	}
}
