package resolver

import (
	"slices"
	"testing"

	"github.com/matzehuels/sysresolve/pkg/artifact"
	"github.com/matzehuels/sysresolve/pkg/depmap"
)

func TestBlacklistPlaceholders(t *testing.T) {
	b := NewBlacklist(nil, nil)
	for _, c := range []artifact.Coordinate{
		artifact.Dummy,
		artifact.DummyJPP,
		artifact.MustParse("org.fedoraproject.xmvn:xmvn-void:pom:1.0"),
	} {
		if !b.Contains(c) {
			t.Errorf("Contains(%v) = false", c)
		}
	}
	if b.Contains(artifact.MustParse("junit:junit")) {
		t.Error("Contains(junit) = true")
	}
}

func TestBlacklistRelatives(t *testing.T) {
	g := depmap.NewGraph(nil)
	g.AddMapping(artifact.New("org.unwanted", "thing"), artifact.New("JPP", "thing"), "")
	g.AddMapping(artifact.New("unwanted", "thing"), artifact.New("JPP", "thing"), "")
	g.AddMapping(artifact.New("other", "dummy-alias"), artifact.DummyJPP, "")

	b := NewBlacklist(g, []artifact.Coordinate{artifact.New("JPP", "thing")})

	for _, s := range []string{"org.unwanted:thing:1.0", "unwanted:thing", "JPP:thing", "other:dummy-alias"} {
		if !b.Contains(artifact.MustParse(s)) {
			t.Errorf("Contains(%s) = false, want true", s)
		}
	}
}

func TestBlacklistAddAndEntries(t *testing.T) {
	b := NewBlacklist(nil, nil)
	b.Add(artifact.MustParse("a:b:war:3.0"))

	if !b.Contains(artifact.New("a", "b")) {
		t.Error("Add() entry not found")
	}

	got := b.Entries()
	want := []artifact.Coordinate{artifact.New("JPP/maven", "empty-dep"), artifact.New("a", "b"), artifact.Dummy}
	slices.SortFunc(want, artifact.Compare)
	if !slices.Equal(got, want) {
		t.Errorf("Entries() = %v, want %v", got, want)
	}
}
