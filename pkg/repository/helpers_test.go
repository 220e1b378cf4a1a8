package repository

import (
	"testing"

	"github.com/matzehuels/sysresolve/pkg/layout"
)

func mustLayout(t *testing.T, name string) layout.Layout {
	t.Helper()
	l, err := layout.Parse(name)
	if err != nil {
		t.Fatal(err)
	}
	return l
}
