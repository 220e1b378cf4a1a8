package resolver

import (
	"path/filepath"

	"github.com/matzehuels/sysresolve/pkg/artifact"
	"github.com/matzehuels/sysresolve/pkg/depmap"
)

// RuntimeRepository is reported as the repository of runtime hits.
const RuntimeRepository = "runtime"

type runtimeStage struct {
	home string
}

func newRuntimeStage(home string) runtimeStage {
	if home == "" {
		return runtimeStage{}
	}
	if canonical, err := filepath.EvalSymlinks(home); err == nil {
		home = canonical
	}
	return runtimeStage{home: home}
}

// resolve maps JAVA_HOME:name coordinates among the translations of a to
// <home>/<name>.<extension of a>.
func (s runtimeStage) resolve(g *depmap.Graph, a artifact.Coordinate) (Result, bool) {
	if s.home == "" {
		return Result{}, false
	}
	for _, cand := range g.Translate(a.VersionAndExtensionless()) {
		if !cand.IsRuntime() {
			continue
		}
		name := cand.Name
		if a.Extension != "" {
			name += "." + a.Extension
		}
		path := filepath.Join(s.home, name)
		if exists(path) {
			return Result{Path: path, Repository: RuntimeRepository}, true
		}
	}
	return Result{}, false
}
