// Package pkg provides the core libraries for sysresolve, a resolver that
// maps Java artifact coordinates to files installed on the system.
//
// # Overview
//
// A coordinate (groupId:artifactId:extension:classifier:version) is
// translated through a dependency map of aliases and fallbacks, then
// looked up in a chain of file repositories. The packages are organized
// into three areas:
//
//  1. Model: [artifact], [layout], [depmap]
//  2. Lookup: [repository], [resolver], [provenance], [counter]
//  3. Wiring: [config], [engine], [metrics], [observability], [errors], [buildinfo]
//
// # Architecture
//
// The data flow for a single request:
//
//	ResolutionRequest
//	         ↓
//	    [resolver] blacklist check
//	         ↓
//	    [resolver] bisect override (optional)
//	         ↓
//	    [depmap] translate to candidate coordinates
//	         ↓
//	    [repository] probe layout paths under each prefix
//	         ↓
//	    [provenance] owning package of the hit (optional)
//	         ↓
//	    ResolutionResult
//
// # Quick Start
//
// Load the configuration and resolve a coordinate:
//
//	cfg, err := config.Resolve("")
//	if err != nil {
//	    return err
//	}
//	eng, err := engine.New(ctx, cfg, engine.Options{})
//	if err != nil {
//	    return err
//	}
//	defer eng.Close()
//
//	req := resolver.NewRequest(artifact.MustParse("junit:junit"))
//	res, err := eng.Resolve(ctx, req)
//
// # Extending
//
// Resolver stages implement [resolver.Resolver] and compose freely: the
// engine wraps its chain in [resolver.Caching], and tests wire fixed
// package sources through [provenance.StaticSource].
//
// [artifact]: github.com/matzehuels/sysresolve/pkg/artifact
// [layout]: github.com/matzehuels/sysresolve/pkg/layout
// [depmap]: github.com/matzehuels/sysresolve/pkg/depmap
// [repository]: github.com/matzehuels/sysresolve/pkg/repository
// [resolver]: github.com/matzehuels/sysresolve/pkg/resolver
// [provenance]: github.com/matzehuels/sysresolve/pkg/provenance
// [counter]: github.com/matzehuels/sysresolve/pkg/counter
// [config]: github.com/matzehuels/sysresolve/pkg/config
// [engine]: github.com/matzehuels/sysresolve/pkg/engine
// [metrics]: github.com/matzehuels/sysresolve/pkg/metrics
// [observability]: github.com/matzehuels/sysresolve/pkg/observability
// [errors]: github.com/matzehuels/sysresolve/pkg/errors
// [buildinfo]: github.com/matzehuels/sysresolve/pkg/buildinfo
// [resolver.Resolver]: github.com/matzehuels/sysresolve/pkg/resolver#Resolver
// [resolver.Caching]: github.com/matzehuels/sysresolve/pkg/resolver#Caching
// [provenance.StaticSource]: github.com/matzehuels/sysresolve/pkg/provenance#StaticSource
package pkg
