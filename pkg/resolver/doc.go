// Package resolver turns artifact coordinates into installed files.
//
// [Chain] runs an ordered set of stages and stops at the first hit:
//
//  1. Bisection: while a shared [counter.Counter] is positive, artifacts
//     are served from the bisection repository, and only from there.
//  2. Runtime: coordinates that map to the JAVA_HOME group resolve to
//     files directly under the runtime home directory.
//  3. System: the coordinate and everything the mapping graph translates
//     it to are probed in the configured repository, first at the
//     requested version and then at the default version.
//
// Hits are canonicalized by following symlinks. A coordinate that cannot
// be resolved produces an empty [Result], never an error; the only error
// a chain returns is a failure of the bisection counter, which is fatal.
//
// [Caching] memoizes any [Resolver]. [Blacklist] lists coordinates that
// must never resolve, together with everything related to them through
// the mapping graph.
package resolver
