// Package repository describes where installed artifacts live on disk.
//
// A [Repository] turns coordinates into candidate file paths without
// touching the filesystem; callers probe the candidates in order. Two
// kinds exist:
//
//   - [Simple]: one [layout.Layout] under one root directory, optionally
//     restricted to artifacts matching a set of stereotypes.
//   - [Compound]: an ordered list of child repositories, optionally placed
//     under a path prefix. Compounds nest, which models an add-on tree
//     layered in front of a base tree.
//
// Candidates are ordered by repository priority first and by coordinate
// order second. Duplicates are preserved because precedence, not
// uniqueness, is what callers depend on.
//
// [Build] assembles a repository tree from configuration [Definition]s.
package repository
