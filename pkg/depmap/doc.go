// Package depmap holds the coordinate remapping graph and the loader that
// fills it from mapping fragment files.
//
// A mapping says that one artifact coordinate (typically an upstream Maven
// spelling) is provided by another (the coordinate of the installed
// artifact). Mappings are version independent: every vertex of the
// [Graph] is a versionless coordinate.
//
// # Translation
//
// [Graph.Translate] returns every coordinate reachable from a starting
// coordinate in depth-first post-order, so the most specific mapped
// coordinates come first and the starting coordinate itself comes last.
// Cycle detection is path sensitive: a node is only skipped when it is
// already on the current path, which means a diamond yields its bottom
// vertex once per branch.
//
// # Fragments
//
// Fragments are XML documents of the form
//
//	<dependencies>
//	  <dependency>
//	    <maven><groupId>org.example</groupId><artifactId>foo</artifactId></maven>
//	    <jpp><groupId>JPP</groupId><artifactId>foo</artifactId></jpp>
//	    <namespace>ns</namespace>
//	  </dependency>
//	</dependencies>
//
// A fragment without an XML declaration is wrapped in a root element
// before parsing, and gzip-compressed fragments are decompressed
// transparently. [Loader] parses fragments concurrently and drops
// fragments that fail to parse without aborting the load.
package depmap
