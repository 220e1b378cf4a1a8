// Package artifact defines the coordinate that identifies a library artifact.
//
// A [Coordinate] is a 5-tuple of group, name, extension, classifier and
// version. Extension, classifier and version have defaults ("jar", "" and
// [DefaultVersion]) so that mapping data, which never carries versions, and
// build requests, which usually do, can be compared on the same footing.
//
// Two derived views are used throughout the resolver:
//
//   - [Coordinate.Versionless]: version forced to [DefaultVersion]. This is
//     the vertex identity of the mapping graph.
//   - [Coordinate.VersionAndExtensionless]: version and extension forced to
//     their defaults. This is the identity used by the blacklist.
//
// Coordinates are comparable values and can be used directly as map keys.
// [Compare] provides the total order used for sorted output.
//
// # String Forms
//
// [Parse] accepts the colon-separated forms used by Maven tooling:
//
//	group:name
//	group:name:version
//	group:name:extension:version
//	group:name:extension:classifier:version
//
// [ParseAny] additionally accepts Maven package URLs
// (pkg:maven/group/name@version?type=extension&classifier=c), and
// [Coordinate.PURL] renders the reverse.
package artifact
