package errors

import (
	"strings"
	"unicode"
)

// ValidateCoordinatePart validates one component of an artifact coordinate
// (group, name, extension, classifier or version).
//
// The validation rules are intentionally conservative:
//   - Required parts cannot be empty
//   - No control characters or null bytes
//   - No colons, which separate coordinate parts
//   - No path traversal sequences (..) or backslashes, since parts become path segments
//   - Maximum length of 256 characters
func ValidateCoordinatePart(field, value string, required bool) error {
	if value == "" {
		if required {
			return New(ErrCodeInvalidCoordinate, "%s cannot be empty", field)
		}
		return nil
	}

	if len(value) > 256 {
		return New(ErrCodeInvalidCoordinate, "%s too long (max 256 characters)", field)
	}

	for _, r := range value {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidCoordinate, "%s contains invalid control characters", field)
		}
	}

	for _, pattern := range []string{":", "..", "\\"} {
		if strings.Contains(value, pattern) {
			return New(ErrCodeInvalidCoordinate, "%s contains invalid characters: %q", field, pattern)
		}
	}

	return nil
}

// ValidatePath validates a repository root or prefix from configuration.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 4096 characters
//   - No null bytes or control characters
//   - No path traversal sequences (..)
//   - No backslashes (Windows-style paths)
//
// Both absolute and relative paths are accepted; relative roots are
// interpreted against the configured prefixes.
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 4096
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	for _, seg := range strings.Split(path, "/") {
		if seg == ".." {
			return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
		}
	}

	if strings.Contains(path, "\\") {
		return New(ErrCodeInvalidPath, "path cannot contain backslashes")
	}

	return nil
}
