package fileops

import (
	"path/filepath"
	"strings"
)

// StripExtensionSeparator removes a single leading "." from an extension
// if present; otherwise the input is returned unchanged. Pure string
// function, no I/O.
func StripExtensionSeparator(ext string) string {
	return strings.TrimPrefix(ext, ".")
}

// RetargetPath returns newDir + the file name of oldPath by plain string
// concatenation. It performs no existence check and no I/O; the caller is
// responsible for ensuring newDir ends with a path separator.
func RetargetPath(oldPath, newDir string) string {
	return newDir + filepath.Base(oldPath)
}

// normalizeExtensions lowercases the given extensions and strips leading
// separators, returning a set for membership tests. "TXT", "txt" and
// ".txt" all normalize to the same key.
func normalizeExtensions(extensions []string) map[string]struct{} {
	set := make(map[string]struct{}, len(extensions))
	for _, ext := range extensions {
		set[strings.ToLower(StripExtensionSeparator(ext))] = struct{}{}
	}
	return set
}

// extensionOf returns the normalized extension of a file name (lowercase,
// no separator). Files without an extension normalize to "".
func extensionOf(name string) string {
	return strings.ToLower(StripExtensionSeparator(filepath.Ext(name)))
}

// stemOf returns the file name with its extension removed.
func stemOf(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}
