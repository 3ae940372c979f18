// Package fileops provides stateless file and directory primitives: size
// queries, non-recursive listings with glob or extension filters,
// oldest/newest selection by modification time, and move/copy/delete/create
// operations with defensive semantics.
//
// Two signaling channels are kept distinct throughout the package and
// callers rely on telling them apart:
//
//   - expected absence (nothing matched, nothing to do) surfaces as an
//     empty slice, a false bool, or a silent no-op, never as an error
//   - unexpected conditions (missing source, permission denial, empty
//     argument set) surface as errors, with fs.ErrNotExist reachable via
//     errors.Is for missing paths
package fileops

import (
	"errors"
	"time"

	"filedrover/internal/fsops"
)

// ErrNoExtensions is returned when an operation requiring an extension
// filter is called with an empty set.
var ErrNoExtensions = errors.New("no extensions specified")

// FileMetadata describes a file at the moment it was statted. Values are
// read fresh from the filesystem per call and never cached; they can go
// stale if another process mutates the file afterwards.
type FileMetadata struct {
	Path    string
	Size    int64
	ModTime time.Time
}

// Ops performs file operations through a Mutator, so destructive calls can
// be faked in tests. Read-only queries always hit the real filesystem.
type Ops struct {
	fs fsops.Mutator
}

// New creates an Ops using the given mutator.
func New(fs fsops.Mutator) *Ops {
	if fs == nil {
		fs = fsops.OSMutator{}
	}
	return &Ops{fs: fs}
}

// std backs the package-level convenience functions.
var std = New(fsops.OSMutator{})

// MoveFile moves the file at src into destDir using the default OS-backed Ops.
func MoveFile(src, destDir string) (bool, error) {
	return std.MoveFile(src, destDir)
}

// MoveFiles moves each listed file into destDir using the default OS-backed Ops.
func MoveFiles(files []FileMetadata, destDir string) error {
	return std.MoveFiles(files, destDir)
}

// MoveFilesByExtensions moves matching files from srcDir into destDir using
// the default OS-backed Ops.
func MoveFilesByExtensions(srcDir, destDir string, extensions []string) error {
	return std.MoveFilesByExtensions(srcDir, destDir, extensions)
}

// MoveAndRenameFile moves src to the full destination path destPath using
// the default OS-backed Ops.
func MoveAndRenameFile(src, destPath string) (bool, error) {
	return std.MoveAndRenameFile(src, destPath)
}

// CopyFile copies src into destDir using the default OS-backed Ops.
func CopyFile(src, destDir string) error {
	return std.CopyFile(src, destDir)
}

// DeleteAllFilesInDirectory deletes every immediate file in dir using the
// default OS-backed Ops.
func DeleteAllFilesInDirectory(dir string) error {
	return std.DeleteAllFilesInDirectory(dir)
}

// DeleteAllFilesInDirectorySafe deletes every immediate file in dir with
// per-file guards using the default OS-backed Ops.
func DeleteAllFilesInDirectorySafe(dir string) error {
	return std.DeleteAllFilesInDirectorySafe(dir)
}

// DeleteFileSafe deletes path if it exists using the default OS-backed Ops.
func DeleteFileSafe(path string) error {
	return std.DeleteFileSafe(path)
}

// CreateEmptyFile creates a zero-length file at path using the default
// OS-backed Ops.
func CreateEmptyFile(path string) error {
	return std.CreateEmptyFile(path)
}
