package fsops

import "os"

// Mutator abstracts destructive filesystem operations.
// Reads (stat, list) go straight to the os package; only mutations are
// abstracted so tests can prove dry-run code paths never touch the disk.
type Mutator interface {
	Rename(oldPath, newPath string) error
	Remove(path string) error
	MkdirAll(path string, perm os.FileMode) error
	CreateFile(path string) error
	CopyFile(src, dst string) error
}
