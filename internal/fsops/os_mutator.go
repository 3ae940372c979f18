package fsops

import (
	"fmt"
	"io"
	"os"
)

// OSMutator implements Mutator using real os package calls
type OSMutator struct{}

func (OSMutator) Rename(oldPath, newPath string) error {
	return os.Rename(oldPath, newPath)
}

func (OSMutator) Remove(path string) error {
	return os.Remove(path)
}

func (OSMutator) MkdirAll(path string, perm os.FileMode) error {
	return os.MkdirAll(path, perm)
}

// CreateFile creates a zero-length file at path, truncating any existing
// file. The handle is closed before returning on every path.
func (OSMutator) CreateFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	return f.Close()
}

// CopyFile copies src to dst, overwriting dst if it exists.
func (OSMutator) CopyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copy %s to %s: %w", src, dst, err)
	}
	return out.Close()
}
