package fileops

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// MoveFile moves the file at src into destDir, keeping its name. When a
// same-named file already exists at the destination the move is declined
// and (false, nil) is returned: collision is a no-op, not a failure, so the
// first writer wins instead of tripping the rename primitive's hard failure
// on pre-existing targets. A missing src is an error.
func (o *Ops) MoveFile(src, destDir string) (bool, error) {
	if _, err := os.Stat(src); err != nil {
		return false, fmt.Errorf("stat %s: %w", src, err)
	}

	dest := filepath.Join(destDir, filepath.Base(src))
	exists, err := pathExists(dest)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	if err := o.fs.Rename(src, dest); err != nil {
		return false, fmt.Errorf("move %s to %s: %w", src, dest, err)
	}
	return true, nil
}

// MoveFiles applies MoveFile to each listed file independently. A single
// file's collision skip or failure never aborts the remainder; failures are
// collected and returned joined. Partial completion is expected and normal.
func (o *Ops) MoveFiles(files []FileMetadata, destDir string) error {
	var errs []error
	for _, f := range files {
		if _, err := o.MoveFile(f.Path, destDir); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// MoveFilesByExtensions moves every file in srcDir with a matching
// extension into destDir, with the same per-file isolation as MoveFiles.
func (o *Ops) MoveFilesByExtensions(srcDir, destDir string, extensions []string) error {
	files, err := ListFilesByExtensions(srcDir, extensions)
	if err != nil {
		return err
	}
	return o.MoveFiles(files, destDir)
}

// MoveAndRenameFile moves src to the full path destPath, creating missing
// intermediate directories first. The destination name may differ from the
// source name. Same collision-skip policy as MoveFile.
func (o *Ops) MoveAndRenameFile(src, destPath string) (bool, error) {
	if _, err := os.Stat(src); err != nil {
		return false, fmt.Errorf("stat %s: %w", src, err)
	}

	if err := o.fs.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return false, fmt.Errorf("create dir %s: %w", filepath.Dir(destPath), err)
	}

	exists, err := pathExists(destPath)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	if err := o.fs.Rename(src, destPath); err != nil {
		return false, fmt.Errorf("move %s to %s: %w", src, destPath, err)
	}
	return true, nil
}

// CopyFile copies src into destDir under its original name, overwriting any
// existing file there. Unlike move, copy overwrites unconditionally; the
// asymmetry is intentional. A missing src is an error.
func (o *Ops) CopyFile(src, destDir string) error {
	if _, err := os.Stat(src); err != nil {
		return fmt.Errorf("stat %s: %w", src, err)
	}
	dest := filepath.Join(destDir, filepath.Base(src))
	return o.fs.CopyFile(src, dest)
}

// DeleteAllFilesInDirectory deletes every immediate file in dir, in listing
// order. The first deletion error aborts and is returned; remaining files
// are left untouched and nothing is rolled back. A file vanishing mid-batch
// surfaces as an error here; use the Safe variant to tolerate it.
func (o *Ops) DeleteAllFilesInDirectory(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read dir %s: %w", dir, err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := o.fs.Remove(path); err != nil {
			return fmt.Errorf("delete %s: %w", path, err)
		}
	}
	return nil
}

// DeleteAllFilesInDirectorySafe deletes every immediate file in dir with
// each deletion guarded individually: a file already gone at deletion time
// is skipped silently, and any other per-file error (permission, lock) is
// collected without aborting the remaining deletions. Collected errors are
// returned joined.
func (o *Ops) DeleteAllFilesInDirectorySafe(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read dir %s: %w", dir, err)
	}
	var errs []error
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := o.fs.Remove(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			errs = append(errs, fmt.Errorf("delete %s: %w", path, err))
		}
	}
	return errors.Join(errs...)
}

// DeleteFileSafe deletes path only if it currently exists. A non-existent
// path is a silent no-op, which makes the call idempotent.
func (o *Ops) DeleteFileSafe(path string) error {
	exists, err := pathExists(path)
	if err != nil {
		return err
	}
	if !exists {
		return nil
	}
	if err := o.fs.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete %s: %w", path, err)
	}
	return nil
}

// CreateEmptyFile creates a new zero-length file at path, truncating any
// file already there. No handle is returned; acquisition and release happen
// within the call.
func (o *Ops) CreateEmptyFile(path string) error {
	if err := o.fs.CreateFile(path); err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	return nil
}

func pathExists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("stat %s: %w", path, err)
}
