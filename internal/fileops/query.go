package fileops

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// GetFileSize returns the byte length of the file at path. A missing file
// is an error (errors.Is(err, fs.ErrNotExist)), not an empty result.
func GetFileSize(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, fmt.Errorf("stat %s: %w", path, err)
	}
	return info.Size(), nil
}

// IsFileSizeZero reports whether the file at path has zero length. Same
// failure behavior as GetFileSize.
func IsFileSizeZero(path string) (bool, error) {
	size, err := GetFileSize(path)
	if err != nil {
		return false, err
	}
	return size == 0, nil
}

// ListFiles returns the immediate files of dir whose names match pattern
// (shell glob: "*" any run, "?" single char). Subdirectories are excluded
// and the listing is not recursive. An empty pattern matches everything.
// A missing directory is an error; a directory with no matches returns an
// empty slice.
//
// Files that vanish between the directory read and the per-entry stat are
// skipped rather than surfaced, so a concurrent writer cannot fail an
// otherwise valid listing.
func ListFiles(dir, pattern string) ([]FileMetadata, error) {
	return listFiles(dir, func(name string) (bool, error) {
		return matchesPattern(pattern, name)
	})
}

// ListFilesByExtensions returns the immediate files of dir whose extension
// matches any entry in extensions. Matching is case-insensitive and
// tolerates a leading "." on either side. An empty extension set is an
// error (ErrNoExtensions).
func ListFilesByExtensions(dir string, extensions []string) ([]FileMetadata, error) {
	if len(extensions) == 0 {
		return nil, ErrNoExtensions
	}
	want := normalizeExtensions(extensions)
	return listFiles(dir, func(name string) (bool, error) {
		_, ok := want[extensionOf(name)]
		return ok, nil
	})
}

// OldestFile returns the file in dir matching pattern with the minimum
// modification time. The second return is false when nothing matched;
// an empty listing is not an error. Ties keep the first file encountered
// in listing order.
func OldestFile(dir, pattern string) (FileMetadata, bool, error) {
	files, err := ListFiles(dir, pattern)
	if err != nil {
		return FileMetadata{}, false, err
	}
	md, ok := selectByModTime(files, older)
	return md, ok, nil
}

// OldestFileByExtensions is OldestFile with an extension filter instead of
// a glob pattern.
func OldestFileByExtensions(dir string, extensions []string) (FileMetadata, bool, error) {
	files, err := ListFilesByExtensions(dir, extensions)
	if err != nil {
		return FileMetadata{}, false, err
	}
	md, ok := selectByModTime(files, older)
	return md, ok, nil
}

// NewestFile returns the file in dir matching pattern with the maximum
// modification time. Same absent and tie-break semantics as OldestFile.
func NewestFile(dir, pattern string) (FileMetadata, bool, error) {
	files, err := ListFiles(dir, pattern)
	if err != nil {
		return FileMetadata{}, false, err
	}
	md, ok := selectByModTime(files, newer)
	return md, ok, nil
}

// NewestFileByExtensions is NewestFile with an extension filter.
func NewestFileByExtensions(dir string, extensions []string) (FileMetadata, bool, error) {
	files, err := ListFilesByExtensions(dir, extensions)
	if err != nil {
		return FileMetadata{}, false, err
	}
	md, ok := selectByModTime(files, newer)
	return md, ok, nil
}

// FileExistsIgnoringExtension reports whether the directory of path holds
// at least one file whose name, extension aside, equals the base name of
// path. Zero matches is false, not an error; an unreadable directory is.
func FileExistsIgnoringExtension(path string) (bool, error) {
	dir := filepath.Dir(path)
	stem := filepath.Base(path)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return false, fmt.Errorf("read dir %s: %w", dir, err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if stemOf(entry.Name()) == stem {
			return true, nil
		}
	}
	return false, nil
}

// listFiles lists immediate regular entries of dir accepted by match.
func listFiles(dir string, match func(name string) (bool, error)) ([]FileMetadata, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir %s: %w", dir, err)
	}

	files := make([]FileMetadata, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ok, err := match(entry.Name())
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			// Entry vanished between ReadDir and stat
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("stat %s: %w", filepath.Join(dir, entry.Name()), err)
		}
		files = append(files, FileMetadata{
			Path:    filepath.Join(dir, entry.Name()),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}
	return files, nil
}

func matchesPattern(pattern, name string) (bool, error) {
	// Empty pattern means match-all; the listing call itself is the filter
	if pattern == "" || pattern == "*" {
		return true, nil
	}
	ok, err := filepath.Match(pattern, name)
	if err != nil {
		return false, fmt.Errorf("pattern %q: %w", pattern, err)
	}
	return ok, nil
}

func older(candidate, current FileMetadata) bool {
	return candidate.ModTime.Before(current.ModTime)
}

func newer(candidate, current FileMetadata) bool {
	return candidate.ModTime.After(current.ModTime)
}

// selectByModTime returns the first file that wins the strict comparison
// against all others, preserving listing order on ties.
func selectByModTime(files []FileMetadata, wins func(candidate, current FileMetadata) bool) (FileMetadata, bool) {
	if len(files) == 0 {
		return FileMetadata{}, false
	}
	best := files[0]
	for _, f := range files[1:] {
		if wins(f, best) {
			best = f
		}
	}
	return best, true
}
