package fileops

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"filedrover/internal/fsops"
)

func TestMoveFileRelocates(t *testing.T) {
	srcDir := t.TempDir()
	destDir := t.TempDir()
	src := filepath.Join(srcDir, "a.txt")
	writeFile(t, src, "payload", time.Time{})

	moved, err := MoveFile(src, destDir)
	if err != nil {
		t.Fatalf("MoveFile failed: %v", err)
	}
	if !moved {
		t.Fatal("MoveFile returned false, want true")
	}
	if _, err := os.Stat(src); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("source still exists after move")
	}
	content, err := os.ReadFile(filepath.Join(destDir, "a.txt"))
	if err != nil {
		t.Fatalf("destination missing after move: %v", err)
	}
	if string(content) != "payload" {
		t.Errorf("destination content = %q, want %q", content, "payload")
	}
}

func TestMoveFileCollisionIsNoOp(t *testing.T) {
	srcDir := t.TempDir()
	destDir := t.TempDir()
	src := filepath.Join(srcDir, "a.txt")
	preexisting := filepath.Join(destDir, "a.txt")
	writeFile(t, src, "incoming", time.Time{})
	writeFile(t, preexisting, "original", time.Time{})

	moved, err := MoveFile(src, destDir)
	if err != nil {
		t.Fatalf("MoveFile failed: %v", err)
	}
	if moved {
		t.Error("MoveFile returned true on collision, want false")
	}

	// First writer wins: both files untouched
	if content, _ := os.ReadFile(preexisting); string(content) != "original" {
		t.Errorf("pre-existing destination was overwritten: %q", content)
	}
	if content, _ := os.ReadFile(src); string(content) != "incoming" {
		t.Errorf("source was mutated on collision: %q", content)
	}
}

func TestMoveFileMissingSource(t *testing.T) {
	_, err := MoveFile(filepath.Join(t.TempDir(), "nope"), t.TempDir())
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected fs.ErrNotExist, got %v", err)
	}
}

func TestMoveFilesPartialFailureContinues(t *testing.T) {
	srcDir := t.TempDir()
	destDir := t.TempDir()
	a := filepath.Join(srcDir, "a.txt")
	b := filepath.Join(srcDir, "b.txt")
	writeFile(t, a, "a", time.Time{})
	writeFile(t, b, "b", time.Time{})

	files := []FileMetadata{
		{Path: filepath.Join(srcDir, "vanished.txt")}, // never existed
		{Path: a},
		{Path: b},
	}

	err := MoveFiles(files, destDir)
	if err == nil {
		t.Fatal("expected joined error for vanished file")
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("joined error should carry fs.ErrNotExist, got %v", err)
	}

	// The failure of the first file must not have aborted the rest
	for _, name := range []string{"a.txt", "b.txt"} {
		if _, err := os.Stat(filepath.Join(destDir, name)); err != nil {
			t.Errorf("%s was not moved despite earlier failure: %v", name, err)
		}
	}
}

func TestMoveFilesByExtensions(t *testing.T) {
	srcDir := t.TempDir()
	destDir := t.TempDir()
	writeFile(t, filepath.Join(srcDir, "a.txt"), "a", time.Time{})
	writeFile(t, filepath.Join(srcDir, "b.log"), "b", time.Time{})
	writeFile(t, filepath.Join(srcDir, "c.TXT"), "c", time.Time{})

	if err := MoveFilesByExtensions(srcDir, destDir, []string{".txt"}); err != nil {
		t.Fatalf("MoveFilesByExtensions failed: %v", err)
	}

	moved, err := ListFiles(destDir, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(moved) != 2 {
		t.Errorf("moved %d files, want 2", len(moved))
	}
	if _, err := os.Stat(filepath.Join(srcDir, "b.log")); err != nil {
		t.Errorf("non-matching b.log should stay in source: %v", err)
	}

	if err := MoveFilesByExtensions(srcDir, destDir, nil); !errors.Is(err, ErrNoExtensions) {
		t.Errorf("expected ErrNoExtensions, got %v", err)
	}
}

func TestMoveAndRenameFileCreatesIntermediateDirs(t *testing.T) {
	srcDir := t.TempDir()
	destRoot := t.TempDir()
	src := filepath.Join(srcDir, "a.txt")
	writeFile(t, src, "payload", time.Time{})

	destPath := filepath.Join(destRoot, "deep", "nested", "renamed.txt")
	moved, err := MoveAndRenameFile(src, destPath)
	if err != nil {
		t.Fatalf("MoveAndRenameFile failed: %v", err)
	}
	if !moved {
		t.Fatal("MoveAndRenameFile returned false, want true")
	}
	if content, err := os.ReadFile(destPath); err != nil || string(content) != "payload" {
		t.Errorf("destination = %q, %v", content, err)
	}

	// Second identical call: destination now exists, source recreated
	writeFile(t, src, "second", time.Time{})
	moved, err = MoveAndRenameFile(src, destPath)
	if err != nil {
		t.Fatalf("second MoveAndRenameFile failed: %v", err)
	}
	if moved {
		t.Error("second MoveAndRenameFile returned true, want collision skip")
	}
	if content, _ := os.ReadFile(destPath); string(content) != "payload" {
		t.Errorf("collision overwrote destination: %q", content)
	}
	if _, err := os.Stat(src); err != nil {
		t.Errorf("source should be untouched on collision: %v", err)
	}
}

func TestCopyFileOverwrites(t *testing.T) {
	srcDir := t.TempDir()
	destDir := t.TempDir()
	src := filepath.Join(srcDir, "a.txt")
	dest := filepath.Join(destDir, "a.txt")
	writeFile(t, src, "fresh", time.Time{})
	writeFile(t, dest, "stale", time.Time{})

	if err := CopyFile(src, destDir); err != nil {
		t.Fatalf("CopyFile failed: %v", err)
	}
	if content, _ := os.ReadFile(dest); string(content) != "fresh" {
		t.Errorf("destination = %q, want overwrite with %q", content, "fresh")
	}
	if _, err := os.Stat(src); err != nil {
		t.Errorf("copy must not remove source: %v", err)
	}
}

func TestCopyFileMissingSource(t *testing.T) {
	err := CopyFile(filepath.Join(t.TempDir(), "nope"), t.TempDir())
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected fs.ErrNotExist, got %v", err)
	}
}

func TestDeleteAllFilesInDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a"), "a", time.Time{})
	writeFile(t, filepath.Join(dir, "b"), "b", time.Time{})
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0o755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(dir, "sub", "keep"), "k", time.Time{})

	if err := DeleteAllFilesInDirectory(dir); err != nil {
		t.Fatalf("DeleteAllFilesInDirectory failed: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || !entries[0].IsDir() {
		t.Errorf("expected only the subdirectory to survive, got %v", entries)
	}
	if _, err := os.Stat(filepath.Join(dir, "sub", "keep")); err != nil {
		t.Errorf("file inside subdirectory must not be touched: %v", err)
	}
}

func TestDeleteAllFilesInDirectoryAbortsOnFirstError(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a"), "a", time.Time{})
	writeFile(t, filepath.Join(dir, "b"), "b", time.Time{})

	fake := &fsops.FakeMutator{Err: errors.New("locked")}
	ops := New(fake)

	err := ops.DeleteAllFilesInDirectory(dir)
	if err == nil {
		t.Fatal("expected error from first failed deletion")
	}
	// Strict variant stops at the first failure
	if len(fake.Calls) != 1 {
		t.Errorf("expected 1 delete attempt before abort, got %d: %v", len(fake.Calls), fake.Calls)
	}
}

func TestDeleteAllFilesInDirectorySafeContinuesPastErrors(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a"), "a", time.Time{})
	writeFile(t, filepath.Join(dir, "b"), "b", time.Time{})
	writeFile(t, filepath.Join(dir, "c"), "c", time.Time{})

	fake := &fsops.FakeMutator{Err: errors.New("locked")}
	ops := New(fake)

	err := ops.DeleteAllFilesInDirectorySafe(dir)
	if err == nil {
		t.Fatal("expected joined errors")
	}
	if len(fake.Calls) != 3 {
		t.Errorf("safe variant must attempt every file, got %d attempts: %v", len(fake.Calls), fake.Calls)
	}
}

func TestDeleteAllFilesInDirectorySafeSwallowsVanished(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a"), "a", time.Time{})

	fake := &fsops.FakeMutator{Err: fs.ErrNotExist}
	ops := New(fake)

	// Already-gone is the expected race outcome, not an error
	if err := ops.DeleteAllFilesInDirectorySafe(dir); err != nil {
		t.Errorf("vanished file should be swallowed, got %v", err)
	}
}

func TestDeleteFileSafeIdempotent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")
	writeFile(t, path, "a", time.Time{})

	if err := DeleteFileSafe(path); err != nil {
		t.Fatalf("first DeleteFileSafe failed: %v", err)
	}
	if _, err := os.Stat(path); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("file still exists after DeleteFileSafe")
	}
	if err := DeleteFileSafe(path); err != nil {
		t.Errorf("second DeleteFileSafe must be a no-op, got %v", err)
	}
}

func TestCreateEmptyFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "touched")

	if err := CreateEmptyFile(path); err != nil {
		t.Fatalf("CreateEmptyFile failed: %v", err)
	}
	if zero, err := IsFileSizeZero(path); err != nil || !zero {
		t.Errorf("IsFileSizeZero after create = %v, %v, want true, nil", zero, err)
	}

	// Re-creating truncates existing content
	writeFile(t, path, "not empty anymore", time.Time{})
	if err := CreateEmptyFile(path); err != nil {
		t.Fatalf("CreateEmptyFile over existing file failed: %v", err)
	}
	if size, _ := GetFileSize(path); size != 0 {
		t.Errorf("size after re-create = %d, want 0", size)
	}
}

func TestEndToEndSweepScenario(t *testing.T) {
	in := t.TempDir()
	outRoot := t.TempDir()

	t1 := time.Now().Add(-2 * time.Hour).Truncate(time.Second)
	t2 := t1.Add(time.Hour)
	aTxt := filepath.Join(in, "a.txt")
	writeFile(t, aTxt, "a", t1)
	writeFile(t, filepath.Join(in, "b.log"), "b", t2)

	files, err := ListFilesByExtensions(in, []string{"txt"})
	if err != nil {
		t.Fatalf("ListFilesByExtensions failed: %v", err)
	}
	if len(files) != 1 || filepath.Base(files[0].Path) != "a.txt" {
		t.Fatalf("extension listing = %v, want exactly a.txt", files)
	}

	oldest, ok, err := OldestFile(in, "")
	if err != nil || !ok {
		t.Fatalf("OldestFile = _, %v, %v", ok, err)
	}
	if filepath.Base(oldest.Path) != "a.txt" {
		t.Errorf("oldest = %s, want a.txt", oldest.Path)
	}

	dest := filepath.Join(outRoot, "out", "renamed.txt")
	moved, err := MoveAndRenameFile(aTxt, dest)
	if err != nil || !moved {
		t.Fatalf("MoveAndRenameFile = %v, %v, want true, nil", moved, err)
	}
	if _, err := os.Stat(dest); err != nil {
		t.Fatalf("destination missing: %v", err)
	}

	// Second identical call skips: destination exists now
	writeFile(t, aTxt, "a again", time.Time{})
	moved, err = MoveAndRenameFile(aTxt, dest)
	if err != nil {
		t.Fatalf("second MoveAndRenameFile errored: %v", err)
	}
	if moved {
		t.Error("second MoveAndRenameFile moved despite existing destination")
	}
}

func TestDryRunOpsNeverTouchDisk(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a.txt")
	writeFile(t, src, "a", time.Time{})

	fake := &fsops.FakeMutator{}
	ops := New(fake)

	if _, err := ops.MoveFile(src, t.TempDir()); err != nil {
		t.Fatal(err)
	}
	if err := ops.DeleteFileSafe(src); err != nil {
		t.Fatal(err)
	}
	if err := ops.CreateEmptyFile(filepath.Join(dir, "new")); err != nil {
		t.Fatal(err)
	}

	// All mutations went through the fake, nothing real happened
	if _, err := os.Stat(src); err != nil {
		t.Fatalf("real file was mutated through fake mutator: %v", err)
	}
	wantPrefixes := []string{"mv:", "rm:", "touch:"}
	if len(fake.Calls) != len(wantPrefixes) {
		t.Fatalf("recorded %d calls, want %d: %v", len(fake.Calls), len(wantPrefixes), fake.Calls)
	}
	for i, prefix := range wantPrefixes {
		if !strings.HasPrefix(fake.Calls[i], prefix) {
			t.Errorf("call %d = %q, want prefix %q", i, fake.Calls[i], prefix)
		}
	}
}
