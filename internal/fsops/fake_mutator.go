package fsops

import "os"

// FakeMutator implements Mutator for testing
// Records all mutation calls without performing actual filesystem changes
type FakeMutator struct {
	Calls []string

	// Err, when set, is returned from every call after recording it
	Err error
}

func (f *FakeMutator) Rename(oldPath, newPath string) error {
	f.Calls = append(f.Calls, "mv:"+oldPath+"->"+newPath)
	return f.Err
}

func (f *FakeMutator) Remove(path string) error {
	f.Calls = append(f.Calls, "rm:"+path)
	return f.Err
}

func (f *FakeMutator) MkdirAll(path string, perm os.FileMode) error {
	f.Calls = append(f.Calls, "mkdir:"+path)
	return f.Err
}

func (f *FakeMutator) CreateFile(path string) error {
	f.Calls = append(f.Calls, "touch:"+path)
	return f.Err
}

func (f *FakeMutator) CopyFile(src, dst string) error {
	f.Calls = append(f.Calls, "cp:"+src+"->"+dst)
	return f.Err
}
