package store

import (
	"os"
	"path/filepath"
)

// atomicWriteFile writes b to a temp file next to path and renames it into
// place. A crash can still lose the new content but never leaves a partially
// written target.
func atomicWriteFile(path string, b []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() { _ = os.Remove(tmp) }()
	if _, err := f.Write(b); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	_ = os.Chmod(tmp, perm)
	return os.Rename(tmp, path)
}

// fileMode returns the permission bits of path, or def if it does not exist.
func fileMode(path string, def os.FileMode) os.FileMode {
	st, err := os.Stat(path)
	if err != nil {
		return def
	}
	return st.Mode().Perm()
}

// AtomicWriteFile is exported for other packages persisting small files
// (configuration) the same way the store does.
func AtomicWriteFile(path string, b []byte, perm os.FileMode) error {
	return atomicWriteFile(path, b, perm)
}
