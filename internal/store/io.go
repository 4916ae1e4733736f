package store

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

const (
	dirMode  os.FileMode = 0o700
	fileMode os.FileMode = 0o600
)

// readJSON reads path into out; a missing file leaves out untouched.
func readJSON(path string, out any) error {
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return errors.Wrapf(err, "store: read %s", path)
	}
	return errors.Wrapf(json.Unmarshal(b, out), "store: decode %s", path)
}

// writeJSON writes v as indented JSON through a temp file in the same
// directory, then renames it over path.
func writeJSON(path string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrap(err, "store: encode")
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, dirMode); err != nil {
		return errors.Wrapf(err, "store: create %s", dir)
	}
	f, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return errors.Wrap(err, "store: temp file")
	}
	tmp := f.Name()
	defer func() { _ = os.Remove(tmp) }()

	if _, err := f.Write(b); err != nil {
		_ = f.Close()
		return errors.Wrapf(err, "store: write %s", tmp)
	}
	if err := f.Chmod(fileMode); err != nil {
		_ = f.Close()
		return errors.Wrapf(err, "store: chmod %s", tmp)
	}
	if err := f.Close(); err != nil {
		return errors.Wrapf(err, "store: close %s", tmp)
	}
	return errors.Wrapf(os.Rename(tmp, path), "store: replace %s", path)
}
