package adpatchio

import (
	"errors"
	"io/fs"
	"os"

	"github.com/google/renameio/v2"
)

// ReadFile is os.ReadFile, but reports whether
// the error was caused by the file not existing.
func ReadFile(name string) ([]byte, bool, error) {
	b, err := os.ReadFile(name)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, err
	}

	return b, true, err
}

// Exists reports whether name exists and is a regular file.
func Exists(name string) bool {
	fi, err := os.Stat(name)
	return err == nil && fi.Mode().IsRegular()
}

// WriteFile atomically replaces name with b: the bytes go to a
// temporary file in the same directory which is fsynced and renamed
// over name, so a failed write never leaves a partial document.
// The mode of an existing file is kept.
func WriteFile(name string, b []byte) error {
	perm := os.FileMode(0o644)
	if fi, err := os.Stat(name); err == nil {
		perm = fi.Mode().Perm()
	}

	return renameio.WriteFile(name, b, perm)
}
