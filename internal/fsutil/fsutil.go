// Package fsutil holds the file primitives shared by the store and config
// writers: atomic replacement and rotating .backN copies.
package fsutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/underthemoss/construction-taxonomy/errors"
)

// DefaultBackups is the number of rotating backups kept next to a file
const DefaultBackups = 3

// TempPrefix marks in-flight files written by WriteAtomic
const TempPrefix = ".tmp-"

// WriteAtomic writes data to a temp file in the target directory and renames
// it over path, so readers see either the old or the new content.
func WriteAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "create %s", dir)
	}

	tmp, err := os.CreateTemp(dir, TempPrefix+filepath.Base(path)+"-*")
	if err != nil {
		return errors.Wrapf(err, "create temp file for %s", path)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		cleanup()
		return errors.Wrapf(err, "write %s", tmpName)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return errors.Wrapf(err, "close %s", tmpName)
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		cleanup()
		return errors.Wrapf(err, "chmod %s", tmpName)
	}
	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return errors.Wrapf(err, "rename %s", path)
	}
	return nil
}

// BackupName returns the path of the n-th backup of path (1 is the newest)
func BackupName(path string, n int) string {
	return fmt.Sprintf("%s.back%d", path, n)
}

// IsBackup reports whether name is a rotating backup file
func IsBackup(name string) bool {
	ext := filepath.Ext(name)
	return strings.HasPrefix(ext, ".back")
}

// IsTemp reports whether name is an in-flight WriteAtomic file
func IsTemp(name string) bool {
	return strings.HasPrefix(filepath.Base(name), TempPrefix)
}

// RotateBackups shifts path.back1..path.back<keep-1> up by one, dropping the
// oldest, and copies the current content of path to path.back1. A missing
// path is not an error.
func RotateBackups(path string, keep int) error {
	if keep < 1 {
		return nil
	}
	content, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return errors.Wrapf(err, "read %s for backup", path)
	}

	oldest := BackupName(path, keep)
	if err := os.Remove(oldest); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "remove %s", oldest)
	}
	for n := keep - 1; n >= 1; n-- {
		from := BackupName(path, n)
		if _, err := os.Stat(from); err != nil {
			continue
		}
		if err := os.Rename(from, BackupName(path, n+1)); err != nil {
			return errors.Wrapf(err, "rotate %s", from)
		}
	}

	if err := os.WriteFile(BackupName(path, 1), content, 0o644); err != nil {
		return errors.Wrapf(err, "write %s", BackupName(path, 1))
	}
	return nil
}

// CopyFile copies src to dst, creating dst's directory
func CopyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return errors.Wrapf(err, "read %s", src)
	}
	return WriteAtomic(dst, data, 0o644)
}
