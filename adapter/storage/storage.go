// Package storage implements [domain.Storage] on top of the local file
// system.
//
// Files are replaced through a temporary sibling named after the target with
// a trailing "~". The temporary file is fully written and synced before it is
// renamed over the target, so a crash leaves either the old or the new
// contents in place, plus possibly the temporary file, which
// [Storage.RecoverDatafile] moves into place on the next load.
package storage

import (
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/vinicius-lino-figueiredo/jsongo/domain"
)

var (
	osSpecificEnsureDir = func(o osOps, dir string, mode os.FileMode) error {
		return o.MkdirAll(dir, mode)
	}

	osSpecificSync = func(f *os.File, _ bool) error {
		return f.Sync()
	}
)

// TempSuffix is appended to a file name to get its temporary sibling.
const TempSuffix = "~"

// Storage implements [domain.Storage].
type Storage struct {
	osOps osOps
}

// NewStorage returns a new implementation of [domain.Storage].
func NewStorage() domain.Storage {
	return &Storage{osOps: &osImpl{}}
}

// CrashSafeWriteFile implements [domain.Storage].
func (d *Storage) CrashSafeWriteFile(filename string, data []byte, dirMode os.FileMode, fileMode os.FileMode) error {
	tempFilename := filename + TempSuffix

	if err := d.flushToStorage(filepath.Dir(filename), true, dirMode); err != nil {
		return err
	}

	exists, err := d.Exists(filename)
	if err != nil {
		return err
	}

	if exists {
		if err := d.flushToStorage(filename, false, fileMode); err != nil {
			return err
		}
	}

	if err := d.writeFile(tempFilename, data, fileMode); err != nil {
		return err
	}

	if err := d.flushToStorage(tempFilename, false, fileMode); err != nil {
		return err
	}

	if err := d.osOps.Rename(tempFilename, filename); err != nil {
		return err
	}

	return d.flushToStorage(filepath.Dir(filename), true, dirMode)
}

// RecoverDatafile implements [domain.Storage].
func (d *Storage) RecoverDatafile(filename string) (bool, error) {
	tempFilename := filename + TempSuffix

	filenameExists, err := d.Exists(filename)
	if err != nil {
		return false, err
	}
	// last write was completed
	if filenameExists {
		return false, nil
	}

	tempExists, err := d.Exists(tempFilename)
	if err != nil || !tempExists {
		return false, err
	}

	if err := d.osOps.Rename(tempFilename, filename); err != nil {
		return false, err
	}
	return true, nil
}

// EnsureParentDirectoryExists implements [domain.Storage].
func (d *Storage) EnsureParentDirectoryExists(filename string, mode os.FileMode) error {
	parsedDir, err := filepath.Abs(filepath.Dir(filename))
	if err != nil {
		return err
	}
	return osSpecificEnsureDir(d.osOps, parsedDir, mode)
}

// Exists implements [domain.Storage].
func (d *Storage) Exists(filename string) (bool, error) {
	if _, err := d.osOps.Stat(filename); err != nil {
		if d.osOps.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// ReadFileStream implements [domain.Storage].
func (d *Storage) ReadFileStream(filename string) (io.ReadCloser, error) {
	return d.osOps.OpenFile(filename, os.O_RDONLY, 0)
}

// List implements [domain.Storage].
func (d *Storage) List(dir string, ext string) ([]string, error) {
	entries, err := d.osOps.ReadDir(dir)
	if err != nil {
		if d.osOps.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, err
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		name, ok := strings.CutSuffix(entry.Name(), ext)
		if !ok || name == "" {
			continue
		}
		names = append(names, name)
	}
	slices.Sort(names)
	return names, nil
}

// Remove implements [domain.Storage].
func (d *Storage) Remove(filename string) error {
	return d.osOps.Remove(filename)
}

func (d *Storage) flushToStorage(filename string, isDir bool, mode os.FileMode) error {
	flags := os.O_RDWR
	if isDir {
		flags = os.O_RDONLY
	}

	fileHandle, err := d.osOps.OpenFile(filename, flags, mode)
	if err != nil {
		return domain.ErrFlushToStorage{ErrorOnFsync: err}
	}

	if err := osSpecificSync(fileHandle, isDir); err != nil {
		fileHandle.Close()
		return domain.ErrFlushToStorage{ErrorOnFsync: err}
	}

	if err := fileHandle.Close(); err != nil {
		return domain.ErrFlushToStorage{ErrorOnClose: err}
	}

	return nil
}

func (d *Storage) writeFile(filename string, data []byte, mode os.FileMode) error {
	f, err := d.osOps.OpenFile(filename, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	if _, err = f.Write(data); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
