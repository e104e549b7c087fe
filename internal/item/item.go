package item

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"syscall"
)

// Key identifies a file independently of the path used to reach it.
type Key struct {
	Dev uint64
	Ino uint64
}

type Item struct {
	Path      string
	File      *os.File
	Info      fs.FileInfo
	Mode      fs.FileMode
	Size      int64
	Key       Key
	IsSymlink bool
}

// Open opens path (following symlinks) and stats the result. Errors wrap
// the underlying *fs.PathError, so errors.Is(err, fs.ErrNotExist) works.
func Open(path string) (*Item, error) {
	path = filepath.Clean(path)

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%q: failed to open file: %w", path, err)
	}

	fi, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("%q: failed to stat file: %w", path, err)
	}

	it := &Item{
		Path: path,
		File: f,
		Info: fi,
		Mode: fi.Mode(),
		Size: fi.Size(),
	}
	it.Key, _ = KeyOf(fi)
	if lfi, err := os.Lstat(path); err == nil {
		it.IsSymlink = lfi.Mode()&fs.ModeSymlink != 0
	}
	return it, nil
}

func (it *Item) IsDir() bool {
	return it.Mode.IsDir()
}

// ReadDir lists the directory's entries sorted by name.
func (it *Item) ReadDir() ([]fs.DirEntry, error) {
	dents, err := it.File.ReadDir(-1)
	if err != nil {
		return nil, fmt.Errorf("%q: failed to read directory: %w", it.Path, err)
	}
	sortEntries(dents)
	return dents, nil
}

func (it *Item) Close() error {
	if it == nil {
		return nil
	}
	f := it.File
	it.File = nil
	if f != nil {
		if err := f.Close(); err != nil {
			return fmt.Errorf("%q: failed to close file: %w", it.Path, err)
		}
	}
	return nil
}

// KeyOf extracts the device and inode numbers from fi, if the platform
// exposes them.
func KeyOf(fi fs.FileInfo) (Key, bool) {
	if x, ok := fi.Sys().(*syscall.Stat_t); ok {
		return Key{Dev: uint64(x.Dev), Ino: uint64(x.Ino)}, true
	}
	return Key{}, false
}
