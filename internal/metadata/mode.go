package metadata

import (
	"fmt"
	"io/fs"
	"os"
)

// CopyMode applies the permission bits of mode to the file at path, the
// same bits `cp --preserve=mode` carries over.
func CopyMode(path string, mode fs.FileMode) error {
	perm := mode & (fs.ModePerm | fs.ModeSetuid | fs.ModeSetgid | fs.ModeSticky)
	if err := os.Chmod(path, perm); err != nil {
		return fmt.Errorf("%q: failed to set mode %v: %w", path, perm, err)
	}
	return nil
}
