package fileutil

import "os"

// SafeFileSize returns the size of path following symlinks, or false if
// it cannot be determined.
func SafeFileSize(path string) (int64, bool) {
	fi, err := os.Stat(path)
	if err != nil {
		return 0, false
	}
	return fi.Size(), true
}
