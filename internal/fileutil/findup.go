package fileutil

import (
	"os"
	"path/filepath"
)

// FindUp looks for relPath in startDir and each of its parents. It stops
// after testing stopDir or the filesystem root. An empty startDir means the
// working directory; an empty stopDir means the user's home directory.
func FindUp(relPath, startDir, stopDir string) (string, bool) {
	return FindUpFunc(relPath, startDir, stopDir, exists)
}

// FindUpFunc is FindUp with a caller-supplied existence test.
func FindUpFunc(relPath, startDir, stopDir string, check func(string) bool) (string, bool) {
	cur, ok := resolveStart(startDir)
	if !ok {
		return "", false
	}
	stop := resolveStop(stopDir)

	for {
		target := filepath.Join(cur, relPath)
		if check(target) {
			return target, true
		}
		if stop != "" && realpath(cur) == stop {
			return "", false
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			return "", false
		}
		cur = parent
	}
}

func resolveStart(startDir string) (string, bool) {
	if startDir == "" {
		wd, err := os.Getwd()
		return wd, err == nil
	}
	abs, err := filepath.Abs(startDir)
	return abs, err == nil
}

func resolveStop(stopDir string) string {
	if stopDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		stopDir = home
	}
	return realpath(stopDir)
}

func realpath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved
	}
	return abs
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
