package fileutil

import (
	"os"
	"path/filepath"

	"github.com/chronos-tachyon/go-snaptree/internal/stack"
)

// DiskUsage sums the sizes of path and everything beneath it. Symlinks
// count their own size and only a symlinked path itself is followed.
// Entries that cannot be read are logged and counted as zero.
func DiskUsage(path string, opts ...Option) int64 {
	o := buildOptions(opts)
	total := o.lstatSize(path)

	dirs := stack.New[string](64)
	if fi, err := os.Stat(path); err == nil && fi.IsDir() {
		dirs.Push(path)
	}
	for !dirs.IsEmpty() {
		dir := dirs.Pop()
		dents, err := os.ReadDir(dir)
		if err != nil {
			o.logger.Warn().
				Str("path", dir).
				Err(err).
				Msg("failed to read directory")
			continue
		}
		var subdirs []string
		for _, dent := range dents {
			child := filepath.Join(dir, dent.Name())
			total += o.lstatSize(child)
			if dent.IsDir() {
				subdirs = append(subdirs, child)
			}
		}
		dirs.PushReversed(subdirs...)
	}
	return total
}

func (o options) lstatSize(path string) int64 {
	fi, err := os.Lstat(path)
	if err != nil {
		o.logger.Warn().
			Str("path", path).
			Err(err).
			Msg("could not read size")
		return 0
	}
	return fi.Size()
}
