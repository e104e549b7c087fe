package fileutil

import (
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sort"

	"github.com/chronos-tachyon/go-snaptree/internal/item"
	"github.com/chronos-tachyon/go-snaptree/internal/stack"
)

// Find lists every path under root, relative to root. Directories are
// listed only with WithDirs or when the entry itself is a symlink.
// Symlinked directories are descended into only with WithFollowLinks.
// A symlink back to one of its own ancestors is listed but not entered.
// Unreadable directories are logged and skipped.
func Find(root string, opts ...Option) []string {
	o := buildOptions(opts)

	type frame struct {
		dir   string
		chain []item.Key
	}

	var paths []string
	var rootChain []item.Key
	if fi, err := os.Stat(root); err == nil {
		if key, ok := item.KeyOf(fi); ok {
			rootChain = []item.Key{key}
		}
	}
	dirs := stack.New[frame](64)
	dirs.Push(frame{dir: root, chain: rootChain})

	for !dirs.IsEmpty() {
		cur := dirs.Pop()
		dents, err := os.ReadDir(cur.dir)
		if err != nil {
			o.logger.Warn().
				Str("path", cur.dir).
				Err(err).
				Msg("failed to read directory")
			continue
		}

		var files []string
		var subdirs []frame
		for _, dent := range dents {
			child := filepath.Join(cur.dir, dent.Name())
			isLink := dent.Type()&fs.ModeSymlink != 0
			fi, isDir := statDir(child, dent)
			if !isDir {
				files = append(files, child)
				continue
			}
			if o.includeDirs || isLink {
				paths = append(paths, relTo(root, child))
			}
			if isLink && !o.followLinks {
				continue
			}
			key, ok := item.KeyOf(fi)
			if ok && isLink && slices.Contains(cur.chain, key) {
				o.logger.Warn().
					Str("path", child).
					Msg("skipping symlink loop")
				continue
			}
			chain := slices.Clip(cur.chain)
			if ok {
				chain = append(chain, key)
			}
			subdirs = append(subdirs, frame{dir: child, chain: chain})
		}
		for _, file := range files {
			paths = append(paths, relTo(root, file))
		}
		dirs.PushReversed(subdirs...)
	}

	if !o.unsorted {
		sort.Strings(paths)
	}
	return paths
}

// statDir reports whether the entry is a directory, following symlinks.
func statDir(path string, dent fs.DirEntry) (fs.FileInfo, bool) {
	if dent.Type()&fs.ModeSymlink == 0 {
		if !dent.IsDir() {
			return nil, false
		}
		fi, err := dent.Info()
		return fi, err == nil
	}
	fi, err := os.Stat(path)
	if err != nil {
		return nil, false
	}
	return fi, fi.IsDir()
}

func relTo(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return path
	}
	return rel
}
