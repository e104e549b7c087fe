package fileselect

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"github.com/rs/zerolog"

	"github.com/chronos-tachyon/go-snaptree/internal/glob"
	"github.com/chronos-tachyon/go-snaptree/internal/item"
	"github.com/chronos-tachyon/go-snaptree/internal/logging"
	"github.com/chronos-tachyon/go-snaptree/internal/stack"
)

type copyOptions struct {
	rootStart   string
	followLinks bool
	ignore      []*Rule
	prune       map[string]struct{}
	err         error
	factory     HandlerFactory
	logger      zerolog.Logger
}

type CopyOption func(*copyOptions)

// WithRootStart sets the directory RuleSet.Root is resolved against.
// The default is the current directory.
func WithRootStart(dir string) CopyOption {
	return func(o *copyOptions) { o.rootStart = dir }
}

// WithFollowLinks controls descent into symlinked directories. The default
// is to follow them.
func WithFollowLinks(follow bool) CopyOption {
	return func(o *copyOptions) { o.followLinks = follow }
}

// WithIgnore excludes files whose relative path matches one of patterns
// without consulting any rule. Patterns are path-mode globs, so a plain
// relative path matches just that file. A bad pattern fails CopyTree.
func WithIgnore(patterns ...string) CopyOption {
	return func(o *copyOptions) {
		for _, p := range patterns {
			r, err := ignoreRule(p)
			if err != nil {
				o.err = errors.Join(o.err, err)
				continue
			}
			o.ignore = append(o.ignore, r)
		}
	}
}

// WithPrune keeps the walk out of the given directories, relative to the
// source root, as if a directory rule had excluded them.
func WithPrune(dirs ...string) CopyOption {
	return func(o *copyOptions) {
		for _, d := range dirs {
			o.prune[filepath.Clean(d)] = struct{}{}
		}
	}
}

func WithHandler(factory HandlerFactory) CopyOption {
	return func(o *copyOptions) { o.factory = factory }
}

func WithLogger(logger zerolog.Logger) CopyOption {
	return func(o *copyOptions) { o.logger = logger }
}

func buildCopyOptions(opts []CopyOption) copyOptions {
	o := copyOptions{
		rootStart:   ".",
		followLinks: true,
		prune:       make(map[string]struct{}),
		factory:     DefaultHandler,
		logger:      logging.Component("fileselect"),
	}
	for _, fn := range opts {
		fn(&o)
	}
	return o
}

// SourceRoot resolves the directory a walk over rs starts from.
func SourceRoot(rootStart string, rs *RuleSet) string {
	if rs == nil || rs.root == "" {
		return filepath.Clean(rootStart)
	}
	if filepath.IsAbs(rs.root) {
		return filepath.Clean(rs.root)
	}
	return filepath.Join(rootStart, rs.root)
}

// CopyTree walks the source tree of rs and reports every file to one
// Handler built for the call. The handler is built and closed even when rs
// is disabled, in which case nothing is walked.
func CopyTree(dst string, rs *RuleSet, opts ...CopyOption) (err error) {
	if rs == nil {
		return ErrNilRuleSet
	}
	o := buildCopyOptions(opts)
	if o.err != nil {
		return o.err
	}
	src := SourceRoot(o.rootStart, rs)

	h, err := o.factory(HandlerConfig{
		SrcRoot: src,
		DstRoot: dst,
		RuleSet: rs,
		Logger:  o.logger,
	})
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, h.Close())
	}()

	if rs.Disabled() {
		o.logger.Debug().
			Str("src", src).
			Msg("rule set disabled, nothing to copy")
		return nil
	}

	w := &walker{
		src:     src,
		opts:    &o,
		session: rs.NewSession(o.logger),
		handler: h,
	}
	return w.run()
}

// CopyFiles copies exactly paths, relative to src, without evaluating any
// rule.
func CopyFiles(src, dst string, paths []string, opts ...CopyOption) (err error) {
	o := buildCopyOptions(opts)

	h, err := o.factory(HandlerConfig{
		SrcRoot: src,
		DstRoot: dst,
		Logger:  o.logger,
	})
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, h.Close())
	}()

	for _, p := range paths {
		if err := h.Copy(filepath.Clean(p), nil); err != nil {
			return err
		}
	}
	return nil
}

type walker struct {
	src     string
	opts    *copyOptions
	session *Session
	handler Handler
}

// frame is a directory waiting to be visited along with the identities of
// the directories above it, which is what symlink loops are detected by.
type frame struct {
	rel   string
	chain []item.Key
}

type entry struct {
	name   string
	isDir  bool
	isLink bool
	key    item.Key
}

func (w *walker) run() error {
	root, err := item.Open(w.src)
	if err != nil {
		return err
	}
	rootKey := root.Key
	_ = root.Close()

	dirs := stack.New[frame](64)
	dirs.Push(frame{rel: "", chain: []item.Key{rootKey}})
	for !dirs.IsEmpty() {
		next, err := w.visit(dirs.Pop())
		if err != nil {
			return err
		}
		dirs.PushReversed(next...)
	}
	return nil
}

// visit handles the files directly inside f and returns the subdirectories
// to descend into, in order.
func (w *walker) visit(f frame) ([]frame, error) {
	rel := f.rel
	entries, ok := w.list(rel)
	if !ok {
		return nil, nil
	}

	var dirNames []string
	byName := make(map[string]entry, len(entries))
	var files []string
	for _, e := range entries {
		if e.isDir {
			dirNames = append(dirNames, e.name)
			byName[e.name] = e
		} else {
			files = append(files, e.name)
		}
	}

	kept, pruned := w.session.PruneDirs(w.src, rel, dirNames)
	kept, pruned = w.applyPrune(rel, kept, pruned)
	for _, name := range pruned {
		if err := w.handler.Ignore(filepath.Join(rel, name), nil); err != nil {
			return nil, err
		}
	}

	for _, name := range files {
		if err := w.visitFile(filepath.Join(rel, name)); err != nil {
			return nil, err
		}
	}

	next := make([]frame, 0, len(kept))
	for _, name := range kept {
		e := byName[name]
		relPath := filepath.Join(rel, name)
		if e.isLink {
			if !w.opts.followLinks {
				continue
			}
			if slices.Contains(f.chain, e.key) {
				w.opts.logger.Warn().
					Str("path", relPath).
					Msg("skipping symlink loop")
				continue
			}
		}
		chain := append(slices.Clip(f.chain), e.key)
		next = append(next, frame{rel: relPath, chain: chain})
	}
	return next, nil
}

// applyPrune moves directories named by WithPrune from kept to pruned.
func (w *walker) applyPrune(rel string, kept, pruned []string) ([]string, []string) {
	if len(w.opts.prune) == 0 {
		return kept, pruned
	}
	out := kept[:0:0]
	for _, name := range kept {
		if _, found := w.opts.prune[filepath.Join(rel, name)]; found {
			w.opts.logger.Debug().
				Str("path", filepath.Join(rel, name)).
				Msg("skipping directory")
			pruned = append(pruned, name)
			continue
		}
		out = append(out, name)
	}
	slices.Sort(pruned)
	return out, pruned
}

func (w *walker) visitFile(relPath string) error {
	candidate := glob.Normalize(relPath)
	for _, r := range w.opts.ignore {
		if r.matchers[0].rx.MatchString(candidate) {
			results := []RuleResult{{Rule: r, Result: ResultExclude}}
			return w.handler.Ignore(relPath, results)
		}
	}
	selected, results := w.session.SelectFile(w.src, relPath)
	if selected {
		return w.handler.Copy(relPath, results)
	}
	return w.handler.Ignore(relPath, results)
}

// list reads rel and classifies its entries, following symlinks. Broken
// links count as files; devices, pipes and sockets are skipped.
func (w *walker) list(rel string) ([]entry, bool) {
	dir := filepath.Join(w.src, rel)
	it, err := item.Open(dir)
	if err == nil {
		defer func() { _ = it.Close() }()
	}
	var dents []fs.DirEntry
	if err == nil {
		dents, err = it.ReadDir()
	}
	if err != nil {
		w.opts.logger.Warn().
			Str("path", dir).
			Err(err).
			Msg("failed to read directory")
		return nil, false
	}

	entries := make([]entry, 0, len(dents))
	for _, dent := range dents {
		e := entry{name: dent.Name()}
		mode := dent.Type()
		if mode&fs.ModeSymlink != 0 {
			e.isLink = true
			fi, err := os.Stat(filepath.Join(dir, e.name))
			if err == nil {
				mode = fi.Mode().Type()
				e.key, _ = item.KeyOf(fi)
			}
		} else if mode.IsDir() {
			if fi, err := dent.Info(); err == nil {
				e.key, _ = item.KeyOf(fi)
			}
		}
		e.isDir = mode.IsDir()
		if mode&(fs.ModeDevice|fs.ModeNamedPipe|fs.ModeSocket|fs.ModeCharDevice) != 0 {
			w.opts.logger.Debug().
				Str("path", filepath.Join(dir, e.name)).
				Msg("skipping special file")
			continue
		}
		entries = append(entries, e)
	}
	return entries, true
}
