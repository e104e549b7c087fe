package fileselect

import (
	"path/filepath"
	"sort"

	"github.com/rs/zerolog"

	"github.com/chronos-tachyon/go-snaptree/internal/fileutil"
)

// Classifier decides whether a file holds text. TypeText and TypeBinary
// rules consult it.
type Classifier interface {
	IsTextFile(path string) bool
}

type ClassifierFunc func(path string) bool

func (fn ClassifierFunc) IsTextFile(path string) bool { return fn(path) }

// Sizer reports a file's size, or false when it cannot be read.
type Sizer interface {
	FileSize(path string) (int64, bool)
}

type SizerFunc func(path string) (int64, bool)

func (fn SizerFunc) FileSize(path string) (int64, bool) { return fn(path) }

type inspector struct {
	classifier Classifier
	sizer      Sizer
}

type Option func(*RuleSet)

func WithClassifier(c Classifier) Option {
	return func(rs *RuleSet) { rs.inspector.classifier = c }
}

func WithSizer(s Sizer) Option {
	return func(rs *RuleSet) { rs.inspector.sizer = s }
}

// RuleSet is an ordered list of rules plus an optional root, relative to
// the walk's starting directory, from which files are selected.
type RuleSet struct {
	root      string
	rules     []*Rule
	disabled  bool
	inspector inspector
}

// New compiles specs into a RuleSet. Any invalid spec fails the whole set.
func New(root string, specs []Spec, opts ...Option) (*RuleSet, error) {
	rules := make([]*Rule, 0, len(specs))
	for _, spec := range specs {
		r, err := NewRule(spec)
		if err != nil {
			return nil, err
		}
		rules = append(rules, r)
	}
	return FromRules(root, rules, opts...), nil
}

func FromRules(root string, rules []*Rule, opts ...Option) *RuleSet {
	rs := &RuleSet{
		root:  root,
		rules: rules,
		inspector: inspector{
			classifier: ClassifierFunc(fileutil.SafeIsTextFile),
			sizer:      SizerFunc(fileutil.SafeFileSize),
		},
	}
	for _, fn := range opts {
		fn(rs)
	}
	rs.disabled = computeDisabled(rs.rules)
	return rs
}

// Disabled returns a RuleSet that never selects anything.
func Disabled() *RuleSet {
	rs := FromRules("", nil)
	rs.disabled = true
	return rs
}

// computeDisabled scans forward: an untyped exclude of "*" disables the
// set and any later include enables it again.
func computeDisabled(rules []*Rule) bool {
	disabled := false
	for _, r := range rules {
		if r.result {
			disabled = false
		} else if r.typ == TypeNone && r.hasPattern("*") {
			disabled = true
		}
	}
	return disabled
}

func (rs *RuleSet) Root() string { return rs.root }

func (rs *RuleSet) Rules() []*Rule { return append([]*Rule(nil), rs.rules...) }

// Disabled reports whether no path can ever be selected.
func (rs *RuleSet) Disabled() bool { return rs.disabled }

// NewSession starts an evaluation with fresh match counters.
func (rs *RuleSet) NewSession(logger zerolog.Logger) *Session {
	return &Session{
		rs:      rs,
		matches: make([]int, len(rs.rules)),
		logger:  logger,
	}
}

// RuleResult records what one rule said about one path.
type RuleResult struct {
	Rule   *Rule
	Result Result
	Check  Check
}

// Decisive returns the last result in results that applied.
func Decisive(results []RuleResult) (RuleResult, bool) {
	for i := len(results) - 1; i >= 0; i-- {
		if results[i].Result != ResultNone {
			return results[i], true
		}
	}
	return RuleResult{}, false
}

// Session evaluates a RuleSet for a single walk. It owns the counters that
// max matches rules depend on, so results depend on the order paths are
// presented. A Session must not be used from more than one goroutine.
type Session struct {
	rs      *RuleSet
	matches []int
	logger  zerolog.Logger
}

func (s *Session) RuleSet() *RuleSet { return s.rs }

// Matches returns how many paths rule i has applied to so far.
func (s *Session) Matches(i int) int { return s.matches[i] }

// SelectFile applies every rule that is not directory-typed to relPath.
// The last rule that applies decides; if none does, the file is excluded.
func (s *Session) SelectFile(srcRoot, relPath string) (bool, []RuleResult) {
	results := make([]RuleResult, 0, len(s.rs.rules))
	for i, r := range s.rs.rules {
		if r.typ == TypeDir {
			continue
		}
		result, check := r.test(s.rs.inspector, &s.matches[i], srcRoot, relPath)
		s.trace(relPath, r, result, check)
		results = append(results, RuleResult{Rule: r, Result: result, Check: check})
	}
	last, ok := Decisive(results)
	return ok && last.Result == ResultInclude, results
}

// PruneDirs applies the directory-typed rules to each child directory of
// relParent, in name order. Children whose last applying rule excludes them
// are returned in pruned; the rest, sorted, in kept.
func (s *Session) PruneDirs(srcRoot, relParent string, names []string) (kept, pruned []string) {
	sorted := append([]string(nil), names...)
	sort.Strings(sorted)
	for _, name := range sorted {
		relPath := filepath.Join(relParent, name)
		last := ResultNone
		for i, r := range s.rs.rules {
			if r.typ != TypeDir {
				continue
			}
			result, check := r.test(s.rs.inspector, &s.matches[i], srcRoot, relPath)
			s.trace(relPath, r, result, check)
			if result != ResultNone {
				last = result
			}
		}
		if last == ResultExclude {
			s.logger.Debug().
				Str("path", relPath).
				Msg("skipping directory")
			pruned = append(pruned, name)
			continue
		}
		kept = append(kept, name)
	}
	return kept, pruned
}

func (s *Session) trace(relPath string, r *Rule, result Result, check Check) {
	s.logger.Trace().
		Str("path", relPath).
		Stringer("rule", r).
		Stringer("result", result).
		Stringer("check", check).
		Msg("rule evaluated")
}
