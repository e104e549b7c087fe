package fileselect

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/chronos-tachyon/go-snaptree/internal/fileutil"
	"github.com/chronos-tachyon/go-snaptree/internal/glob"
)

// Spec is the declarative form of a Rule, the contract policy loaders
// translate into.
type Spec struct {
	Result     bool
	Patterns   []string
	Type       Type
	Regex      bool
	Sentinel   string
	SizeGT     *int64
	SizeLT     *int64
	MaxMatches *int
}

// Include is shorthand for an untyped include Spec.
func Include(patterns ...string) Spec {
	return Spec{Result: true, Patterns: patterns}
}

// Exclude is shorthand for an untyped exclude Spec.
func Exclude(patterns ...string) Spec {
	return Spec{Result: false, Patterns: patterns}
}

// AsType returns a copy of spec constrained to typ.
func (spec Spec) AsType(typ Type) Spec {
	spec.Type = typ
	return spec
}

type matcher struct {
	rx       *regexp.Regexp
	baseOnly bool
}

// Rule is one compiled include/exclude test. Rules are immutable; the
// match counter that max matches depends on lives in a Session.
type Rule struct {
	result     bool
	patterns   []string
	regex      bool
	matchers   []matcher
	typ        Type
	sentinel   string
	sizeGT     *int64
	sizeLT     *int64
	maxMatches *int
}

func NewRule(spec Spec) (*Rule, error) {
	if len(spec.Patterns) == 0 {
		return nil, ErrNoPatterns
	}
	if !spec.Type.valid() {
		return nil, fmt.Errorf("%w: %v", ErrInvalidType, spec.Type.GoString())
	}
	if spec.Sentinel != "" {
		if _, err := filepath.Match(spec.Sentinel, ""); err != nil {
			return nil, fmt.Errorf("%w: sentinel %q: %v", ErrInvalidPattern, spec.Sentinel, err)
		}
	}

	r := &Rule{
		result:     spec.Result,
		regex:      spec.Regex,
		typ:        spec.Type,
		sentinel:   spec.Sentinel,
		sizeGT:     copyPtr(spec.SizeGT),
		sizeLT:     copyPtr(spec.SizeLT),
		maxMatches: copyPtr(spec.MaxMatches),
		patterns:   make([]string, 0, len(spec.Patterns)),
		matchers:   make([]matcher, 0, len(spec.Patterns)),
	}
	for _, p := range spec.Patterns {
		m, err := compilePattern(p, spec.Regex)
		if err != nil {
			return nil, fmt.Errorf("%w %q: %v", ErrInvalidPattern, p, err)
		}
		if !spec.Regex {
			p = filepath.FromSlash(p)
		}
		r.patterns = append(r.patterns, p)
		r.matchers = append(r.matchers, m)
	}
	return r, nil
}

func MustRule(spec Spec) *Rule {
	r, err := NewRule(spec)
	if err != nil {
		panic(err)
	}
	return r
}

// compilePattern turns a glob into a matcher. A glob without a separator
// is tested against the base name only; leading separators are dropped.
func compilePattern(p string, regex bool) (matcher, error) {
	if regex {
		rx, err := glob.CompileRegexp(p)
		return matcher{rx: rx}, err
	}
	p = filepath.ToSlash(filepath.FromSlash(p))
	baseOnly := !strings.Contains(p, "/")
	p = strings.TrimLeft(p, "/")
	rx, err := glob.CompileShell(p)
	return matcher{rx: rx, baseOnly: baseOnly}, err
}

// ignoreRule compiles a path-mode glob from an explicit ignore list. In
// this dialect '*' and '?' stop at '/', "**" crosses it and {a,b}
// alternates; the pattern must match the whole relative path.
func ignoreRule(pattern string) (*Rule, error) {
	rx, err := glob.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrInvalidPattern, pattern, err)
	}
	return &Rule{
		patterns: []string{pattern},
		matchers: []matcher{{rx: rx}},
	}, nil
}

// ValidateIgnore reports the first pattern an ignore list cannot compile.
func ValidateIgnore(patterns []string) error {
	for _, p := range patterns {
		if _, err := ignoreRule(p); err != nil {
			return err
		}
	}
	return nil
}

func copyPtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func (r *Rule) Result() Result     { return resultOf(r.result) }
func (r *Rule) Patterns() []string { return append([]string(nil), r.patterns...) }
func (r *Rule) Type() Type         { return r.typ }
func (r *Rule) Regex() bool        { return r.regex }
func (r *Rule) Sentinel() string   { return r.sentinel }

// MaxMatches returns the match cap and whether one is set.
func (r *Rule) MaxMatches() (int, bool) {
	if r.maxMatches == nil {
		return 0, false
	}
	return *r.maxMatches, true
}

func (r *Rule) hasPattern(p string) bool {
	for _, x := range r.patterns {
		if x == p {
			return true
		}
	}
	return false
}

func (r *Rule) matchPatterns(relPath string) bool {
	for _, m := range r.matchers {
		candidate := relPath
		if m.baseOnly {
			candidate = filepath.Base(relPath)
		}
		if r.regex {
			candidate = filepath.ToSlash(candidate)
		} else {
			candidate = glob.Normalize(candidate)
		}
		if m.rx.MatchString(candidate) {
			return true
		}
	}
	return false
}

// test runs the max matches, pattern, type and size checks in that order
// and stops at the first that declines. On success *matches is bumped.
func (r *Rule) test(p inspector, matches *int, srcRoot, relPath string) (Result, Check) {
	if r.maxMatches != nil && *matches >= *r.maxMatches {
		return ResultNone, CheckMaxMatches
	}
	if !r.matchPatterns(relPath) {
		return ResultNone, CheckPattern
	}
	fullPath := filepath.Join(srcRoot, relPath)
	if !r.matchType(p, fullPath) {
		return ResultNone, CheckType
	}
	if !r.matchSize(p, fullPath) {
		return ResultNone, CheckSize
	}
	*matches++
	return resultOf(r.result), CheckNone
}

func (r *Rule) matchType(p inspector, path string) bool {
	switch r.typ {
	case TypeText:
		return p.classifier.IsTextFile(path)
	case TypeBinary:
		return !p.classifier.IsTextFile(path)
	case TypeDir:
		return r.matchDir(path)
	default:
		return true
	}
}

func (r *Rule) matchDir(path string) bool {
	fi, err := os.Stat(path)
	if err != nil || !fi.IsDir() {
		return false
	}
	if r.sentinel == "" {
		return true
	}
	found, err := filepath.Glob(filepath.Join(path, r.sentinel))
	return err == nil && len(found) > 0
}

// matchSize never blocks a path whose size cannot be read.
func (r *Rule) matchSize(p inspector, path string) bool {
	if r.sizeGT == nil && r.sizeLT == nil {
		return true
	}
	size, ok := p.sizer.FileSize(path)
	if !ok {
		return true
	}
	if r.sizeGT != nil && !(size > *r.sizeGT) {
		return false
	}
	if r.sizeLT != nil && !(size < *r.sizeLT) {
		return false
	}
	return true
}

// String describes the rule the way a policy author would write it, e.g.
// "exclude dir build containing Makefile".
func (r *Rule) String() string {
	parts := make([]string, 0, 4)
	if r.result {
		parts = append(parts, "include")
	} else {
		parts = append(parts, "exclude")
	}
	if r.typ != TypeNone {
		parts = append(parts, r.typ.String())
	}
	quoted := make([]string, len(r.patterns))
	for i, p := range r.patterns {
		quoted[i] = fileutil.QuotePattern(p)
	}
	parts = append(parts, strings.Join(quoted, ", "))
	if extras := r.extras(); extras != "" {
		parts = append(parts, extras)
	}
	return strings.Join(parts, " ")
}

func (r *Rule) extras() string {
	var parts []string
	if r.regex {
		parts = append(parts, "regex")
	}
	if r.sentinel != "" {
		parts = append(parts, "containing "+fileutil.QuotePattern(r.sentinel))
	}
	if r.sizeGT != nil {
		parts = append(parts, "size > "+strconv.FormatInt(*r.sizeGT, 10))
	}
	if r.sizeLT != nil {
		parts = append(parts, "size < "+strconv.FormatInt(*r.sizeLT, 10))
	}
	if r.maxMatches != nil {
		parts = append(parts, "max match "+strconv.Itoa(*r.maxMatches))
	}
	return strings.Join(parts, ", ")
}

var _ fmt.Stringer = (*Rule)(nil)
