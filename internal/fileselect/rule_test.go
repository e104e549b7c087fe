package fileselect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(n int) *int { return &n }

func int64Ptr(n int64) *int64 { return &n }

type fixedSize map[string]int64

func (m fixedSize) FileSize(path string) (int64, bool) {
	n, ok := m[path]
	return n, ok
}

func TestNewRuleErrors(t *testing.T) {
	_, err := NewRule(Spec{Result: true})
	assert.ErrorIs(t, err, ErrNoPatterns)

	_, err = NewRule(Spec{Result: true, Patterns: []string{"*"}, Type: Type(9)})
	assert.ErrorIs(t, err, ErrInvalidType)

	_, err = NewRule(Spec{Result: true, Patterns: []string{"("}, Regex: true})
	assert.ErrorIs(t, err, ErrInvalidPattern)

	_, err = NewRule(Spec{Patterns: []string{"*"}, Type: TypeDir, Sentinel: "["})
	assert.ErrorIs(t, err, ErrInvalidPattern)
}

func TestParseType(t *testing.T) {
	tests := []struct {
		input string
		want  Type
	}{
		{"", TypeNone},
		{"text", TypeText},
		{"binary", TypeBinary},
		{"dir", TypeDir},
		{"Directory", TypeDir},
	}
	for _, tt := range tests {
		got, err := ParseType(tt.input)
		require.NoError(t, err, tt.input)
		assert.Equal(t, tt.want, got, tt.input)
	}

	_, err := ParseType("symlink")
	assert.ErrorIs(t, err, ErrInvalidType)
}

func TestRuleString(t *testing.T) {
	tests := []struct {
		spec Spec
		want string
	}{
		{Include("*.py"), "include *.py"},
		{Exclude("a", "b"), "exclude a, b"},
		{Exclude("build").AsType(TypeDir), "exclude dir build"},
		{
			Spec{Patterns: []string{"*"}, Type: TypeDir, Sentinel: "bin/activate"},
			"exclude dir * containing bin/activate",
		},
		{
			Spec{Result: true, Patterns: []string{`.*\.csv`}, Regex: true, SizeLT: int64Ptr(100), MaxMatches: intPtr(2)},
			`include .*\.csv regex, size < 100, max match 2`,
		},
		{Include("my file.txt"), "include 'my file.txt'"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, MustRule(tt.spec).String())
	}
}

func TestRulePatterns(t *testing.T) {
	tests := []struct {
		name string
		spec Spec
		path string
		want bool
	}{
		{"base name", Include("*.txt"), "deep/dir/a.txt", true},
		{"base name miss", Include("*.txt"), "a.txt.bak", false},
		{"with separator", Include("src/*.py"), "src/pkg/a.py", true},
		{"with separator miss", Include("src/*.py"), "lib/src/a.py", false},
		{"leading separator", Include("/src/*.py"), "src/a.py", true},
		{"class", Include("[ab].go"), "dir/b.go", true},
		{"negated class", Include("[!ab].go"), "b.go", false},
		{"regex full match", Spec{Result: true, Patterns: []string{`src/.*\.py`}, Regex: true}, "src/a/b.py", true},
		{"regex is anchored", Spec{Result: true, Patterns: []string{`src/.*\.py`}, Regex: true}, "x/src/a.py", false},
		{"any pattern", Include("*.c", "*.h"), "x.h", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := MustRule(tt.spec)
			assert.Equal(t, tt.want, r.matchPatterns(tt.path))
		})
	}
}

func TestRuleMaxMatches(t *testing.T) {
	r := MustRule(Spec{Result: true, Patterns: []string{"*.txt"}, MaxMatches: intPtr(1)})
	var p inspector
	matches := 0

	result, check := r.test(p, &matches, "", "a.txt")
	assert.Equal(t, ResultInclude, result)
	assert.Equal(t, CheckNone, check)

	result, check = r.test(p, &matches, "", "other.md")
	assert.Equal(t, ResultNone, result)
	assert.Equal(t, CheckPattern, check)

	result, check = r.test(p, &matches, "", "b.txt")
	assert.Equal(t, ResultNone, result)
	assert.Equal(t, CheckMaxMatches, check)
	assert.Equal(t, 1, matches)
}

func TestRuleSize(t *testing.T) {
	p := inspector{sizer: fixedSize{"small": 3, "mid": 10, "big": 30}}
	r := MustRule(Spec{Result: true, Patterns: []string{"*"}, SizeGT: int64Ptr(5), SizeLT: int64Ptr(20)})

	tests := []struct {
		path  string
		want  Result
		check Check
	}{
		{"small", ResultNone, CheckSize},
		{"mid", ResultInclude, CheckNone},
		{"big", ResultNone, CheckSize},
		{"unreadable", ResultInclude, CheckNone},
	}
	for _, tt := range tests {
		matches := 0
		result, check := r.test(p, &matches, "", tt.path)
		assert.Equal(t, tt.want, result, tt.path)
		assert.Equal(t, tt.check, check, tt.path)
	}
}

func TestRuleType(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "notes.txt", "hello\n")
	writeFile(t, root, "blob.bin", "\x00\x01\x02")
	writeFile(t, root, "venv/bin/activate", "")
	writeFile(t, root, "src/main.go", "package main\n")

	rs := FromRules("", nil)
	text := MustRule(Include("*").AsType(TypeText))
	binary := MustRule(Include("*").AsType(TypeBinary))
	venv := MustRule(Spec{Patterns: []string{"*"}, Type: TypeDir, Sentinel: "bin/activate"})
	anyDir := MustRule(Exclude("*").AsType(TypeDir))

	tests := []struct {
		name string
		rule *Rule
		path string
		want Result
	}{
		{"text on text", text, "notes.txt", ResultInclude},
		{"text on binary", text, "blob.bin", ResultNone},
		{"binary on binary", binary, "blob.bin", ResultInclude},
		{"binary on text", binary, "notes.txt", ResultNone},
		{"dir with sentinel", venv, "venv", ResultExclude},
		{"dir without sentinel", venv, "src", ResultNone},
		{"dir on file", anyDir, "notes.txt", ResultNone},
		{"dir on missing", anyDir, "gone", ResultNone},
		{"dir", anyDir, "src", ResultExclude},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			matches := 0
			result, check := tt.rule.test(rs.inspector, &matches, root, tt.path)
			assert.Equal(t, tt.want, result)
			if tt.want == ResultNone {
				assert.Equal(t, CheckType, check)
			}
		})
	}
}
