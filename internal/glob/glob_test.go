package glob

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompilePathMode(t *testing.T) {
	tests := []struct {
		pattern string
		path    string
		want    bool
	}{
		{"*.txt", "a.txt", true},
		{"*.txt", "dir/a.txt", false},
		{"**/*.txt", "dir/sub/a.txt", true},
		{"a?c", "abc", true},
		{"a?c", "a/c", false},
		{"dir//x", "dir/x", true},
		{"[ab].go", "b.go", true},
		{"[^ab].go", "b.go", false},
		{"*.{go,mod}", "go.mod", true},
		{"*.{go,mod}", "go.sum", false},
		{"^re.*$", "regex", true},
	}
	for _, tt := range tests {
		t.Run(tt.pattern+"~"+tt.path, func(t *testing.T) {
			rx, err := Compile(tt.pattern)
			require.NoError(t, err)
			assert.Equal(t, tt.want, rx.MatchString(tt.path))
		})
	}
}

func TestCompilePathModeErrors(t *testing.T) {
	for _, pattern := range []string{`a\b`, "[abc", "{a,b"} {
		_, err := Compile(pattern)
		assert.Error(t, err, pattern)
	}
}

func TestCompileShell(t *testing.T) {
	tests := []struct {
		pattern string
		path    string
		want    bool
	}{
		{"*", "anything/at/all", true},
		{"*.txt", "a.txt", true},
		{"*.txt", "a.txt.bak", false},
		{"src/*", "src/pkg/main.go", true},
		{"a?c", "a/c", true},
		{"[!ab].go", "c.go", true},
		{"[!ab].go", "a.go", false},
		{"[]x].go", "].go", true},
		{"[abc", "[abc", true},
		{"{a,b}", "{a,b}", true},
		{"{a,b}", "a", false},
		{`a\b`, `a\b`, true},
		{"^x", "^x", true},
		{"***.py", "deep/dir/x.py", true},
		{"line?break", "line\nbreak", true},
	}
	for _, tt := range tests {
		t.Run(tt.pattern+"~"+tt.path, func(t *testing.T) {
			rx, err := CompileShell(tt.pattern)
			require.NoError(t, err)
			assert.Equal(t, tt.want, rx.MatchString(tt.path))
		})
	}
}

func TestCompileRegexpIsFullMatch(t *testing.T) {
	rx, err := CompileRegexp(`.*\.py`)
	require.NoError(t, err)
	assert.True(t, rx.MatchString("a/b.py"))
	assert.False(t, rx.MatchString("a/b.pyc"))

	rx, err = CompileRegexp(`a|b`)
	require.NoError(t, err)
	assert.True(t, rx.MatchString("a"))
	assert.False(t, rx.MatchString("ab"))

	_, err = CompileRegexp(`(`)
	assert.Error(t, err)
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "a/b", Normalize("a//b/"))
	assert.Equal(t, "a/c", Normalize("a/b/../c"))
	assert.Equal(t, "e\u0301", Normalize("\u00e9"))
}

func TestModeString(t *testing.T) {
	assert.Equal(t, "ShellMode", ShellMode.String())
	assert.Equal(t, "PathMode", PathMode.GoString())
}
