package fileselect

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSession(t *testing.T, specs []Spec, opts ...Option) *Session {
	t.Helper()
	rs, err := New("", specs, opts...)
	require.NoError(t, err)
	return rs.NewSession(zerolog.Nop())
}

func TestNewRejectsBadSpec(t *testing.T) {
	_, err := New("", []Spec{Include("*"), {Result: true}})
	assert.ErrorIs(t, err, ErrNoPatterns)
}

func TestDisabled(t *testing.T) {
	tests := []struct {
		name  string
		specs []Spec
		want  bool
	}{
		{"empty", nil, false},
		{"exclude everything", []Spec{Exclude("*")}, true},
		{"include then exclude everything", []Spec{Include("*.py"), Exclude("*")}, true},
		{"later include", []Spec{Exclude("*"), Include("*.py")}, false},
		{"include after include", []Spec{Exclude("*"), Include("a"), Exclude("*.txt")}, false},
		{"typed exclude", []Spec{Exclude("*").AsType(TypeDir)}, false},
		{"among other patterns", []Spec{Include("x"), Exclude("*.o", "*")}, true},
		{"not a catch-all", []Spec{Exclude("**")}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rs, err := New("", tt.specs)
			require.NoError(t, err)
			assert.Equal(t, tt.want, rs.Disabled())
		})
	}

	assert.True(t, Disabled().Disabled())
}

func TestSelectFileLastWins(t *testing.T) {
	s := newSession(t, []Spec{Include("*.txt"), Exclude("secret.txt")})

	selected, results := s.SelectFile("", "secret.txt")
	assert.False(t, selected)
	require.Len(t, results, 2)
	assert.Equal(t, ResultInclude, results[0].Result)
	assert.Equal(t, ResultExclude, results[1].Result)

	selected, results = s.SelectFile("", "notes.txt")
	assert.True(t, selected)
	assert.Equal(t, CheckPattern, results[1].Check)

	last, ok := Decisive(results)
	require.True(t, ok)
	assert.Equal(t, "include *.txt", last.Rule.String())
}

func TestSelectFileDefaultExclude(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.txt", "0123456789")
	writeFile(t, root, "data/b.bin", "01234")

	s := newSession(t, []Spec{Include("*.txt")})

	selected, _ := s.SelectFile(root, "a.txt")
	assert.True(t, selected)

	selected, results := s.SelectFile(root, "data/b.bin")
	assert.False(t, selected)
	_, ok := Decisive(results)
	assert.False(t, ok)
}

func TestSelectFileSkipsDirRules(t *testing.T) {
	s := newSession(t, []Spec{Include("*"), Exclude("*").AsType(TypeDir)})
	selected, results := s.SelectFile("", "a.txt")
	assert.True(t, selected)
	assert.Len(t, results, 1)
}

func TestMaxMatchesFallsThrough(t *testing.T) {
	s := newSession(t, []Spec{
		Include("*"),
		{Result: false, Patterns: []string{"*.log"}, MaxMatches: intPtr(1)},
	})

	selected, _ := s.SelectFile("", "first.log")
	assert.False(t, selected)
	assert.Equal(t, 1, s.Matches(1))

	selected, results := s.SelectFile("", "second.log")
	assert.True(t, selected)
	assert.Equal(t, CheckMaxMatches, results[1].Check)
}

func TestSessionsDoNotShareCounters(t *testing.T) {
	rs, err := New("", []Spec{{Result: true, Patterns: []string{"*"}, MaxMatches: intPtr(1)}})
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		s := rs.NewSession(zerolog.Nop())
		selected, _ := s.SelectFile("", "a")
		assert.True(t, selected)
		selected, _ = s.SelectFile("", "b")
		assert.False(t, selected)
	}
}

func TestSizeRulesUseSizer(t *testing.T) {
	s := newSession(t,
		[]Spec{Include("*"), {Patterns: []string{"*"}, SizeGT: int64Ptr(100)}},
		WithSizer(fixedSize{"big": 1000, "small": 10}))

	selected, _ := s.SelectFile("", "big")
	assert.False(t, selected)
	selected, _ = s.SelectFile("", "small")
	assert.True(t, selected)
	selected, _ = s.SelectFile("", "unknown")
	assert.False(t, selected)
}

func TestTypeRulesUseClassifier(t *testing.T) {
	s := newSession(t,
		[]Spec{Include("*").AsType(TypeText)},
		WithClassifier(ClassifierFunc(func(path string) bool { return path == "t" })))

	selected, _ := s.SelectFile("", "t")
	assert.True(t, selected)
	selected, results := s.SelectFile("", "b")
	assert.False(t, selected)
	assert.Equal(t, CheckType, results[0].Check)
}

func TestPruneDirs(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "venv/bin/activate", "")
	writeFile(t, root, "src/main.go", "")
	writeFile(t, root, "build/out.o", "")
	writeFile(t, root, "keep/build/x", "")

	s := newSession(t, []Spec{
		Exclude("build").AsType(TypeDir),
		{Patterns: []string{"*"}, Type: TypeDir, Sentinel: "bin/activate"},
		Exclude("*.txt"),
	})

	kept, pruned := s.PruneDirs(root, "", []string{"venv", "src", "build", "keep"})
	assert.Equal(t, []string{"keep", "src"}, kept)
	assert.Equal(t, []string{"build", "venv"}, pruned)

	kept, pruned = s.PruneDirs(root, "keep", []string{"build"})
	assert.Empty(t, kept)
	assert.Equal(t, []string{"build"}, pruned)
}

func TestPruneDirsLastWins(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "build/keep.me", "")

	s := newSession(t, []Spec{
		Exclude("*").AsType(TypeDir),
		Include("build").AsType(TypeDir),
	})
	kept, pruned := s.PruneDirs(root, "", []string{"build"})
	assert.Equal(t, []string{"build"}, kept)
	assert.Empty(t, pruned)
}
