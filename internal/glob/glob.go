package glob

import (
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

const (
	rxSlash    = `/+`
	rxQuestion = `[^/]`
	rxStar     = `[^/]*`
	rxStarStar = `.*`

	rxShellPrefix   = `(?s)^`
	rxShellQuestion = `.`
	rxShellStar     = `.*`
)

// Mode selects the wildcard dialect understood by a Compiler.
type Mode byte

const (
	// PathMode treats '/' as a separator: '*' and '?' never cross it, '**'
	// does, and {a,b} alternation is supported.
	PathMode Mode = iota

	// ShellMode follows fnmatch: '*' and '?' match any character including
	// '/', "[!...]" negates a class, and braces and backslashes are literal.
	ShellMode
)

var modeNames = [...]string{
	"PathMode",
	"ShellMode",
}

func (mode Mode) GoString() string {
	return modeNames[mode]
}

func (mode Mode) String() string {
	return modeNames[mode]
}

type compilerState byte

const (
	stateDone compilerState = iota
	stateReady
	stateSlash
	stateOpenBracket
	stateQuestion
	stateStar
	stateOpenBrace
	stateComma
	stateCloseBrace
)

var globCompilerStateNames = [...]string{
	"stateDone",
	"stateReady",
	"stateSlash",
	"stateOpenBracket",
	"stateQuestion",
	"stateStar",
	"stateOpenBrace",
	"stateComma",
	"stateCloseBrace",
}

func (state compilerState) GoString() string {
	return globCompilerStateNames[state]
}

func (state compilerState) String() string {
	return globCompilerStateNames[state]
}

type Compiler struct {
	err     error
	input   string
	output  []byte
	depth   uint
	char    rune
	hasChar bool
	state   compilerState
	mode    Mode
}

func (gc *Compiler) peekRune() (rune, bool) {
	if gc.err == nil && !gc.hasChar {
		ch, size := utf8.DecodeRuneInString(gc.input)
		if size > 1 || (size == 1 && ch >= 0 && ch != utf8.RuneError) {
			gc.input = gc.input[size:]
			gc.char = ch
			gc.hasChar = true
		}
	}
	return gc.char, gc.hasChar
}

func (gc *Compiler) consumeRune(expect rune) {
	if gc.err != nil {
		panic(fmt.Errorf("BUG: consumeRune(%q) after fail(%q)", expect, gc.err))
	}
	ch, ok := gc.peekRune()
	if !ok {
		panic(fmt.Errorf("BUG: expected %q; got EOF", expect))
	}
	if ch != expect {
		panic(fmt.Errorf("BUG: expected %q; got %q", expect, ch))
	}
	gc.hasChar = false
	gc.char = -1
}

func (gc *Compiler) fail(err error) bool {
	if gc.err != nil {
		panic(fmt.Errorf("BUG: fail(%q) after fail(%q)", err, gc.err))
	}
	gc.err = err
	gc.input = ""
	gc.depth = 0
	gc.char = -1
	gc.hasChar = false
	gc.state = stateDone
	return false
}

func (gc *Compiler) failf(msg string, args ...any) bool {
	return gc.fail(fmt.Errorf(msg, args...))
}

func (gc *Compiler) requireEOF() bool {
	if gc.err != nil {
		return false
	}
	if len(gc.input) > 0 {
		n := min(len(gc.input), 8)
		return gc.failf("invalid UTF-8 in pattern: %v", []byte(gc.input[:n]))
	}
	if gc.depth > 0 {
		return gc.failf("expected depth=0; got depth=%d", gc.depth)
	}
	gc.output = append(gc.output, '$')
	return gc.fail(io.EOF)
}

func (gc *Compiler) literal(ch rune) {
	gc.consumeRune(ch)
	quoted := regexp.QuoteMeta(string(ch))
	gc.output = append(gc.output, quoted...)
}

func (gc *Compiler) onReady() bool {
	ch, ok := gc.peekRune()
	if !ok {
		return gc.requireEOF()
	}
	shell := gc.mode == ShellMode
	switch {
	case ch == '\\' && shell:
		gc.literal(ch)
	case ch == '\\':
		return gc.failf("unexpected character '\\'")
	case ch == '/' && !shell:
		gc.state = stateSlash
	case ch == '*':
		gc.state = stateStar
	case ch == '?':
		gc.state = stateQuestion
	case ch == '[':
		gc.state = stateOpenBracket
	case ch == '{' && !shell:
		gc.state = stateOpenBrace
	case ch == ',' && gc.depth > 0:
		gc.state = stateComma
	case ch == '}' && gc.depth > 0:
		gc.state = stateCloseBrace
	default:
		gc.literal(ch)
	}
	return true
}

func (gc *Compiler) onSlash() bool {
	gc.consumeRune('/')
	ch, ok := gc.peekRune()
	for ok && ch == '/' {
		gc.consumeRune(ch)
		ch, ok = gc.peekRune()
	}
	gc.output = append(gc.output, rxSlash...)
	gc.state = stateReady
	return true
}

func (gc *Compiler) onBracket() bool {
	if gc.mode == ShellMode {
		return gc.onShellBracket()
	}

	gc.consumeRune('[')
	gc.output = append(gc.output, '[')

	if ch, ok := gc.peekRune(); ok && ch == '^' {
		gc.consumeRune('^')
		gc.output = append(gc.output, '^')
	}

	inEscape := false
	looping := true
	for looping {
		ch, ok := gc.peekRune()
		if !ok {
			return gc.failf("invalid character match [ab...]: %w", io.ErrUnexpectedEOF)
		}

		switch {
		case inEscape:
			gc.consumeRune(ch)
			gc.output = append(gc.output, '\\')
			gc.output = utf8.AppendRune(gc.output, ch)
			inEscape = false

		case ch == '\\':
			gc.consumeRune('\\')
			inEscape = true

		case ch == ']':
			gc.consumeRune(']')
			gc.output = append(gc.output, ']')
			looping = false

		default:
			gc.consumeRune(ch)
			gc.output = utf8.AppendRune(gc.output, ch)
		}
	}

	gc.state = stateReady
	return true
}

// onShellBracket handles fnmatch classes. An unterminated '[' is a literal,
// a leading '!' negates, and a ']' right after the opening (or after the
// '!') is a member of the class.
func (gc *Compiler) onShellBracket() bool {
	rest := gc.input
	j := 0
	if j < len(rest) && rest[j] == '!' {
		j++
	}
	if j < len(rest) && rest[j] == ']' {
		j++
	}
	if strings.IndexByte(rest[j:], ']') < 0 {
		gc.literal('[')
		gc.state = stateReady
		return true
	}

	gc.consumeRune('[')
	gc.output = append(gc.output, '[')

	first := true
	if ch, ok := gc.peekRune(); ok && ch == '!' {
		gc.consumeRune('!')
		gc.output = append(gc.output, '^')
	}

	for {
		ch, ok := gc.peekRune()
		if !ok {
			return gc.failf("invalid character match [ab...]: %w", io.ErrUnexpectedEOF)
		}
		gc.consumeRune(ch)
		switch {
		case ch == ']' && !first:
			gc.output = append(gc.output, ']')
			gc.state = stateReady
			return true
		case ch == '\\' || ch == ']' || ch == '[' || ch == '^':
			gc.output = append(gc.output, '\\')
			gc.output = utf8.AppendRune(gc.output, ch)
		default:
			gc.output = utf8.AppendRune(gc.output, ch)
		}
		first = false
	}
}

func (gc *Compiler) onQuestion() bool {
	gc.consumeRune('?')
	if gc.mode == ShellMode {
		gc.output = append(gc.output, rxShellQuestion...)
	} else {
		gc.output = append(gc.output, rxQuestion...)
	}
	gc.state = stateReady
	return true
}

func (gc *Compiler) onStar() bool {
	gc.consumeRune('*')
	if gc.mode == ShellMode {
		for ch, ok := gc.peekRune(); ok && ch == '*'; ch, ok = gc.peekRune() {
			gc.consumeRune('*')
		}
		gc.output = append(gc.output, rxShellStar...)
		gc.state = stateReady
		return true
	}
	pattern := rxStar
	if ch, ok := gc.peekRune(); ok && ch == '*' {
		gc.consumeRune('*')
		pattern = rxStarStar
	}
	gc.output = append(gc.output, pattern...)
	gc.state = stateReady
	return true
}

func (gc *Compiler) onOpenBrace() bool {
	gc.consumeRune('{')
	gc.output = append(gc.output, '(', '?', ':')
	gc.depth++
	gc.state = stateReady
	return true
}

func (gc *Compiler) onComma() bool {
	gc.consumeRune(',')
	gc.output = append(gc.output, '|')
	gc.state = stateReady
	return true
}

func (gc *Compiler) onCloseBrace() bool {
	gc.consumeRune('}')
	gc.output = append(gc.output, ')')
	gc.depth--
	gc.state = stateReady
	return true
}

func (gc *Compiler) step() bool {
	switch gc.state {
	case stateDone:
		return false
	case stateReady:
		return gc.onReady()
	case stateSlash:
		return gc.onSlash()
	case stateOpenBracket:
		return gc.onBracket()
	case stateQuestion:
		return gc.onQuestion()
	case stateStar:
		return gc.onStar()
	case stateOpenBrace:
		return gc.onOpenBrace()
	case stateComma:
		return gc.onComma()
	case stateCloseBrace:
		return gc.onCloseBrace()
	default:
		panic(fmt.Errorf("BUG: %v not implemented", gc.state))
	}
}

func (gc *Compiler) Reset(input string, mode Mode) {
	if gc.output == nil {
		gc.output = make([]byte, 0, len(input)*2+8)
	} else {
		gc.output = gc.output[:0]
	}

	gc.input = input
	gc.err = nil
	gc.state = stateReady
	gc.mode = mode
	gc.depth = 0
	gc.hasChar = false
	gc.char = -1
	if mode == ShellMode {
		gc.output = append(gc.output, rxShellPrefix...)
	} else {
		gc.output = append(gc.output, '^')
	}
}

func (gc *Compiler) Run() {
	for gc.step() {
	}
}

func (gc *Compiler) Compile() (*regexp.Regexp, error) {
	if gc.err == nil {
		panic("BUG")
	}
	if gc.err == io.EOF {
		return regexp.Compile(string(gc.output))
	}
	return nil, gc.err
}

// Compile compiles a PathMode glob. Input starting with '^' is taken to be
// a regular expression already.
func Compile(input string) (rx *regexp.Regexp, err error) {
	input = norm.NFD.String(input)
	if strings.HasPrefix(input, "^") {
		return regexp.Compile(input)
	}
	var gc Compiler
	gc.Reset(input, PathMode)
	gc.Run()
	return gc.Compile()
}

// CompileShell compiles an fnmatch-style pattern.
func CompileShell(input string) (*regexp.Regexp, error) {
	input = norm.NFD.String(input)
	var gc Compiler
	gc.Reset(input, ShellMode)
	gc.Run()
	return gc.Compile()
}

// CompileRegexp compiles expr so that it must match an entire path.
func CompileRegexp(expr string) (*regexp.Regexp, error) {
	return regexp.Compile(`^(?:` + expr + `)$`)
}

func Normalize(path string) string {
	path = filepath.Clean(path)
	path = filepath.ToSlash(path)
	path = norm.NFD.String(path)
	return path
}
