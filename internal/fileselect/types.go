package fileselect

import (
	"fmt"
	"strings"
)

// Type constrains the kind of filesystem entry a rule may match.
type Type byte

const (
	TypeNone Type = iota
	TypeText
	TypeBinary
	TypeDir
)

const numTypes = 4

var typeGoNames = [numTypes]string{
	"TypeNone",
	"TypeText",
	"TypeBinary",
	"TypeDir",
}

var typeNames = [numTypes]string{
	"",
	"text",
	"binary",
	"dir",
}

// ParseType accepts "", "text", "binary", "dir" and "directory".
func ParseType(s string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return TypeNone, nil
	case "text":
		return TypeText, nil
	case "binary":
		return TypeBinary, nil
	case "dir", "directory":
		return TypeDir, nil
	default:
		return TypeNone, fmt.Errorf("%w %q: expected one of text, binary, dir", ErrInvalidType, s)
	}
}

func (t Type) valid() bool {
	return t < numTypes
}

func (t Type) GoString() string {
	if !t.valid() {
		return fmt.Sprintf("Type(%d)", byte(t))
	}
	return typeGoNames[t]
}

func (t Type) String() string {
	if !t.valid() {
		return fmt.Sprintf("Type(%d)", byte(t))
	}
	return typeNames[t]
}

// Result is the outcome of one rule for one path. ResultNone means the rule
// does not apply.
type Result byte

const (
	ResultNone Result = iota
	ResultExclude
	ResultInclude
)

var resultNames = [...]string{
	"none",
	"exclude",
	"include",
}

func resultOf(include bool) Result {
	if include {
		return ResultInclude
	}
	return ResultExclude
}

func (r Result) String() string {
	if int(r) >= len(resultNames) {
		return fmt.Sprintf("Result(%d)", byte(r))
	}
	return resultNames[r]
}

// Check names the stage of rule evaluation that declined a path.
type Check byte

const (
	CheckNone Check = iota
	CheckMaxMatches
	CheckPattern
	CheckType
	CheckSize
)

var checkGoNames = [...]string{
	"CheckNone",
	"CheckMaxMatches",
	"CheckPattern",
	"CheckType",
	"CheckSize",
}

var checkNames = [...]string{
	"none",
	"max matches",
	"pattern",
	"type",
	"size",
}

func (c Check) GoString() string {
	if int(c) >= len(checkGoNames) {
		return fmt.Sprintf("Check(%d)", byte(c))
	}
	return checkGoNames[c]
}

func (c Check) String() string {
	if int(c) >= len(checkNames) {
		return fmt.Sprintf("Check(%d)", byte(c))
	}
	return checkNames[c]
}

var (
	_ fmt.GoStringer = TypeNone
	_ fmt.Stringer   = ResultNone
	_ fmt.GoStringer = CheckNone
)
