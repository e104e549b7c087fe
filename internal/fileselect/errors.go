package fileselect

import "errors"

var (
	ErrInvalidType    = errors.New("invalid rule type")
	ErrNoPatterns     = errors.New("rule has no patterns")
	ErrInvalidPattern = errors.New("invalid rule pattern")
	ErrNilRuleSet     = errors.New("rule set is nil")
)
