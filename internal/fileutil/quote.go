package fileutil

import (
	"strings"

	shellquote "github.com/kballard/go-shellquote"
)

// QuotePattern shell-quotes p when it contains a space, for display only.
func QuotePattern(p string) string {
	if strings.Contains(p, " ") {
		return shellquote.Join(p)
	}
	return p
}
