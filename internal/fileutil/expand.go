package fileutil

import (
	"os"
	"path/filepath"
	"strings"
)

// ExpandPath expands environment variables and then a leading "~".
func ExpandPath(path string) string {
	path = os.ExpandEnv(path)
	if path != "~" && !strings.HasPrefix(path, "~"+string(filepath.Separator)) {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return home + path[1:]
}
