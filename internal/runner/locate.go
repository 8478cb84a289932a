package runner

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrMissingEntryPoint means none of the candidate entry points exist.
var ErrMissingEntryPoint = errors.New("no entry point found")

// Locate returns the first candidate, in order, that is a regular file
// directly under repoDir.
func Locate(repoDir string, candidates []string) (string, error) {
	for _, name := range candidates {
		info, err := os.Stat(filepath.Join(repoDir, name))
		if err == nil && info.Mode().IsRegular() {
			return name, nil
		}
	}
	return "", fmt.Errorf("%w (tried %s)", ErrMissingEntryPoint, strings.Join(candidates, ", "))
}
