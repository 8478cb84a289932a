package repo

import (
	"fmt"
	"path/filepath"
	"strings"
)

// vcsSuffix is stripped from the last URL segment when deriving an ID.
const vcsSuffix = ".git"

// Descriptor identifies one repository under evaluation.
// It is created once per repository and never mutated afterwards.
type Descriptor struct {
	URL  string `json:"url"`
	ID   string `json:"id"`
	Path string `json:"path"`
}

// New builds a descriptor for url, placing its working tree under workDir.
func New(url, workDir string) (Descriptor, error) {
	id, err := DeriveID(url)
	if err != nil {
		return Descriptor{}, err
	}
	return Descriptor{
		URL:  url,
		ID:   id,
		Path: filepath.Join(workDir, id),
	}, nil
}

// DeriveID returns the local identifier for a repository URL: its final path
// segment with a trailing ".git" removed.
// "https://github.com/org/pna.git" → "pna"
// "git@github.com:org/pna.git"    → "pna"
func DeriveID(url string) (string, error) {
	trimmed := strings.TrimSpace(url)
	trimmed = strings.TrimRight(trimmed, "/")
	if trimmed == "" {
		return "", fmt.Errorf("empty repository url")
	}

	// scp-like syntax has no slash between host and path
	seg := trimmed
	if i := strings.LastIndexAny(seg, "/:"); i >= 0 {
		seg = seg[i+1:]
	}
	seg = strings.TrimSuffix(seg, vcsSuffix)

	if seg == "" || seg == "." || seg == ".." {
		return "", fmt.Errorf("cannot derive repository id from %q", url)
	}
	return seg, nil
}
