package config

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// repoList is the document form of a repository list file.
type repoList struct {
	Repositories []string `yaml:"repositories" json:"repositories" toml:"repositories"`
}

// LoadRepoList reads repository URLs from path. The format follows the
// extension: .yml/.yaml and .json accept a bare list or a document with a
// "repositories" key, .toml needs the key, anything else is plain text
// with one URL per line and # comments.
func LoadRepoList(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read repo list: %w", err)
	}

	var urls []string
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml":
		urls, err = parseDocument(data, yaml.Unmarshal)
	case ".json":
		urls, err = parseDocument(data, json.Unmarshal)
	case ".toml":
		var doc repoList
		err = toml.Unmarshal(data, &doc)
		urls = doc.Repositories
	default:
		urls, err = parseLines(data)
	}
	if err != nil {
		return nil, fmt.Errorf("parse repo list %s: %w", path, err)
	}
	return clean(urls), nil
}

func parseDocument(data []byte, unmarshal func([]byte, any) error) ([]string, error) {
	var list []string
	if err := unmarshal(data, &list); err == nil {
		return list, nil
	}
	var doc repoList
	if err := unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return doc.Repositories, nil
}

func parseLines(data []byte) ([]string, error) {
	var urls []string
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		line := sc.Text()
		if i := strings.Index(line, "#"); i >= 0 {
			line = line[:i]
		}
		if line = strings.TrimSpace(line); line != "" {
			urls = append(urls, line)
		}
	}
	return urls, sc.Err()
}

func clean(urls []string) []string {
	out := urls[:0]
	for _, u := range urls {
		if u = strings.TrimSpace(u); u != "" {
			out = append(out, u)
		}
	}
	return out
}

// MergeURLs concatenates lists in order and drops exact duplicates,
// keeping the first occurrence. The dropped URLs are returned separately.
func MergeURLs(lists ...[]string) (urls, duplicates []string) {
	seen := mapset.NewThreadUnsafeSet[string]()
	for _, list := range lists {
		for _, u := range list {
			u = strings.TrimSpace(u)
			if u == "" {
				continue
			}
			if !seen.Add(u) {
				duplicates = append(duplicates, u)
				continue
			}
			urls = append(urls, u)
		}
	}
	return urls, duplicates
}
