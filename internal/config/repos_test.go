package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadRepoList_Formats(t *testing.T) {
	want := []string{
		"https://github.com/benedekrozemberczki/karateclub.git",
		"git@github.com:acme/iris.git",
	}

	cases := []struct {
		name    string
		file    string
		content string
	}{
		{"yaml list", "repos.yml", "- https://github.com/benedekrozemberczki/karateclub.git\n- git@github.com:acme/iris.git\n"},
		{"yaml doc", "repos.yaml", "repositories:\n  - https://github.com/benedekrozemberczki/karateclub.git\n  - git@github.com:acme/iris.git\n"},
		{"json list", "repos.json", `["https://github.com/benedekrozemberczki/karateclub.git", "git@github.com:acme/iris.git"]`},
		{"json doc", "repos.json", `{"repositories": ["https://github.com/benedekrozemberczki/karateclub.git", "git@github.com:acme/iris.git"]}`},
		{"toml", "repos.toml", "repositories = [\n  \"https://github.com/benedekrozemberczki/karateclub.git\",\n  \"git@github.com:acme/iris.git\",\n]\n"},
		{"text", "repos.txt", "# models to compare\nhttps://github.com/benedekrozemberczki/karateclub.git\n\n  git@github.com:acme/iris.git  # baseline\n"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tc.file)
			if err := os.WriteFile(path, []byte(tc.content), 0o644); err != nil {
				t.Fatal(err)
			}

			got, err := LoadRepoList(path)
			if err != nil {
				t.Fatalf("LoadRepoList: %v", err)
			}
			if len(got) != len(want) {
				t.Fatalf("got %v, want %v", got, want)
			}
			for i := range want {
				if got[i] != want[i] {
					t.Errorf("url %d: got %q, want %q", i, got[i], want[i])
				}
			}
		})
	}
}

func TestLoadRepoList_Errors(t *testing.T) {
	if _, err := LoadRepoList(filepath.Join(t.TempDir(), "missing.txt")); err == nil {
		t.Error("expected error for missing file")
	}

	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte(`{"repositories": [1, 2`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadRepoList(path); err == nil {
		t.Error("expected error for invalid JSON")
	}
}

func TestMergeURLs(t *testing.T) {
	urls, dups := MergeURLs(
		[]string{"https://a/x.git", " https://a/y.git ", ""},
		[]string{"https://a/x.git", "https://b/x.git"},
	)

	want := []string{"https://a/x.git", "https://a/y.git", "https://b/x.git"}
	if len(urls) != len(want) {
		t.Fatalf("urls: got %v, want %v", urls, want)
	}
	for i := range want {
		if urls[i] != want[i] {
			t.Errorf("url %d: got %q, want %q", i, urls[i], want[i])
		}
	}
	if len(dups) != 1 || dups[0] != "https://a/x.git" {
		t.Errorf("duplicates: got %v", dups)
	}
}
