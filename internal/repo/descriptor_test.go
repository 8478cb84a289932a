package repo

import (
	"path/filepath"
	"testing"
)

func TestDeriveID(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://github.com/lukecavabarrett/pna.git", "pna"},
		{"https://github.com/benedekrozemberczki/karateclub", "karateclub"},
		{"https://github.com/org/repo/", "repo"},
		{"git@github.com:org/IGB-Datasets.git", "IGB-Datasets"},
		{"/srv/mirrors/local.git", "local"},
		{"  https://example.com/a/b.git  ", "b"},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			got, err := DeriveID(tt.url)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("DeriveID(%q) = %q, want %q", tt.url, got, tt.want)
			}
		})
	}
}

func TestDeriveID_Invalid(t *testing.T) {
	for _, url := range []string{"", "   ", "https://example.com/.git", "/"} {
		if _, err := DeriveID(url); err == nil {
			t.Errorf("DeriveID(%q): expected error", url)
		}
	}
}

func TestNew(t *testing.T) {
	d, err := New("https://github.com/org/pna.git", "/tmp/work")
	if err != nil {
		t.Fatal(err)
	}
	if d.ID != "pna" {
		t.Errorf("ID: got %q", d.ID)
	}
	if d.Path != filepath.Join("/tmp/work", "pna") {
		t.Errorf("Path: got %q", d.Path)
	}
	if d.URL != "https://github.com/org/pna.git" {
		t.Errorf("URL: got %q", d.URL)
	}
}
