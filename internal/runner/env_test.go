package runner

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestResolveEnv_Nil(t *testing.T) {
	got, err := ResolveEnv(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil, got %v", got)
	}
}

func TestResolveEnv_LiteralValues(t *testing.T) {
	got, err := ResolveEnv(map[string]string{
		"OMP_NUM_THREADS": "1",
		"DATASET":         "iris",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got["OMP_NUM_THREADS"] != "1" || got["DATASET"] != "iris" {
		t.Fatalf("unexpected result: %v", got)
	}
}

func TestResolveEnv_EnvReference(t *testing.T) {
	t.Setenv("BENCH_TEST_SEED", "1234")

	got, err := ResolveEnv(map[string]string{"SEED": "env:BENCH_TEST_SEED"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got["SEED"] != "1234" {
		t.Fatalf("SEED: got %q, want %q", got["SEED"], "1234")
	}
}

func TestResolveEnv_MissingEnvVar(t *testing.T) {
	t.Setenv("BENCH_TEST_UNSET", "")

	if _, err := ResolveEnv(map[string]string{"SEED": "env:BENCH_TEST_UNSET"}); err == nil {
		t.Fatal("expected error for missing env var")
	}
}

func TestMapToEnvSlice_Sorted(t *testing.T) {
	got := MapToEnvSlice(map[string]string{"B": "2", "A": "1"})
	if len(got) != 2 || got[0] != "A=1" || got[1] != "B=2" {
		t.Fatalf("unexpected result: %v", got)
	}
	if MapToEnvSlice(nil) != nil {
		t.Fatal("expected nil for empty map")
	}
}

func TestChildEnv(t *testing.T) {
	t.Setenv("PATH", "/usr/bin")
	t.Setenv("GITHUB_TOKEN", "should-not-leak")

	env := &Environment{RepoID: "r", Path: "/work/r/venv"}
	got := childEnv(env, []string{"SEED=7"})

	vars := make(map[string]string)
	for _, kv := range got {
		k, v, _ := strings.Cut(kv, "=")
		vars[k] = v
	}

	wantPath := filepath.Dir(env.Python()) + string(os.PathListSeparator) + "/usr/bin"
	if vars["PATH"] != wantPath {
		t.Errorf("PATH: got %q, want %q", vars["PATH"], wantPath)
	}
	if vars["VIRTUAL_ENV"] != env.Path {
		t.Errorf("VIRTUAL_ENV: got %q, want %q", vars["VIRTUAL_ENV"], env.Path)
	}
	if vars["SEED"] != "7" {
		t.Errorf("SEED: got %q, want %q", vars["SEED"], "7")
	}
	if _, ok := vars["GITHUB_TOKEN"]; ok {
		t.Error("GITHUB_TOKEN leaked into child environment")
	}
}
