package runner

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ResolveEnv resolves "env:VAR_NAME" references in an env map to values
// from the current process environment. A referenced variable that is
// unset or empty is an error.
func ResolveEnv(env map[string]string) (map[string]string, error) {
	if len(env) == 0 {
		return nil, nil
	}
	resolved := make(map[string]string, len(env))
	for k, v := range env {
		if ref, ok := strings.CutPrefix(v, "env:"); ok {
			val := os.Getenv(ref)
			if val == "" {
				return nil, fmt.Errorf("env var %q (referenced by %q) is not set", ref, k)
			}
			resolved[k] = val
			continue
		}
		resolved[k] = v
	}
	return resolved, nil
}

// MapToEnvSlice converts an env map to sorted "K=V" strings.
func MapToEnvSlice(env map[string]string) []string {
	if len(env) == 0 {
		return nil
	}
	s := make([]string, 0, len(env))
	for k, v := range env {
		s = append(s, k+"="+v)
	}
	sort.Strings(s)
	return s
}

// childEnv builds the environment for a process run inside env: the
// sanitized parent environment, the environment's bin directory first on
// PATH, VIRTUAL_ENV set, then extra applied last.
func childEnv(env *Environment, extra []string) []string {
	base := SanitizedEnv()
	out := make([]string, 0, len(base)+len(extra)+2)
	path := os.Getenv("PATH")
	for _, kv := range base {
		name, _, _ := strings.Cut(kv, "=")
		if name == "PATH" || name == "VIRTUAL_ENV" || name == "PYTHONHOME" {
			continue
		}
		out = append(out, kv)
	}
	bin := filepath.Dir(env.Python())
	if path != "" {
		bin += string(os.PathListSeparator) + path
	}
	out = append(out, "PATH="+bin, "VIRTUAL_ENV="+env.Path)
	return append(out, extra...)
}
