package runner

import (
	"strings"
	"testing"
)

func TestSanitizeEnvStripsCredentials(t *testing.T) {
	input := []string{
		"HOME=/home/user",
		"PATH=/usr/bin",
		"GITHUB_TOKEN=ghp_abc123",
		"GH_TOKEN=gho_abc",
		"BENCHFORGE_WORKERS=4",
		"HF_TOKEN=hf_secret",
		"OPENAI_API_KEY=sk-secret456",
		"AWS_SECRET_ACCESS_KEY=wJalrXUtnFEMI",
		"AWS_SESSION_TOKEN=FwoGZX",
		"API_KEY=generic-key",
		"SECRET_KEY=django-secret",
	}

	result := sanitizeEnv(input)

	if len(result) != 2 {
		t.Errorf("expected 2 safe vars, got %d: %v", len(result), result)
	}
	for _, entry := range result {
		name, _, _ := strings.Cut(entry, "=")
		if name != "HOME" && name != "PATH" {
			t.Errorf("unexpected env var survived: %s", name)
		}
	}
}

func TestSanitizeEnvPreservesSafe(t *testing.T) {
	input := []string{
		"HOME=/home/user",
		"PATH=/usr/bin:/usr/local/bin",
		"LANG=en_US.UTF-8",
		"CUDA_VISIBLE_DEVICES=0",
		"OMP_NUM_THREADS=1",
	}

	if got := sanitizeEnv(input); len(got) != len(input) {
		t.Errorf("expected %d vars, got %d", len(input), len(got))
	}
}

func TestSanitizeEnvCaseInsensitive(t *testing.T) {
	got := sanitizeEnv([]string{"github_token=lower", "Hf_Token=mixed"})
	if len(got) != 0 {
		t.Errorf("expected 0 vars, got %d: %v", len(got), got)
	}
}

func TestSanitizeEnvEmptyInput(t *testing.T) {
	if got := sanitizeEnv(nil); len(got) != 0 {
		t.Errorf("expected 0 vars for nil input, got %d", len(got))
	}
}
