package runner

import (
	"fmt"
	"strings"
	"testing"
)

// fakeKey builds a credential-shaped string at runtime so the test file
// itself does not trip secret scanners.
func fakeKey(prefix string, length int) string {
	body := strings.Repeat("ab12cd34ef", length/10+1)
	return prefix + body[:length]
}

func TestRedactGitHubToken(t *testing.T) {
	key := fakeKey("ghp_", 40)
	result, count := Redact("token: " + key)
	if count != 1 {
		t.Errorf("expected 1 secret, got %d", count)
	}
	if strings.Contains(result, "ghp_") {
		t.Error("github token not redacted")
	}
}

func TestRedactHuggingFaceToken(t *testing.T) {
	key := fakeKey("hf_", 34)
	result, count := Redact("downloading with " + key)
	if count != 1 {
		t.Errorf("expected 1 secret, got %d", count)
	}
	if strings.Contains(result, key) {
		t.Error("hf token not redacted")
	}
}

func TestRedactAWSKey(t *testing.T) {
	key := "AKIA" + strings.Repeat("ABCD", 4)
	result, count := Redact("aws_access_key_id = " + key)
	if count != 1 {
		t.Errorf("expected 1 secret, got %d", count)
	}
	if strings.Contains(result, key) {
		t.Error("AWS key not redacted")
	}
}

func TestRedactBearer(t *testing.T) {
	token := fakeKey("", 30)
	result, _ := Redact("Authorization: Bearer " + token)
	if strings.Contains(result, token) {
		t.Error("bearer token not redacted")
	}
}

func TestRedactEnvDump(t *testing.T) {
	input := "declare -x GITHUB_TOKEN=fakeval123\nexport HF_TOKEN=other\nLANG=C\n"
	result, count := Redact(input)
	if count < 2 {
		t.Errorf("expected at least 2 matches, got %d", count)
	}
	if strings.Contains(result, "fakeval123") || strings.Contains(result, "other") {
		t.Errorf("env values not redacted: %q", result)
	}
	if !strings.Contains(result, "LANG=C") {
		t.Error("harmless line removed")
	}
}

func TestRedactLeavesScoresAlone(t *testing.T) {
	input := "epoch 3 loss 0.21\nAccuracy: 0.8731\n"
	result, count := Redact(input)
	if count != 0 {
		t.Errorf("expected 0 secrets, got %d", count)
	}
	if result != input {
		t.Error("clean output was modified")
	}
}

func TestRedactMultiple(t *testing.T) {
	input := fmt.Sprintf("a: %s\nb: %s", fakeKey("ghp_", 40), fakeKey("sk-test-", 24))
	if _, count := Redact(input); count != 2 {
		t.Errorf("expected 2 secrets, got %d", count)
	}
}
