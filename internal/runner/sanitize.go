package runner

import (
	"os"
	"strings"
)

// sensitiveEnvPrefixes are stripped from the environment of every child
// process. Evaluated repositories run untrusted code.
var sensitiveEnvPrefixes = []string{
	"BENCHFORGE_",
	"GITHUB_TOKEN",
	"GH_TOKEN",
	"GH_ENTERPRISE_TOKEN",
	"GITLAB_TOKEN",
	"HF_TOKEN",
	"HUGGING_FACE_HUB_TOKEN",
	"OPENAI_API",
	"ANTHROPIC_API",
	"AWS_SECRET",
	"AWS_SESSION",
}

// sensitiveEnvExact are stripped by exact match.
var sensitiveEnvExact = []string{
	"API_KEY",
	"API_SECRET",
	"SECRET_KEY",
}

// SanitizedEnv returns os.Environ() with sensitive variables removed.
func SanitizedEnv() []string {
	return sanitizeEnv(os.Environ())
}

func sanitizeEnv(environ []string) []string {
	clean := make([]string, 0, len(environ))
	for _, entry := range environ {
		name, _, ok := strings.Cut(entry, "=")
		if !ok || !isSensitive(strings.ToUpper(name)) {
			clean = append(clean, entry)
		}
	}
	return clean
}

func isSensitive(upper string) bool {
	for _, prefix := range sensitiveEnvPrefixes {
		if strings.HasPrefix(upper, prefix) {
			return true
		}
	}
	for _, exact := range sensitiveEnvExact {
		if upper == exact {
			return true
		}
	}
	return false
}
