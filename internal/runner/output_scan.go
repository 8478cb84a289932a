package runner

import (
	"regexp"
	"strings"
)

// secretPatterns match credential values in captured model output.
var secretPatterns = []*regexp.Regexp{
	regexp.MustCompile(`ghp_[a-zA-Z0-9]{36,}`),
	regexp.MustCompile(`gho_[a-zA-Z0-9]{36,}`),
	regexp.MustCompile(`github_pat_[a-zA-Z0-9_]{22,}`),
	regexp.MustCompile(`hf_[a-zA-Z0-9]{30,}`),
	regexp.MustCompile(`sk-[a-zA-Z0-9\-]{20,}`),
	regexp.MustCompile(`AKIA[0-9A-Z]{16}`),
	regexp.MustCompile(`(?i)bearer\s+[a-zA-Z0-9\-_.]{20,}`),
}

// envKeyValuePattern matches KEY=VALUE lines for variables that
// SanitizedEnv strips, in case a script dumps its environment anyway.
var envKeyValuePattern = regexp.MustCompile(
	`(?im)^(?:declare -x |export )?` +
		`(BENCHFORGE_\w*|GITHUB_TOKEN|GH_TOKEN|HF_TOKEN|HUGGING_FACE_HUB_TOKEN|OPENAI_\w*|ANTHROPIC_\w*|AWS_SECRET\w*|AWS_SESSION\w*|API_KEY|API_SECRET|SECRET_KEY)` +
		`[= ].*$`,
)

const redactPlaceholder = "[REDACTED]"

// Redact returns output with credential values and sensitive env lines
// replaced, plus the number of replacements.
func Redact(output string) (string, int) {
	count := 0
	result := output
	for _, re := range secretPatterns {
		if n := len(re.FindAllStringIndex(result, -1)); n > 0 {
			count += n
			result = re.ReplaceAllString(result, redactPlaceholder)
		}
	}

	if n := len(envKeyValuePattern.FindAllStringIndex(result, -1)); n > 0 {
		count += n
		result = envKeyValuePattern.ReplaceAllString(result, redactPlaceholder)
	}

	for strings.Contains(result, redactPlaceholder+"\n"+redactPlaceholder) {
		result = strings.ReplaceAll(result, redactPlaceholder+"\n"+redactPlaceholder, redactPlaceholder)
	}
	return result, count
}
