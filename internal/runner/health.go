package runner

import (
	"io"
	"strings"
	"sync"
)

// failurePattern maps a lowercase stderr fragment to a short cause.
type failurePattern struct {
	pattern string
	reason  string
}

// fetchFailurePatterns classify git clone failures.
var fetchFailurePatterns = []failurePattern{
	{"ssl certificate problem", "TLS certificate problem"},
	{"certificate has expired", "TLS certificate problem"},
	{"could not resolve host", "DNS resolution failed"},
	{"connection refused", "connection refused"},
	{"connection timed out", "connection timed out"},
	{"operation timed out", "connection timed out"},
	{"tls handshake timeout", "TLS handshake timeout"},
	{"authentication failed", "authentication failed"},
	{"could not read username", "authentication required"},
	{"permission denied (publickey)", "authentication failed"},
	{"repository not found", "repository not found"},
	{"does not appear to be a git repository", "not a git repository"},
}

// classifyWriter passes data through to w and remembers the first known
// failure pattern it sees.
type classifyWriter struct {
	w        io.Writer
	patterns []failurePattern
	reason   string
	mu       sync.Mutex
}

func newClassifyWriter(w io.Writer, patterns []failurePattern) *classifyWriter {
	return &classifyWriter{w: w, patterns: patterns}
}

func (cw *classifyWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)

	cw.mu.Lock()
	if cw.reason == "" {
		lower := strings.ToLower(string(p))
		for _, fp := range cw.patterns {
			if strings.Contains(lower, fp.pattern) {
				cw.reason = fp.reason
				break
			}
		}
	}
	cw.mu.Unlock()

	return n, err
}

// Reason returns the classified cause, or "" when nothing matched.
func (cw *classifyWriter) Reason() string {
	cw.mu.Lock()
	defer cw.mu.Unlock()
	return cw.reason
}
