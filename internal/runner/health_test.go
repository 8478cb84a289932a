package runner

import (
	"io"
	"strings"
	"sync"
	"testing"
)

func TestClassifyWriter_Patterns(t *testing.T) {
	tests := []struct {
		stderr string
		want   string
	}{
		{"fatal: unable to access 'https://h/r/': SSL certificate problem: certificate has expired", "TLS certificate problem"},
		{"fatal: unable to access 'https://h/r/': Could not resolve host: h", "DNS resolution failed"},
		{"fatal: unable to access 'https://h/r/': Failed to connect to h port 443: Connection refused", "connection refused"},
		{"fatal: unable to access 'https://h/r/': Failed to connect to h port 443: Connection timed out", "connection timed out"},
		{"net/http: TLS handshake timeout", "TLS handshake timeout"},
		{"fatal: Authentication failed for 'https://h/r/'", "authentication failed"},
		{"fatal: could not read Username for 'https://h': terminal prompts disabled", "authentication required"},
		{"git@h: Permission denied (publickey).", "authentication failed"},
		{"remote: Repository not found.", "repository not found"},
		{"fatal: '/tmp/x' does not appear to be a git repository", "not a git repository"},
		{"warning: redirecting to https://h/r.git/", ""},
	}

	for _, tt := range tests {
		t.Run(tt.stderr, func(t *testing.T) {
			cw := newClassifyWriter(io.Discard, fetchFailurePatterns)
			_, _ = cw.Write([]byte(tt.stderr))
			if got := cw.Reason(); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestClassifyWriter_PassesThrough(t *testing.T) {
	var sink strings.Builder
	cw := newClassifyWriter(&sink, fetchFailurePatterns)

	n, err := cw.Write([]byte("Cloning into 'x'...\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 20 {
		t.Errorf("expected 20 bytes written, got %d", n)
	}
	if sink.String() != "Cloning into 'x'...\n" {
		t.Errorf("unexpected passthrough: %q", sink.String())
	}
	if cw.Reason() != "" {
		t.Errorf("expected no reason, got %q", cw.Reason())
	}
}

func TestClassifyWriter_ConcurrentWrites(t *testing.T) {
	cw := newClassifyWriter(io.Discard, fetchFailurePatterns)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = cw.Write([]byte("remote: Repository not found.\n"))
		}()
	}
	wg.Wait()

	if cw.Reason() != "repository not found" {
		t.Errorf("unexpected reason %q", cw.Reason())
	}
}
