// Package github discovers repositories to evaluate from a GitHub
// organization.
package github

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-github/v81/github"
	"golang.org/x/oauth2"
)

// Client wraps the GitHub API client and the HTTP client behind it.
type Client struct {
	Client *github.Client
	HTTP   *http.Client
}

type options struct {
	baseURL string
}

// Option configures NewClient.
type Option func(*options)

// WithBaseURL points the client at a GitHub Enterprise or test server.
func WithBaseURL(raw string) Option {
	return func(o *options) {
		o.baseURL = raw
	}
}

// loggingRoundTripper emits one debug record per API request.
type loggingRoundTripper struct {
	base http.RoundTripper
}

func (t *loggingRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := t.base.RoundTrip(req)
	dur := time.Since(start).Truncate(time.Millisecond)
	if err != nil {
		slog.Debug("github api", "method", req.Method, "url", req.URL.String(), "error", err, "duration", dur)
		return resp, err
	}
	slog.Debug("github api", "method", req.Method, "url", req.URL.String(), "status", resp.StatusCode, "duration", dur)
	return resp, nil
}

// NewClient builds a client. An empty token yields an unauthenticated
// client, which is subject to low rate limits.
func NewClient(ctx context.Context, token string, opts ...Option) (*Client, error) {
	if ctx == nil {
		return nil, errors.New("github client: ctx is nil")
	}

	o := &options{}
	for _, apply := range opts {
		if apply != nil {
			apply(o)
		}
	}

	var transport http.RoundTripper = &loggingRoundTripper{base: http.DefaultTransport}
	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		transport = &oauth2.Transport{Source: ts, Base: transport}
	}
	hc := &http.Client{Transport: transport}

	gc := github.NewClient(hc)
	if o.baseURL != "" {
		raw := o.baseURL
		if !strings.HasSuffix(raw, "/") {
			raw += "/"
		}
		u, err := url.Parse(raw)
		if err != nil {
			return nil, errors.New("github client: invalid base url")
		}
		gc.BaseURL = u
	}

	return &Client{Client: gc, HTTP: hc}, nil
}
