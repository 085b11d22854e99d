package xhttp

import (
	"net/http"
	"time"
)

type ClientOption func(*http.Client)

func WithTimeout(d time.Duration) ClientOption {
	return func(c *http.Client) { c.Timeout = d }
}

// WithoutRedirects returns 3xx responses to the caller instead of following
// them.
func WithoutRedirects() ClientOption {
	return func(c *http.Client) {
		c.CheckRedirect = func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }
	}
}

// NewHTTPClient returns a client whose requests carry the slackgate
// User-Agent and version headers.
func NewHTTPClient(opts ...ClientOption) *http.Client {
	c := &http.Client{Transport: NewTransport()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}
