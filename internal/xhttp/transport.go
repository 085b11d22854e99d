package xhttp

import (
	"fmt"
	"net/http"

	"github.com/garrettladley/slackgate/internal/version"
)

type slackgateTransport struct {
	base http.RoundTripper
}

var _ http.RoundTripper = (*slackgateTransport)(nil)

func (t *slackgateTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.Header.Set(UserAgent, version.UserAgent())
	req.Header.Set(version.Header, version.Get())
	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, fmt.Errorf("failed to perform round trip: %w", err)
	}
	return resp, nil
}

// NewTransport returns an http.RoundTripper with standard slackgate headers.
func NewTransport() http.RoundTripper {
	return &slackgateTransport{base: http.DefaultTransport}
}
