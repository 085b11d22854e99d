package dispatch

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

var (
	ErrRelativeLocation      = errors.New("redirect location must be an absolute URL")
	ErrInvalidRedirectStatus = errors.New("redirect status must be a 3xx code")
	ErrRelativeRewrite       = errors.New("rewrite path must start with '/'")
)

// Kind tags the variant held by an Outcome.
type Kind uint8

const (
	KindNone Kind = iota
	KindRedirect
	KindRewrite
	KindEndResponse
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindRedirect:
		return "redirect"
	case KindRewrite:
		return "rewrite"
	case KindEndResponse:
		return "end_response"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Outcome is the decision a handler makes about a request. The zero value is
// None. Only Redirect and Rewrite carry a payload.
type Outcome struct {
	kind     Kind
	location string
	status   int
	path     string
}

func None() Outcome { return Outcome{} }

// EndResponse reports that the handler already wrote the full response.
func EndResponse() Outcome { return Outcome{kind: KindEndResponse} }

// Rewrite re-enters the downstream pipeline with the request path set to path.
func Rewrite(path string) Outcome { return Outcome{kind: KindRewrite, path: path} }

// NewRewrite is like Rewrite but rejects paths that are not rooted.
func NewRewrite(path string) (Outcome, error) {
	if !strings.HasPrefix(path, "/") {
		return Outcome{}, fmt.Errorf("%w: %q", ErrRelativeRewrite, path)
	}
	return Rewrite(path), nil
}

// NewRedirect answers with the dispatcher's configured redirect status.
func NewRedirect(location string) (Outcome, error) {
	return RedirectWithStatus(location, 0)
}

// RedirectWithStatus answers with status, or with the dispatcher's configured
// status when status is zero.
func RedirectWithStatus(location string, status int) (Outcome, error) {
	if err := validateLocation(location); err != nil {
		return Outcome{}, err
	}
	if status != 0 && !isRedirectStatus(status) {
		return Outcome{}, fmt.Errorf("%w: %d", ErrInvalidRedirectStatus, status)
	}
	return Outcome{kind: KindRedirect, location: location, status: status}, nil
}

// MustRedirect is like NewRedirect but panics on a relative location.
// It is meant for locations fixed at setup time.
func MustRedirect(location string) Outcome {
	o, err := NewRedirect(location)
	if err != nil {
		panic(err)
	}
	return o
}

func (o Outcome) Kind() Kind       { return o.kind }
func (o Outcome) IsNone() bool     { return o.kind == KindNone }
func (o Outcome) Location() string { return o.location }
func (o Outcome) Path() string     { return o.path }

// Status is the redirect status override, zero when unset.
func (o Outcome) Status() int { return o.status }

func (o Outcome) String() string {
	switch o.kind {
	case KindRedirect:
		return fmt.Sprintf("redirect(%s)", o.location)
	case KindRewrite:
		return fmt.Sprintf("rewrite(%s)", o.path)
	default:
		return o.kind.String()
	}
}

func validateLocation(location string) error {
	u, err := url.Parse(location)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRelativeLocation, err)
	}
	if !u.IsAbs() || u.Host == "" {
		return fmt.Errorf("%w: %q", ErrRelativeLocation, location)
	}
	return nil
}

func isRedirectStatus(status int) bool {
	return status >= http.StatusMultipleChoices && status < http.StatusBadRequest
}
