package dispatch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/garrettladley/slackgate/internal/eventtype"
	"github.com/garrettladley/slackgate/internal/signature"
	go_json "github.com/goccy/go-json"
	"github.com/slack-go/slack/slackevents"
)

// ErrDispatchType is returned by typed accessors when the payload carries a
// different dispatch type than the one requested.
var ErrDispatchType = errors.New("payload has a different dispatch type")

type contextKey struct{}

type attribute struct {
	value any
	err   error
}

// Context is the per-request view handlers work against. It owns the buffered
// body, the discriminators and a cache of decoded attributes. A Context is
// confined to the goroutine serving its request.
type Context struct {
	w     http.ResponseWriter
	r     *http.Request
	raw   []byte
	body  *bytes.Reader
	types eventtype.Discriminators

	validator   *signature.Validator
	verified    bool
	verifiedSet bool

	attrs map[reflect.Type]attribute
}

func newContext(w http.ResponseWriter, r *http.Request, raw []byte, validator *signature.Validator) *Context {
	c := &Context{
		w:         w,
		raw:       raw,
		body:      bytes.NewReader(raw),
		validator: validator,
		attrs:     make(map[reflect.Type]attribute),
	}
	r = r.WithContext(context.WithValue(r.Context(), contextKey{}, c))
	r.Body = io.NopCloser(c.body)
	r.ContentLength = int64(len(raw))
	c.r = r
	return c
}

// FromRequest returns the Context attached to r by the dispatcher. Handlers
// reached through a rewrite or a delegate use it to share the cached
// attributes and verification result.
func FromRequest(r *http.Request) (*Context, bool) {
	c, ok := r.Context().Value(contextKey{}).(*Context)
	return c, ok
}

func (c *Context) Request() *http.Request              { return c.r }
func (c *Context) ResponseWriter() http.ResponseWriter { return c.w }
func (c *Context) Context() context.Context            { return c.r.Context() }

// Raw returns the buffered request body. Callers must not modify it.
func (c *Context) Raw() []byte { return c.raw }

// Body returns the request body rewound to offset zero.
func (c *Context) Body() io.ReadSeeker {
	c.rewind()
	return c.body
}

func (c *Context) rewind() {
	_, _ = c.body.Seek(0, io.SeekStart)
}

func (c *Context) Discriminators() eventtype.Discriminators { return c.types }
func (c *Context) DispatchType() string                     { return c.types.DispatchType }
func (c *Context) EventType() string                        { return c.types.EventType }

// Verified reports whether the request carries a valid signature. The check
// runs at most once per request.
func (c *Context) Verified() bool {
	if !c.verifiedSet {
		c.verified = c.validator != nil && c.validator.Verify(c.r, c.body)
		c.verifiedSet = true
		c.rewind()
	}
	return c.verified
}

// Attributes decodes the body into T. Each type is decoded at most once per
// request; later calls return the cached value and error.
func Attributes[T any](c *Context) (T, error) {
	key := reflect.TypeFor[T]()
	if a, ok := c.attrs[key]; ok {
		v, _ := a.value.(T)
		return v, a.err
	}

	var v T
	if err := go_json.Unmarshal(c.raw, &v); err != nil {
		var zero T
		err = fmt.Errorf("failed to decode %s: %w", key, err)
		c.attrs[key] = attribute{value: zero, err: err}
		return zero, err
	}
	c.attrs[key] = attribute{value: v}
	return v, nil
}

type envelope[T any] struct {
	Event T `json:"event"`
}

// InnerEvent decodes the wrapped "event" object of a callback into T.
func InnerEvent[T any](c *Context) (T, error) {
	e, err := Attributes[envelope[T]](c)
	return e.Event, err
}

// VerificationEvent returns the handshake payload of a url_verification
// request.
func VerificationEvent(c *Context) (*slackevents.EventsAPIURLVerificationEvent, error) {
	if !strings.EqualFold(c.DispatchType(), slackevents.URLVerification) {
		return nil, fmt.Errorf("%w: %q", ErrDispatchType, c.DispatchType())
	}
	return Attributes[*slackevents.EventsAPIURLVerificationEvent](c)
}

// CallbackEvent returns the outer envelope of an event_callback request.
func CallbackEvent(c *Context) (*slackevents.EventsAPICallbackEvent, error) {
	if !strings.EqualFold(c.DispatchType(), slackevents.CallbackEvent) {
		return nil, fmt.Errorf("%w: %q", ErrDispatchType, c.DispatchType())
	}
	return Attributes[*slackevents.EventsAPICallbackEvent](c)
}
