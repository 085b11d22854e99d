package dispatch

import (
	"net/http"
	"strings"

	"github.com/garrettladley/slackgate/internal/xhttp"
	"github.com/slack-go/slack/slackevents"
)

// Predicate selects the requests a handler acts on.
type Predicate func(c *Context) bool

// EventTypeIs matches wrapped events whose "event.type" equals t, ignoring case.
func EventTypeIs(t string) Predicate {
	return func(c *Context) bool {
		return c.types.HasEventType() && strings.EqualFold(c.EventType(), t)
	}
}

// DispatchTypeIs matches payloads whose top-level "type" equals t, ignoring case.
func DispatchTypeIs(t string) Predicate {
	return func(c *Context) bool {
		return c.types.HasDispatchType() && strings.EqualFold(c.DispatchType(), t)
	}
}

// URLVerification answers the Events API handshake by echoing the challenge
// as plain text.
func URLVerification() Handler {
	isHandshake := DispatchTypeIs(slackevents.URLVerification)
	return HandlerFunc(func(c *Context) (Outcome, error) {
		if !isHandshake(c) {
			return None(), nil
		}
		ev, err := VerificationEvent(c)
		if err != nil {
			return None(), err
		}
		xhttp.WriteText(c.w, http.StatusOK, ev.Challenge)
		return EndResponse(), nil
	})
}

// RedirectEventType redirects events of the given type to location, which
// must be absolute.
func RedirectEventType(eventType, location string) (Handler, error) {
	outcome, err := NewRedirect(location)
	if err != nil {
		return nil, err
	}
	match := EventTypeIs(eventType)
	return HandlerFunc(func(c *Context) (Outcome, error) {
		if !match(c) {
			return None(), nil
		}
		return outcome, nil
	}), nil
}

// RedirectWhen redirects matching requests to the location computed by locate.
// A relative location is reported as a handler error.
func RedirectWhen(pred Predicate, locate func(c *Context) (string, error)) Handler {
	return HandlerFunc(func(c *Context) (Outcome, error) {
		if !pred(c) {
			return None(), nil
		}
		location, err := locate(c)
		if err != nil {
			return None(), err
		}
		return NewRedirect(location)
	})
}

// RewriteEventType re-enters the pipeline at path for events of the given type.
func RewriteEventType(eventType, path string) Handler {
	return RewriteWhen(EventTypeIs(eventType), path)
}

func RewriteWhen(pred Predicate, path string) Handler {
	return RewriteWhenFunc(pred, func(*Context) (string, error) { return path, nil })
}

// RewriteEventTypeFunc re-enters the pipeline at the path computed by build
// for events of the given type.
func RewriteEventTypeFunc(eventType string, build func(c *Context) (string, error)) Handler {
	return RewriteWhenFunc(EventTypeIs(eventType), build)
}

// RewriteWhenFunc re-enters the pipeline at the path computed by build. A path
// that does not start with '/' is reported as a handler error.
func RewriteWhenFunc(pred Predicate, build func(c *Context) (string, error)) Handler {
	return HandlerFunc(func(c *Context) (Outcome, error) {
		if !pred(c) {
			return None(), nil
		}
		path, err := build(c)
		if err != nil {
			return None(), err
		}
		return NewRewrite(path)
	})
}

// Delegate hands matching requests to h, which must write the full response.
func Delegate(pred Predicate, h http.Handler) Handler {
	return HandlerFunc(func(c *Context) (Outcome, error) {
		if !pred(c) {
			return None(), nil
		}
		c.rewind()
		h.ServeHTTP(c.w, c.r)
		return EndResponse(), nil
	})
}
