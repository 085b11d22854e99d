package dispatch

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/garrettladley/slackgate/internal/xslog"
)

// ErrHandlerPanic wraps the value recovered from a panicking handler.
var ErrHandlerPanic = errors.New("handler panicked")

// Handler decides what happens to a verified request. Returning None declines
// and lets the next handler try.
type Handler interface {
	Handle(c *Context) (Outcome, error)
}

type HandlerFunc func(c *Context) (Outcome, error)

func (f HandlerFunc) Handle(c *Context) (Outcome, error) { return f(c) }

// Chain runs handlers in registration order and stops at the first outcome
// that is not None. A handler that fails or panics counts as None.
type Chain struct {
	handlers []Handler
	hooks    hooks
}

func NewChain(handlers ...Handler) *Chain {
	return &Chain{handlers: handlers}
}

func (ch *Chain) Len() int { return len(ch.handlers) }

func (ch *Chain) Dispatch(c *Context) Outcome {
	ctx := c.Context()
	for i, h := range ch.handlers {
		if ctx.Err() != nil {
			return None()
		}

		outcome, err := invoke(i, h, c)
		if err != nil {
			if !errors.Is(err, ErrHandlerPanic) {
				xslog.FromContext(ctx).WarnContext(ctx, "handler failed",
					xslog.Handler(i),
					xslog.ErrorGroup(err),
				)
			}
			ch.hooks.handlerError(ctx, i, err)
			continue
		}
		if !outcome.IsNone() {
			return outcome
		}
	}
	return None()
}

func invoke(i int, h Handler, c *Context) (outcome Outcome, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			if rec == http.ErrAbortHandler { //nolint:errorlint // sentinel panic value
				panic(rec)
			}
			ctx := c.Context()
			xslog.FromContext(ctx).ErrorContext(ctx, "handler panicked",
				xslog.Handler(i),
				xslog.ErrorGroupWithStack(rec),
			)
			outcome, err = None(), fmt.Errorf("%w: %v", ErrHandlerPanic, rec)
		}
	}()
	// each handler reads from offset zero
	c.rewind()
	return h.Handle(c)
}
