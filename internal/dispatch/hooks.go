package dispatch

import (
	"context"
	"net/http"

	"github.com/garrettladley/slackgate/internal/eventtype"
)

// OnRejectedFunc is called when a request fails signature verification.
type OnRejectedFunc func(ctx context.Context, r *http.Request)

// OnMalformedFunc is called when a verified body is not valid JSON.
type OnMalformedFunc func(ctx context.Context, err error)

// OnOutcomeFunc is called once per dispatched request with the chain's result.
type OnOutcomeFunc func(ctx context.Context, types eventtype.Discriminators, outcome Outcome)

// OnHandlerErrorFunc is called when a handler returns an error or panics.
type OnHandlerErrorFunc func(ctx context.Context, index int, err error)

// Hooks observe the dispatcher. Any field may be nil.
type Hooks struct {
	OnRejected     OnRejectedFunc
	OnMalformed    OnMalformedFunc
	OnOutcome      OnOutcomeFunc
	OnHandlerError OnHandlerErrorFunc
}

// hooks holds every registered Hooks value, called in registration order.
type hooks []Hooks

func (hs hooks) rejected(ctx context.Context, r *http.Request) {
	for _, h := range hs {
		if h.OnRejected != nil {
			h.OnRejected(ctx, r)
		}
	}
}

func (hs hooks) malformed(ctx context.Context, err error) {
	for _, h := range hs {
		if h.OnMalformed != nil {
			h.OnMalformed(ctx, err)
		}
	}
}

func (hs hooks) outcome(ctx context.Context, types eventtype.Discriminators, o Outcome) {
	for _, h := range hs {
		if h.OnOutcome != nil {
			h.OnOutcome(ctx, types, o)
		}
	}
}

func (hs hooks) handlerError(ctx context.Context, index int, err error) {
	for _, h := range hs {
		if h.OnHandlerError != nil {
			h.OnHandlerError(ctx, index, err)
		}
	}
}
