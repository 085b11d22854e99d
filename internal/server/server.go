// Package server assembles the HTTP handler that fronts the Slack callback.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"net/http"
	"slices"

	"github.com/garrettladley/slackgate/internal/config"
	"github.com/garrettladley/slackgate/internal/dispatch"
	"github.com/garrettladley/slackgate/internal/metrics"
	"github.com/garrettladley/slackgate/internal/secrets"
	"github.com/garrettladley/slackgate/internal/server/handler"
	"github.com/garrettladley/slackgate/internal/signature"
	"github.com/garrettladley/slackgate/internal/xhttp/middleware"
)

type options struct {
	shutdown context.Context
}

type Option func(*options)

// WithShutdownCoordinator lets request handlers see when sc has begun
// shutting down.
func WithShutdownCoordinator(sc *ShutdownCoordinator) Option {
	return func(o *options) { o.shutdown = sc.BaseContext() }
}

// NewHandler builds the full middleware stack. A nil store restricts
// verification to the static signing secret.
func NewHandler(cfg config.Config, store secrets.Store, logger *slog.Logger, opts ...Option) (http.Handler, error) {
	o := options{shutdown: context.Background()}
	for _, opt := range opts {
		opt(&o)
	}

	provider := secrets.NewProvider(store, cfg.Slack.TenantParam, cfg.Slack.SigningSecret)

	params := signature.Params{
		Version:    signature.Version,
		SecretFunc: provider.Secret,
		Drift:      cfg.Slack.Drift.Duration(),
	}

	handlers, err := eventHandlers(cfg.Slack)
	if err != nil {
		return nil, err
	}

	dispatchOpts := []dispatch.Option{
		dispatch.WithPath(cfg.Slack.CallbackPath),
		dispatch.WithVerbs(cfg.Slack.AllowedVerbs...),
		dispatch.WithContentTypes(cfg.Slack.AllowedContentTypes...),
		dispatch.WithSignature(params),
		dispatch.WithHandlers(handlers...),
		dispatch.WithRedirectStatus(cfg.Slack.RedirectStatus),
		dispatch.WithMaxBodyBytes(cfg.Slack.MaxBodyBytes),
		dispatch.WithHooks(metrics.Hooks()),
	}
	if cfg.Slack.PassThrough {
		dispatchOpts = append(dispatchOpts, dispatch.WithPassThrough())
	}

	dispatcher, err := dispatch.New(dispatchOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to build dispatcher: %w", err)
	}

	events := handler.NewEvents()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /events/{type}", events.HandleEvent)
	mux.HandleFunc("GET /health", handler.HandleHealth)
	mux.Handle("GET /metrics", metrics.Handler())

	return middleware.Chain(dispatcher.Middleware(mux),
		middleware.RequestID(),
		middleware.Logger(logger),
		middleware.Recovery,
		middleware.Logging,
		middleware.ShutdownContext(o.shutdown),
		middleware.SecurityHeaders,
	), nil
}

// eventHandlers orders the handshake first, then redirects, then rewrites.
// Map keys are sorted so the chain is the same on every start.
func eventHandlers(cfg config.Slack) ([]dispatch.Handler, error) {
	handlers := []dispatch.Handler{dispatch.URLVerification()}

	for _, eventType := range slices.Sorted(maps.Keys(cfg.EventRedirects)) {
		h, err := dispatch.RedirectEventType(eventType, cfg.EventRedirects[eventType])
		if err != nil {
			return nil, fmt.Errorf("redirect for %q: %w", eventType, err)
		}
		handlers = append(handlers, h)
	}

	for _, eventType := range slices.Sorted(maps.Keys(cfg.EventRewrites)) {
		path := cfg.EventRewrites[eventType]
		if _, err := dispatch.NewRewrite(path); err != nil {
			return nil, fmt.Errorf("rewrite for %q: %w", eventType, err)
		}
		handlers = append(handlers, dispatch.RewriteEventType(eventType, path))
	}

	return handlers, nil
}
