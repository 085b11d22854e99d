package middleware

import (
	"net/http"

	"github.com/garrettladley/slackgate/internal/xcontext"
	"github.com/garrettladley/slackgate/internal/xhttp"
	"github.com/google/uuid"
)

type RequestIDMiddleware struct {
	IDFunc func(*http.Request) string
}

func defaultRequestID(_ *http.Request) string {
	return uuid.New().String()
}

type RequestIDOption func(*RequestIDMiddleware)

// WithIDFunc overrides how request ids are generated.
func WithIDFunc(fn func(*http.Request) string) RequestIDOption {
	return func(m *RequestIDMiddleware) { m.IDFunc = fn }
}

func RequestID(opts ...RequestIDOption) func(http.Handler) http.Handler {
	middleware := &RequestIDMiddleware{IDFunc: defaultRequestID}

	for _, opt := range opts {
		opt(middleware)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := middleware.IDFunc(r)
			ctx := xcontext.SetRequestID(r.Context(), id)
			xhttp.SetHeaderRequestID(w, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
