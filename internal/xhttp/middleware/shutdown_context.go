package middleware

import (
	"context"
	"net/http"

	"github.com/garrettladley/slackgate/internal/xcontext"
)

// ShutdownContext attaches base, the context the server cancels on shutdown,
// to every request. See xcontext.IsShutdownInProgress.
func ShutdownContext(base context.Context) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(xcontext.SetShutdownSignal(r.Context(), base)))
		})
	}
}
