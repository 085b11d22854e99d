package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/garrettladley/slackgate/internal/xcontext"
	"github.com/garrettladley/slackgate/internal/xslog"
)

// Logger injects base, tagged with the request id and client IP, into the
// request context. Must run AFTER RequestID.
func Logger(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := base.With(xslog.RequestIP(r))
			if id, ok := xcontext.GetRequestID(r.Context()); ok {
				logger = logger.With(xslog.RequestID(id))
			}
			ctx := xslog.WithLogger(r.Context(), logger)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

type responseWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (rw *responseWriter) WriteHeader(code int) {
	if !rw.wroteHeader {
		rw.status = code
		rw.wroteHeader = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	rw.wroteHeader = true
	return rw.ResponseWriter.Write(b)
}

func (rw *responseWriter) Flush() {
	rw.wroteHeader = true
	_ = http.NewResponseController(rw.ResponseWriter).Flush()
}

func (rw *responseWriter) Unwrap() http.ResponseWriter { return rw.ResponseWriter }

func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapped := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		xslog.FromContext(r.Context()).InfoContext(
			r.Context(),
			"http request",
			xslog.RequestGroup(r),
			xslog.ResponseGroup(wrapped.status, time.Since(start)),
		)
	})
}
