package middleware

import (
	"net/http"

	"github.com/garrettladley/slackgate/internal/xhttp"
)

const contentSecurityPolicy = "Content-Security-Policy"

// SecurityHeaders sets browser hardening headers. Nothing served here is meant
// to be rendered, so the content security policy denies everything.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set(xhttp.XContentTypeOpts, "nosniff")
		h.Set(xhttp.XFrameOpts, "DENY")
		h.Set(xhttp.XXSSProtection, "1; mode=block")
		h.Set(xhttp.ReferrerPolicy, "strict-origin-when-cross-origin")
		h.Set(contentSecurityPolicy, "default-src 'none'; frame-ancestors 'none'")
		next.ServeHTTP(w, r)
	})
}
