package xhttp

import (
	"net/http"
	"strings"
)

const (
	XForwardedFor    = "X-Forwarded-For"
	XContentTypeOpts = "X-Content-Type-Options"
	XFrameOpts       = "X-Frame-Options"
	XXSSProtection   = "X-Xss-Protection"
	ReferrerPolicy   = "Referrer-Policy"
	XRequestID       = "X-Request-ID"
)

const (
	ContentType  = "Content-Type"
	CacheControl = "Cache-Control"
	Pragma       = "Pragma"
	Expires      = "Expires"
	Location     = "Location"
	Allow        = "Allow"
	UserAgent    = "User-Agent"
)

const (
	MIMEApplicationJSON = "application/json"
	MIMETextPlain       = "text/plain"
)

func SetHeaderRequestID(w http.ResponseWriter, requestID string) {
	w.Header().Set(XRequestID, requestID)
}

func SetHeaderContentTypeApplicationJSON(w http.ResponseWriter) {
	w.Header().Set(ContentType, MIMEApplicationJSON)
}

func SetHeaderContentTypeTextPlain(w http.ResponseWriter) {
	w.Header().Set(ContentType, MIMETextPlain+"; charset=utf-8")
}

// SetHeaderNoCache marks the response as not cacheable by clients or proxies.
func SetHeaderNoCache(w http.ResponseWriter) {
	const noCache = "no-cache"
	h := w.Header()
	h.Set(CacheControl, noCache)
	h.Set(Pragma, noCache)
	h.Set(Expires, "-1")
}

// ClearHeaderNoCache undoes SetHeaderNoCache.
func ClearHeaderNoCache(w http.ResponseWriter) {
	h := w.Header()
	h.Del(CacheControl)
	h.Del(Pragma)
	h.Del(Expires)
}

func SetHeaderAllow(w http.ResponseWriter, methods []string) {
	w.Header().Set(Allow, strings.Join(methods, ", "))
}

func SetHeaderLocation(w http.ResponseWriter, location string) {
	w.Header().Set(Location, location)
}
