package xhttp

import (
	"net"
	"net/http"
	"strings"
)

// GetRequestIP returns the client address, preferring the first hop of
// X-Forwarded-For over the connection's remote address.
func GetRequestIP(r *http.Request) string {
	if xff := r.Header.Get(XForwardedFor); xff != "" {
		client, _, _ := strings.Cut(xff, ",")
		return stripPort(strings.TrimSpace(client))
	}
	return stripPort(r.RemoteAddr)
}

func stripPort(addr string) string {
	if ip, _, err := net.SplitHostPort(addr); err == nil {
		return ip
	}
	return addr
}
