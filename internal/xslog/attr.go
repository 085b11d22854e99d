package xslog

import (
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/garrettladley/slackgate/internal/version"
	"github.com/garrettladley/slackgate/internal/xhttp"
)

const (
	keyError = "error"
)

func Error(err error) slog.Attr {
	return slog.String(keyError, err.Error())
}

func RequestID(requestID string) slog.Attr {
	const requestIDKey = "request_id"
	return slog.String(requestIDKey, requestID)
}

func Stack() slog.Attr {
	const stackKey = "stack"
	return slog.String(stackKey, string(debug.Stack()))
}

func HTTPStatus(status int) slog.Attr {
	const statusKey = "status"
	return slog.Int(statusKey, status)
}

func Duration(duration time.Duration) slog.Attr {
	const durationKey = "duration"
	return slog.Duration(durationKey, duration)
}

func RequestMethod(r *http.Request) slog.Attr {
	const methodKey = "method"
	return slog.String(methodKey, r.Method)
}

func RequestPath(r *http.Request) slog.Attr {
	const pathKey = "path"
	return slog.String(pathKey, r.URL.Path)
}

func IP(ip string) slog.Attr {
	const ipKey = "ip"
	return slog.String(ipKey, ip)
}

func RequestIP(r *http.Request) slog.Attr {
	return IP(xhttp.GetRequestIP(r))
}

func Version() slog.Attr {
	const versionKey = "version"
	return slog.String(versionKey, version.Get())
}

func DispatchType(t string) slog.Attr {
	const dispatchTypeKey = "dispatch_type"
	return slog.String(dispatchTypeKey, t)
}

func EventType(t string) slog.Attr {
	const eventTypeKey = "event_type"
	return slog.String(eventTypeKey, t)
}

func EventID(id string) slog.Attr {
	const eventIDKey = "event_id"
	return slog.String(eventIDKey, id)
}

func Outcome(kind string) slog.Attr {
	const outcomeKey = "outcome"
	return slog.String(outcomeKey, kind)
}

// Handler identifies a handler by its position in the chain.
func Handler(index int) slog.Attr {
	const handlerKey = "handler"
	return slog.Int(handlerKey, index)
}

func Location(location string) slog.Attr {
	const locationKey = "location"
	return slog.String(locationKey, location)
}

func RewritePath(path string) slog.Attr {
	const rewritePathKey = "rewrite_path"
	return slog.String(rewritePathKey, path)
}

func Tenant(tenant string) slog.Attr {
	const tenantKey = "tenant"
	return slog.String(tenantKey, tenant)
}
