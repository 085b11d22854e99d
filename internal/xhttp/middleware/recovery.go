package middleware

import (
	"net/http"

	"github.com/garrettladley/slackgate/internal/xhttp"
	"github.com/garrettladley/slackgate/internal/xslog"
)

func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				if err == http.ErrAbortHandler { //nolint:errorlint // sentinel panic value
					panic(err)
				}
				xslog.FromContext(r.Context()).ErrorContext(
					r.Context(),
					"panic recovered",
					xslog.RequestGroup(r),
					xslog.ErrorGroupWithStack(err),
				)
				xhttp.Error(w, http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
