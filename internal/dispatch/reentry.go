package dispatch

import (
	"fmt"
	"io"
	"net/http"

	"github.com/garrettladley/slackgate/internal/xhttp"
)

// Reenter serves r through next as if it had been sent to path. Headers the
// dispatcher set are dropped and body is rewound first. The original path is
// restored when next returns or panics.
func Reenter(w http.ResponseWriter, r *http.Request, next http.Handler, path string, body io.Seeker) error {
	xhttp.ClearHeaderNoCache(w)

	if _, err := body.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("failed to rewind body: %w", err)
	}

	origPath, origRawPath, origPattern := r.URL.Path, r.URL.RawPath, r.Pattern
	defer func() {
		r.URL.Path, r.URL.RawPath, r.Pattern = origPath, origRawPath, origPattern
	}()

	r.URL.Path = path
	r.URL.RawPath = ""
	r.Pattern = ""

	next.ServeHTTP(w, r)
	return nil
}
