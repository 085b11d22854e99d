package dispatch

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/garrettladley/slackgate/internal/eventtype"
	"github.com/garrettladley/slackgate/internal/signature"
	"github.com/garrettladley/slackgate/internal/xhttp"
)

const testSecret = "8f742231b10e8888abcd99yyyzzz85a5"

var testNow = time.Unix(1700000000, 0)

func testSignature() Option {
	return WithSignature(signature.NewParams(testSecret), signature.WithNow(func() time.Time { return testNow }))
}

func newDispatcher(t *testing.T, opts ...Option) *Dispatcher {
	t.Helper()

	d, err := New(append([]Option{testSignature()}, opts...)...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return d
}

func signedRequest(t *testing.T, path, body string) *http.Request {
	t.Helper()

	req := httptest.NewRequestWithContext(t.Context(), http.MethodPost, path, bytes.NewReader([]byte(body)))
	req.Header.Set(xhttp.ContentType, xhttp.MIMEApplicationJSON)
	req.Header.Set(signature.HeaderTimestamp, strconv.FormatInt(testNow.Unix(), 10))
	req.Header.Set(signature.HeaderSignature, signature.Sign(testSecret, signature.Version, testNow.Unix(), []byte(body)))
	return req
}

// newTestContext builds a scanned Context for body without going through the
// middleware.
func newTestContext(t *testing.T, body string) (*Context, *httptest.ResponseRecorder) {
	t.Helper()

	types, err := eventtype.Scan([]byte(body))
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}

	rec := httptest.NewRecorder()
	c := newContext(rec, signedRequest(t, DefaultPath, body), []byte(body), nil)
	c.types = types
	return c, rec
}

func outcomeOf(o Outcome) HandlerFunc {
	return func(*Context) (Outcome, error) { return o, nil }
}
