package xerrors

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/garrettladley/slackgate/internal/xhttp"
	go_json "github.com/goccy/go-json"
	"github.com/google/go-cmp/cmp"
)

func TestWriteError(t *testing.T) {
	t.Parallel()

	cause := errors.New("unexpected end of JSON input")

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   errorResponse
	}{
		{
			name:       "typed error keeps status and message",
			err:        BadRequest(WithMessage("malformed event payload"), WithCause(cause)),
			wantStatus: http.StatusBadRequest,
			wantBody:   errorResponse{Message: "malformed event payload"},
		},
		{
			name:       "default message from status text",
			err:        UnsupportedMediaType(),
			wantStatus: http.StatusUnsupportedMediaType,
			wantBody:   errorResponse{Message: "unsupported media type"},
		},
		{
			name:       "wrapped typed error",
			err:        fmt.Errorf("dispatch: %w", MethodNotAllowed()),
			wantStatus: http.StatusMethodNotAllowed,
			wantBody:   errorResponse{Message: "method not allowed"},
		},
		{
			name:       "plain error hides cause",
			err:        cause,
			wantStatus: http.StatusInternalServerError,
			wantBody:   errorResponse{Message: "internal server error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := httptest.NewRecorder()
			WriteError(t.Context(), rec, tt.err)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if got := rec.Header().Get(xhttp.ContentType); got != xhttp.MIMEApplicationJSON {
				t.Errorf("Content-Type = %q, want %q", got, xhttp.MIMEApplicationJSON)
			}

			var got errorResponse
			if err := go_json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
				t.Fatalf("failed to decode body: %v", err)
			}
			if diff := cmp.Diff(tt.wantBody, got); diff != "" {
				t.Errorf("body mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestErrorUnwrap(t *testing.T) {
	t.Parallel()

	cause := errors.New("boom")
	err := Internal(WithCause(cause))

	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}
	if got, want := err.Error(), "internal server error: boom"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}
