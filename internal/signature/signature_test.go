package signature

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"
)

const testSecret = "8f742231b10e8888abcd99yyyzzz85a5"

var fixedNow = time.Unix(1531420618, 0)

func newRequest(t *testing.T, body []byte, sig, ts string) *http.Request {
	t.Helper()

	req := httptest.NewRequestWithContext(t.Context(), http.MethodPost, "/slack/events", bytes.NewReader(body))
	if sig != "" {
		req.Header.Set(HeaderSignature, sig)
	}
	if ts != "" {
		req.Header.Set(HeaderTimestamp, ts)
	}
	return req
}

func newValidator(t *testing.T, params Params) *Validator {
	t.Helper()

	v, err := NewValidator(params, WithNow(func() time.Time { return fixedNow }))
	if err != nil {
		t.Fatalf("NewValidator() error = %v", err)
	}
	return v
}

func TestSign(t *testing.T) {
	t.Parallel()

	// Example from Slack's request verification guide.
	body := []byte("token=xyzz0WbapA4vBCDEFasx0q6G&team_id=T1DC2JH3J&team_domain=testteamnow&channel_id=G8PSS9T3V&channel_name=foobar&user_id=U2CERLKJA&user_name=roadrunner&command=%2Fwebhook-collect&text=&response_url=https%3A%2F%2Fhooks.slack.com%2Fcommands%2FT1DC2JH3J%2F397700885554%2F96rGlfmibIGlgcZRskXaIFfN&trigger_id=398738663015.47445629121.803a0bc887a14d10d2c447fce8b6703c")
	want := "v0=a2114d57b48eac39b9ad189dd8316235a7b4a8d21a10bd27519666489c69b503"

	if got := Sign(testSecret, Version, 1531420618, body); got != want {
		t.Errorf("Sign() = %q, want %q", got, want)
	}
}

func TestVerify(t *testing.T) {
	t.Parallel()

	body := []byte(`{"type":"event_callback","event":{"type":"message"}}`)
	ts := fixedNow.Unix()
	valid := Sign(testSecret, Version, ts, body)

	tests := []struct {
		name   string
		params Params
		body   []byte
		sig    string
		ts     string
		want   bool
	}{
		{
			name:   "valid signature",
			params: NewParams(testSecret),
			body:   body,
			sig:    valid,
			ts:     strconv.FormatInt(ts, 10),
			want:   true,
		},
		{
			name:   "upper case digest",
			params: NewParams(testSecret),
			body:   body,
			sig:    "v0=" + strings.ToUpper(strings.TrimPrefix(valid, "v0=")),
			ts:     strconv.FormatInt(ts, 10),
			want:   true,
		},
		{
			name:   "body mutated",
			params: NewParams(testSecret),
			body:   []byte(`{"type":"event_callback","event":{"type":"messagf"}}`),
			sig:    valid,
			ts:     strconv.FormatInt(ts, 10),
			want:   false,
		},
		{
			name:   "timestamp mutated",
			params: NewParams(testSecret),
			body:   body,
			sig:    valid,
			ts:     strconv.FormatInt(ts+1, 10),
			want:   false,
		},
		{
			name:   "secret mutated",
			params: NewParams(testSecret[:len(testSecret)-1] + "4"),
			body:   body,
			sig:    valid,
			ts:     strconv.FormatInt(ts, 10),
			want:   false,
		},
		{
			name:   "missing signature",
			params: NewParams(testSecret),
			body:   body,
			ts:     strconv.FormatInt(ts, 10),
			want:   false,
		},
		{
			name:   "missing timestamp",
			params: NewParams(testSecret),
			body:   body,
			sig:    valid,
			want:   false,
		},
		{
			name:   "malformed timestamp",
			params: NewParams(testSecret),
			body:   body,
			sig:    valid,
			ts:     "12a",
			want:   false,
		},
		{
			name:   "timestamp with plus sign",
			params: NewParams(testSecret),
			body:   body,
			sig:    valid,
			ts:     "+" + strconv.FormatInt(ts, 10),
			want:   false,
		},
		{
			name:   "timestamp with minus sign",
			params: Params{Version: Version, Secret: testSecret, Drift: DisableDrift},
			body:   body,
			sig:    Sign(testSecret, Version, -ts, body),
			ts:     strconv.FormatInt(-ts, 10),
			want:   false,
		},
		{
			name:   "timestamp overflowing int64",
			params: NewParams(testSecret),
			body:   body,
			sig:    valid,
			ts:     "99999999999999999999",
			want:   false,
		},
		{
			name:   "signature without version prefix",
			params: NewParams(testSecret),
			body:   body,
			sig:    strings.TrimPrefix(valid, "v0="),
			ts:     strconv.FormatInt(ts, 10),
			want:   false,
		},
		{
			name:   "blank secret from provider",
			params: Params{Version: Version, SecretFunc: func(*http.Request) (string, error) { return "  ", nil }, Drift: DefaultDrift},
			body:   body,
			sig:    valid,
			ts:     strconv.FormatInt(ts, 10),
			want:   false,
		},
		{
			name:   "provider error",
			params: Params{Version: Version, SecretFunc: func(*http.Request) (string, error) { return "", errors.New("boom") }, Drift: DefaultDrift},
			body:   body,
			sig:    valid,
			ts:     strconv.FormatInt(ts, 10),
			want:   false,
		},
		{
			name:   "secret from provider",
			params: Params{Version: Version, SecretFunc: func(*http.Request) (string, error) { return testSecret, nil }, Drift: DefaultDrift},
			body:   body,
			sig:    valid,
			ts:     strconv.FormatInt(ts, 10),
			want:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			v := newValidator(t, tt.params)
			req := newRequest(t, tt.body, tt.sig, tt.ts)

			if got := v.Verify(req, bytes.NewReader(tt.body)); got != tt.want {
				t.Errorf("Verify() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestVerifyBitFlips(t *testing.T) {
	t.Parallel()

	body := []byte(`{"type":"url_verification","challenge":"3eZbrw1aBm2rZgRNFdxV2595E9CY3gmdALWMmHkvFXO7tYXAYM8P"}`)
	ts := fixedNow.Unix()
	sig := Sign(testSecret, Version, ts, body)
	v := newValidator(t, NewParams(testSecret))

	for i := range len(body) * 8 {
		mutated := bytes.Clone(body)
		mutated[i/8] ^= 1 << (i % 8)

		req := newRequest(t, mutated, sig, strconv.FormatInt(ts, 10))
		if v.Verify(req, bytes.NewReader(mutated)) {
			t.Fatalf("Verify() accepted body with bit %d flipped", i)
		}
	}
}

func TestVerifyDrift(t *testing.T) {
	t.Parallel()

	body := []byte(`{"type":"event_callback"}`)

	tests := []struct {
		name   string
		drift  time.Duration
		offset time.Duration
		want   bool
	}{
		{name: "at the edge in the past", drift: DefaultDrift, offset: -DefaultDrift, want: true},
		{name: "at the edge in the future", drift: DefaultDrift, offset: DefaultDrift, want: true},
		{name: "stale", drift: DefaultDrift, offset: -DefaultDrift - time.Second, want: false},
		{name: "too far in the future", drift: DefaultDrift, offset: DefaultDrift + time.Second, want: false},
		{name: "negative drift uses absolute value", drift: -time.Minute, offset: -30 * time.Second, want: true},
		{name: "disabled accepts ancient timestamps", drift: DisableDrift, offset: -24 * 365 * time.Hour, want: true},
		{name: "disabled accepts future timestamps", drift: DisableDrift, offset: 24 * 365 * time.Hour, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			params := NewParams(testSecret)
			params.Drift = tt.drift
			v := newValidator(t, params)

			ts := fixedNow.Add(tt.offset).Unix()
			req := newRequest(t, body, Sign(testSecret, Version, ts, body), strconv.FormatInt(ts, 10))

			if got := v.Verify(req, bytes.NewReader(body)); got != tt.want {
				t.Errorf("Verify() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestVerifyRewindsBody(t *testing.T) {
	t.Parallel()

	body := []byte(`{"type":"event_callback"}`)
	ts := fixedNow.Unix()
	v := newValidator(t, NewParams(testSecret))
	req := newRequest(t, body, Sign(testSecret, Version, ts, body), strconv.FormatInt(ts, 10))

	r := bytes.NewReader(body)
	if _, err := r.Seek(int64(len(body)), 0); err != nil {
		t.Fatalf("Seek() error = %v", err)
	}

	if !v.Verify(req, r) {
		t.Error("Verify() = false, want true for a body read past the start")
	}
}

func TestVerifyCancelled(t *testing.T) {
	t.Parallel()

	body := []byte(`{"type":"event_callback"}`)
	ts := fixedNow.Unix()
	v := newValidator(t, NewParams(testSecret))

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	req := newRequest(t, body, Sign(testSecret, Version, ts, body), strconv.FormatInt(ts, 10)).WithContext(ctx)
	if v.Verify(req, bytes.NewReader(body)) {
		t.Error("Verify() = true, want false for a cancelled request")
	}
}

func TestNewValidatorRequiresSecret(t *testing.T) {
	t.Parallel()

	if _, err := NewValidator(Params{}); !errors.Is(err, ErrNoSecret) {
		t.Errorf("NewValidator() error = %v, want %v", err, ErrNoSecret)
	}
}
