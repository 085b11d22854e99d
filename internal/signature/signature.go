package signature

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/garrettladley/slackgate/internal/xslog"
)

const (
	// Version is the only signing scheme version Slack currently uses.
	Version = "v0"

	HeaderSignature = "X-Slack-Signature"
	HeaderTimestamp = "X-Slack-Request-Timestamp"
)

const (
	DefaultDrift = 5 * time.Minute

	// DisableDrift turns the replay window check off.
	DisableDrift time.Duration = -1
)

var ErrNoSecret = errors.New("no signing secret configured")

// SecretFunc resolves the signing secret for a single request.
type SecretFunc func(r *http.Request) (string, error)

// Params configures request verification. Params are shared by every request
// and must not be mutated once a Validator has been built from them.
type Params struct {
	Version    string
	Secret     string
	SecretFunc SecretFunc
	Drift      time.Duration
}

func NewParams(secret string) Params {
	return Params{
		Version: Version,
		Secret:  secret,
		Drift:   DefaultDrift,
	}
}

func (p Params) secret(r *http.Request) (string, error) {
	if p.Secret != "" {
		return p.Secret, nil
	}
	if p.SecretFunc == nil {
		return "", ErrNoSecret
	}
	return p.SecretFunc(r)
}

type Validator struct {
	params Params
	now    func() time.Time
}

type Option func(*Validator)

// WithNow overrides the clock used for the replay window check.
func WithNow(now func() time.Time) Option {
	return func(v *Validator) { v.now = now }
}

func NewValidator(params Params, opts ...Option) (*Validator, error) {
	if params.Secret == "" && params.SecretFunc == nil {
		return nil, ErrNoSecret
	}
	if params.Version == "" {
		params.Version = Version
	}
	v := &Validator{params: params, now: time.Now}
	for _, opt := range opts {
		opt(v)
	}
	return v, nil
}

// Verify reports whether r carries a valid Slack signature for body.
// It reads body from offset zero. Every failure, including malformed headers,
// a missing secret or a cancelled request, resolves to false.
func (v *Validator) Verify(r *http.Request, body io.ReadSeeker) bool {
	ctx := r.Context()
	logger := xslog.FromContext(ctx)

	if ctx.Err() != nil {
		return false
	}

	secret, err := v.params.secret(r)
	if err != nil {
		logger.DebugContext(ctx, "signing secret unavailable", xslog.Error(err))
		return false
	}
	if strings.TrimSpace(secret) == "" {
		return false
	}

	sig := r.Header.Get(HeaderSignature)
	if sig == "" {
		return false
	}

	ts, ok := parseTimestamp(r.Header.Get(HeaderTimestamp))
	if !ok {
		return false
	}

	if !v.withinDrift(ts) {
		return false
	}

	raw, err := readAll(ctx, body)
	if err != nil {
		logger.DebugContext(ctx, "failed to read body for verification", xslog.Error(err))
		return false
	}

	expected := Sign(secret, v.params.Version, ts, raw)
	return hmac.Equal([]byte(strings.ToLower(sig)), []byte(expected))
}

func (v *Validator) withinDrift(ts int64) bool {
	if v.params.Drift == DisableDrift {
		return true
	}
	drift := v.params.Drift
	if drift < 0 {
		drift = -drift
	}
	window := int64(drift / time.Second)
	now := v.now().Unix()
	return ts >= now-window && ts <= now+window
}

// parseTimestamp accepts unsigned base-10 digits only; strconv alone would
// also take a leading sign.
func parseTimestamp(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, false
		}
	}
	ts, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return ts, true
}

// Sign returns the signature header value for body:
// version=hex(HMAC-SHA256(secret, "version:timestamp:body")).
func Sign(secret, version string, timestamp int64, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(version))
	mac.Write([]byte{':'})
	mac.Write([]byte(strconv.FormatInt(timestamp, 10)))
	mac.Write([]byte{':'})
	mac.Write(body)
	return version + "=" + hex.EncodeToString(mac.Sum(nil))
}

func readAll(ctx context.Context, body io.ReadSeeker) ([]byte, error) {
	if _, err := body.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	raw, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return raw, nil
}
