package dispatch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"slices"
	"strings"

	"github.com/garrettladley/slackgate/internal/eventtype"
	"github.com/garrettladley/slackgate/internal/signature"
	"github.com/garrettladley/slackgate/internal/xcontext"
	"github.com/garrettladley/slackgate/internal/xerrors"
	"github.com/garrettladley/slackgate/internal/xhttp"
	"github.com/garrettladley/slackgate/internal/xslog"
)

const (
	DefaultPath           = "/slack/events"
	DefaultRedirectStatus = http.StatusFound
	DefaultMaxBodyBytes   = 1 << 20
)

var (
	ErrNoValidator = errors.New("dispatcher requires a signing secret or secret provider")
	ErrInvalidPath = errors.New("callback path must start with '/'")
)

// Dispatcher is HTTP middleware that authenticates Slack requests sent to the
// callback path and routes them through a handler chain. Requests for any
// other path go straight to the next handler.
type Dispatcher struct {
	path           string
	verbs          []string
	contentTypes   []string
	params         *signature.Params
	validatorOpts  []signature.Option
	validator      *signature.Validator
	chain          *Chain
	fallback       http.Handler
	passThrough    bool
	redirectStatus int
	maxBodyBytes   int64
	hooks          hooks
}

type Option func(*Dispatcher)

func WithPath(path string) Option {
	return func(d *Dispatcher) { d.path = path }
}

// WithVerbs replaces the allowed HTTP methods. The default is POST only.
func WithVerbs(verbs ...string) Option {
	return func(d *Dispatcher) { d.verbs = verbs }
}

// WithContentTypes replaces the allowed media types. The default is
// application/json.
func WithContentTypes(types ...string) Option {
	return func(d *Dispatcher) { d.contentTypes = types }
}

// WithSignature verifies requests with params.
func WithSignature(params signature.Params, opts ...signature.Option) Option {
	return func(d *Dispatcher) {
		d.params = &params
		d.validatorOpts = opts
	}
}

// WithValidator verifies requests with an existing validator.
func WithValidator(v *signature.Validator) Option {
	return func(d *Dispatcher) { d.validator = v }
}

// WithHandlers appends handlers to the chain, keeping their order.
func WithHandlers(handlers ...Handler) Option {
	return func(d *Dispatcher) { d.chain.handlers = append(d.chain.handlers, handlers...) }
}

// WithFallback serves requests no handler claimed.
func WithFallback(h http.Handler) Option {
	return func(d *Dispatcher) { d.fallback = h }
}

// WithPassThrough sends requests no handler claimed to the next handler
// instead of answering 421.
func WithPassThrough() Option {
	return func(d *Dispatcher) { d.passThrough = true }
}

func WithRedirectStatus(status int) Option {
	return func(d *Dispatcher) { d.redirectStatus = status }
}

func WithMaxBodyBytes(n int64) Option {
	return func(d *Dispatcher) { d.maxBodyBytes = n }
}

// WithHooks registers observers. Multiple hooks are called in order.
func WithHooks(h Hooks) Option {
	return func(d *Dispatcher) { d.hooks = append(d.hooks, h) }
}

func New(opts ...Option) (*Dispatcher, error) {
	d := &Dispatcher{
		path:           DefaultPath,
		verbs:          []string{http.MethodPost},
		contentTypes:   []string{xhttp.MIMEApplicationJSON},
		chain:          NewChain(),
		redirectStatus: DefaultRedirectStatus,
		maxBodyBytes:   DefaultMaxBodyBytes,
	}
	for _, opt := range opts {
		opt(d)
	}

	if !strings.HasPrefix(d.path, "/") {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPath, d.path)
	}
	if !isRedirectStatus(d.redirectStatus) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidRedirectStatus, d.redirectStatus)
	}
	if d.maxBodyBytes <= 0 {
		d.maxBodyBytes = DefaultMaxBodyBytes
	}
	d.verbs = normalize(d.verbs, strings.ToUpper)
	d.contentTypes = normalize(d.contentTypes, strings.ToLower)

	if d.validator == nil {
		if d.params == nil {
			return nil, ErrNoValidator
		}
		v, err := signature.NewValidator(*d.params, d.validatorOpts...)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrNoValidator, err)
		}
		d.validator = v
	}

	d.chain.hooks = d.hooks
	return d, nil
}

func (d *Dispatcher) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.EqualFold(r.URL.Path, d.path) {
			next.ServeHTTP(w, r)
			return
		}
		d.serve(w, r, next)
	})
}

func (d *Dispatcher) serve(w http.ResponseWriter, r *http.Request, next http.Handler) {
	ctx := r.Context()
	logger := xslog.FromContext(ctx)

	xhttp.SetHeaderNoCache(w)

	if !slices.Contains(d.verbs, r.Method) {
		xhttp.SetHeaderAllow(w, d.verbs)
		xerrors.WriteError(ctx, w, xerrors.MethodNotAllowed())
		return
	}

	if !d.allowedContentType(r.Header.Get(xhttp.ContentType)) {
		xerrors.WriteError(ctx, w, xerrors.UnsupportedMediaType())
		return
	}

	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, d.maxBodyBytes))
	if err != nil {
		if ctx.Err() != nil {
			abandon(ctx)
			return
		}
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			xerrors.WriteError(ctx, w, xerrors.RequestTooLarge(xerrors.WithCause(err)))
			return
		}
		xerrors.WriteError(ctx, w, xerrors.BadRequest(xerrors.WithMessage("failed to read body"), xerrors.WithCause(err)))
		return
	}

	tw := &trackingWriter{ResponseWriter: w}
	c := newContext(tw, r, raw, d.validator)

	if !c.Verified() {
		if ctx.Err() != nil {
			abandon(ctx)
			return
		}
		logger.InfoContext(ctx, "rejected unverified request", xslog.RequestIP(r))
		d.hooks.rejected(ctx, r)
		xhttp.Status(w, http.StatusNotAcceptable)
		return
	}

	types, err := eventtype.Scan(raw)
	if err != nil {
		d.hooks.malformed(ctx, err)
		xerrors.WriteError(ctx, w, xerrors.BadRequest(
			xerrors.WithMessage("malformed event payload"),
			xerrors.WithCause(err),
		))
		return
	}
	c.types = types

	c.r = c.r.WithContext(xslog.WithAttrs(c.r.Context(),
		xslog.DispatchType(types.DispatchType),
		xslog.EventType(types.EventType),
	))
	logger = xslog.FromContext(c.Context())

	outcome := d.chain.Dispatch(c)
	if ctx.Err() != nil {
		abandon(ctx)
		return
	}
	if outcome.IsNone() && tw.started() {
		// a handler wrote a response but declined; keep what it wrote
		logger.WarnContext(ctx, "handler wrote a response without claiming the request")
		outcome = EndResponse()
	}

	logger.DebugContext(ctx, "dispatched event", xslog.Outcome(outcome.Kind().String()))
	d.hooks.outcome(ctx, types, outcome)
	d.apply(tw, c, next, outcome)
}

func (d *Dispatcher) apply(w http.ResponseWriter, c *Context, next http.Handler, outcome Outcome) {
	ctx := c.Context()
	logger := xslog.FromContext(ctx)

	switch outcome.Kind() {
	case KindRedirect:
		status := outcome.Status()
		if status == 0 {
			status = d.redirectStatus
		}
		logger.DebugContext(ctx, "redirecting event", xslog.Location(outcome.Location()), xslog.HTTPStatus(status))
		xhttp.SetHeaderLocation(w, outcome.Location())
		w.WriteHeader(status)

	case KindRewrite:
		logger.DebugContext(ctx, "rewriting event", xslog.RewritePath(outcome.Path()))
		if err := Reenter(w, c.r, next, outcome.Path(), c.body); err != nil {
			xerrors.WriteError(ctx, w, err)
		}

	case KindEndResponse:
		// the handler owns the response

	default:
		switch {
		case d.fallback != nil:
			c.rewind()
			d.fallback.ServeHTTP(w, c.r)
		case d.passThrough:
			xhttp.ClearHeaderNoCache(w)
			c.rewind()
			next.ServeHTTP(w, c.r)
		default:
			logger.InfoContext(ctx, "no handler claimed event")
			xhttp.Status(w, http.StatusMisdirectedRequest)
		}
	}
}

// abandon logs why a request ended before a response could be written.
func abandon(ctx context.Context) {
	logger := xslog.FromContext(ctx)
	if xcontext.IsShutdownInProgress(ctx) {
		logger.InfoContext(ctx, "abandoning request during server shutdown", xslog.Error(context.Cause(ctx)))
		return
	}
	logger.DebugContext(ctx, "client went away before dispatch completed", xslog.Error(context.Cause(ctx)))
}

func (d *Dispatcher) allowedContentType(header string) bool {
	mediaType, _, err := mime.ParseMediaType(header)
	if err != nil {
		return false
	}
	return slices.Contains(d.contentTypes, mediaType)
}

func normalize(values []string, fold func(string) string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, fold(v))
		}
	}
	return out
}

// trackingWriter records whether the response has started.
type trackingWriter struct {
	http.ResponseWriter
	wroteHeader bool
}

func (tw *trackingWriter) WriteHeader(code int) {
	tw.wroteHeader = true
	tw.ResponseWriter.WriteHeader(code)
}

func (tw *trackingWriter) Write(b []byte) (int, error) {
	tw.wroteHeader = true
	return tw.ResponseWriter.Write(b)
}

// Flush counts as starting the response. Writers that cannot flush are a
// no-op; http.ResponseController reaches them through Unwrap.
func (tw *trackingWriter) Flush() {
	tw.wroteHeader = true
	_ = http.NewResponseController(tw.ResponseWriter).Flush()
}

func (tw *trackingWriter) Unwrap() http.ResponseWriter { return tw.ResponseWriter }

func (tw *trackingWriter) started() bool { return tw.wroteHeader }
