package secrets

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/garrettladley/slackgate/internal/xslog"
)

const lookupTimeout = 2 * time.Second

// Provider picks the signing secret for a request from the tenant named in a
// query parameter. Requests without a tenant use the fallback secret.
type Provider struct {
	store    Store
	param    string
	fallback string
	group    singleflight.Group
}

func NewProvider(store Store, param, fallback string) *Provider {
	return &Provider{store: store, param: param, fallback: fallback}
}

// Secret has the shape of signature.SecretFunc.
func (p *Provider) Secret(r *http.Request) (string, error) {
	tenant := r.URL.Query().Get(p.param)
	if tenant == "" || p.store == nil {
		if p.fallback == "" {
			return "", ErrNotFound
		}
		return p.fallback, nil
	}

	ctx := r.Context()
	v, err, _ := p.group.Do(tenant, func() (any, error) {
		// concurrent callers share this lookup, so it must outlive any one of them
		lookupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), lookupTimeout)
		defer cancel()
		return p.store.Lookup(lookupCtx, tenant)
	})
	if err != nil {
		xslog.FromContext(ctx).DebugContext(ctx, "signing secret lookup failed", xslog.Tenant(tenant), xslog.Error(err))
		return "", err
	}
	return v.(string), nil
}
