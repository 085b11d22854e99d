package xcontext

import "context"

type shutdownKey struct{}

// SetShutdownSignal records base, the server's base context, so handlers can
// tell a server shutdown apart from a client disconnect when their own
// context ends.
func SetShutdownSignal(ctx context.Context, base context.Context) context.Context {
	return context.WithValue(ctx, shutdownKey{}, base)
}

// IsShutdownInProgress reports whether the recorded base context has been
// cancelled.
func IsShutdownInProgress(ctx context.Context) bool {
	base, ok := ctx.Value(shutdownKey{}).(context.Context)
	return ok && base.Err() != nil
}
