package server

import (
	"context"
	"time"
)

// ShutdownCoordinator cancels the base context of every request before the
// HTTP server stops accepting work, so in-flight dispatches can tell a
// shutdown apart from a client disconnect.
type ShutdownCoordinator struct {
	baseCtx     context.Context
	cancel      context.CancelFunc
	gracePeriod time.Duration
}

func NewShutdownCoordinator(gracePeriod time.Duration) *ShutdownCoordinator {
	ctx, cancel := context.WithCancel(context.Background())
	return &ShutdownCoordinator{
		baseCtx:     ctx,
		cancel:      cancel,
		gracePeriod: gracePeriod,
	}
}

// BaseContext is the parent of every request context.
func (sc *ShutdownCoordinator) BaseContext() context.Context {
	return sc.baseCtx
}

func (sc *ShutdownCoordinator) GracePeriod() time.Duration {
	return sc.gracePeriod
}

// InitiateShutdown cancels the base context and blocks for the grace period
// or until ctx is done.
func (sc *ShutdownCoordinator) InitiateShutdown(ctx context.Context) {
	sc.cancel()

	t := time.NewTimer(sc.gracePeriod)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}
