package handler

import (
	"errors"
	"net/http"

	"github.com/garrettladley/slackgate/internal/dispatch"
	"github.com/garrettladley/slackgate/internal/xerrors"
	"github.com/garrettladley/slackgate/internal/xhttp"
	"github.com/garrettladley/slackgate/internal/xslog"
)

type Events struct{}

func NewEvents() *Events {
	return &Events{}
}

type eventAck struct {
	EventID string `json:"event_id"`
	TeamID  string `json:"team_id"`
	Type    string `json:"type"`
	Route   string `json:"route"`
}

// HandleEvent handles POST /events/{type} requests. It only serves events the
// dispatcher rewrote here; direct hits have no verified dispatch context.
func (h *Events) HandleEvent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := xslog.FromContext(ctx)

	c, ok := dispatch.FromRequest(r)
	if !ok || !c.Verified() {
		xerrors.WriteError(ctx, w, xerrors.NotFound())
		return
	}

	cb, err := dispatch.CallbackEvent(c)
	if err != nil {
		if errors.Is(err, dispatch.ErrDispatchType) {
			xerrors.WriteError(ctx, w, xerrors.BadRequest(
				xerrors.WithMessage("only event callbacks are accepted"),
				xerrors.WithCause(err),
			))
			return
		}
		xerrors.WriteError(ctx, w, xerrors.BadRequest(
			xerrors.WithMessage("malformed event callback"),
			xerrors.WithCause(err),
		))
		return
	}

	logger.InfoContext(ctx, "event received", xslog.EventID(cb.EventID), xslog.EventType(c.EventType()))

	xhttp.WriteOK(w, eventAck{
		EventID: cb.EventID,
		TeamID:  cb.TeamID,
		Type:    c.EventType(),
		Route:   r.PathValue("type"),
	})
}
