package metrics

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/garrettladley/slackgate/internal/dispatch"
	"github.com/garrettladley/slackgate/internal/eventtype"
)

const (
	resultVerified = "verified"
	resultRejected = "rejected"
)

var (
	// Verification metrics
	VerificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "slackgate_verifications_total",
			Help: "Total number of signature checks by result",
		},
		[]string{"result"},
	)

	MalformedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "slackgate_malformed_payloads_total",
			Help: "Total number of verified requests with unparseable bodies",
		},
	)

	// Dispatch metrics
	OutcomesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "slackgate_outcomes_total",
			Help: "Total number of dispatched requests by outcome and dispatch type",
		},
		[]string{"outcome", "dispatch_type"},
	)

	HandlerErrorsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "slackgate_handler_errors_total",
			Help: "Total number of handler errors and panics",
		},
	)
)

// Hooks feeds the dispatcher's lifecycle into the package counters.
func Hooks() dispatch.Hooks {
	return dispatch.Hooks{
		OnRejected: func(context.Context, *http.Request) {
			VerificationsTotal.WithLabelValues(resultRejected).Inc()
		},
		OnMalformed: func(context.Context, error) {
			VerificationsTotal.WithLabelValues(resultVerified).Inc()
			MalformedTotal.Inc()
		},
		OnOutcome: func(_ context.Context, types eventtype.Discriminators, o dispatch.Outcome) {
			VerificationsTotal.WithLabelValues(resultVerified).Inc()
			OutcomesTotal.WithLabelValues(o.Kind().String(), dispatchTypeLabel(types)).Inc()
		},
		OnHandlerError: func(context.Context, int, error) {
			HandlerErrorsTotal.Inc()
		},
	}
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// dispatchTypeLabel bounds label cardinality to the dispatch types Slack
// documents.
func dispatchTypeLabel(types eventtype.Discriminators) string {
	switch types.DispatchType {
	case "url_verification", "event_callback", "app_rate_limited":
		return types.DispatchType
	case "":
		return "none"
	default:
		return "other"
	}
}
