package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PollTicksTotal  = promauto.NewCounter(prometheus.CounterOpts{Namespace: "indora_customer", Name: "poll_ticks_total", Help: "Total ride polling ticks dispatched"})
	PollErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{Namespace: "indora_customer", Name: "poll_errors_total", Help: "Total failed polling ticks (swallowed and retried)"})
	StalePollsTotal = promauto.NewCounter(prometheus.CounterOpts{Namespace: "indora_customer", Name: "stale_polls_total", Help: "Total poll responses dropped for a ride id that is no longer active"})

	QuotesRequestedTotal = promauto.NewCounter(prometheus.CounterOpts{Namespace: "indora_customer", Name: "quotes_requested_total", Help: "Total quote requests sent to the ride backend"})
	GeocodeFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{Namespace: "indora_customer", Name: "geocode_failures_total", Help: "Total reverse/forward geocoding failures"})
	RouteFailuresTotal   = promauto.NewCounter(prometheus.CounterOpts{Namespace: "indora_customer", Name: "route_failures_total", Help: "Total routing lookups rendered as no-route"})

	PaymentsAuthorizedTotal = promauto.NewCounter(prometheus.CounterOpts{Namespace: "indora_customer", Name: "payments_authorized_total", Help: "Total payment authorizations verified"})
	PaymentsFailedTotal     = promauto.NewCounter(prometheus.CounterOpts{Namespace: "indora_customer", Name: "payments_failed_total", Help: "Total payment authorizations declined, cancelled or timed out"})

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "indora_customer", Name: "http_requests_total", Help: "Total control API requests handled"},
		[]string{"method", "path", "status"},
	)
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "indora_customer",
			Name:      "http_request_duration_seconds",
			Help:      "Control API request latency distribution",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
