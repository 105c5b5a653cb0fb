// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "bloodlink"

var (
	// RequestTransitions counts donation request status changes by target status.
	RequestTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "donation_request_transitions_total",
		Help:      "Donation request status changes, by new status.",
	}, []string{"to"})

	// SearchStages counts which discovery stage produced the results.
	SearchStages = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "donor_search_total",
		Help:      "Donor searches, by the stage that answered.",
	}, []string{"stage"})

	// FundingsConfirmed counts ledger entries written, by gateway.
	FundingsConfirmed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "fundings_confirmed_total",
		Help:      "Completed fundings recorded, by payment provider.",
	}, []string{"provider"})

	// LoginFailures counts rejected logins by reason.
	LoginFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_failures_total",
		Help:      "Rejected login attempts, by reason.",
	}, []string{"reason"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency, by route pattern and status code.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "code"})
)

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Instrument records request latency keyed by the matched chi route pattern
// so path parameters do not explode label cardinality.
func Instrument(routePattern func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			route := routePattern(r)
			if route == "" {
				route = "unmatched"
			}
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			httpDuration.WithLabelValues(r.Method, route, strconv.Itoa(status)).
				Observe(time.Since(start).Seconds())
		})
	}
}
