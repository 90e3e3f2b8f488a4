// Package metrics exposes list fetch and delete outcomes to prometheus.
package metrics

import (
	"net/http"

	"dashboard/internal/liststate"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
	OutcomeStale = "stale"
)

var (
	FetchTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "dashboard",
		Subsystem: "list",
		Name:      "fetch_total",
		Help:      "List page fetches by entity and outcome",
	}, []string{"entity", "outcome"})
	FetchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "dashboard",
		Subsystem: "list",
		Name:      "fetch_duration_seconds",
		Help:      "Upstream list fetch latency",
		Buckets:   prometheus.DefBuckets,
	}, []string{"entity"})
	FetchShapeTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "dashboard",
		Subsystem: "list",
		Name:      "envelope_shape_total",
		Help:      "Pagination envelope shapes seen per entity",
	}, []string{"entity", "shape"})
	DeleteTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "dashboard",
		Subsystem: "list",
		Name:      "delete_total",
		Help:      "Record deletes by entity and outcome",
	}, []string{"entity", "outcome"})
	ViewsMounted = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "dashboard",
		Subsystem: "views",
		Name:      "mounted",
		Help:      "Currently mounted list views",
	})
	ViewsOutdated = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "dashboard",
		Subsystem: "views",
		Name:      "outdated",
		Help:      "Mounted views whose definition changed since they were mounted",
	})
	DefinitionReloads = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "dashboard",
		Subsystem: "views",
		Name:      "definition_reloads_total",
		Help:      "View definition file reloads",
	})
)

// FetchOutcome classifies a finished fetch.
func FetchOutcome(o liststate.FetchOutcome) string {
	switch {
	case o.Stale:
		return OutcomeStale
	case o.Err != nil:
		return OutcomeError
	default:
		return OutcomeOK
	}
}

// ObserveFetch records one finished fetch.
func ObserveFetch(o liststate.FetchOutcome) {
	outcome := FetchOutcome(o)
	FetchTotal.WithLabelValues(o.Entity, outcome).Inc()
	FetchDuration.WithLabelValues(o.Entity).Observe(o.Duration.Seconds())
	if o.Err == nil {
		FetchShapeTotal.WithLabelValues(o.Entity, o.Shape.String()).Inc()
	}
}

// ObserveDelete records one finished delete call.
func ObserveDelete(o liststate.DeleteOutcome) {
	outcome := OutcomeOK
	if o.Err != nil {
		outcome = OutcomeError
	}
	DeleteTotal.WithLabelValues(o.Entity, outcome).Inc()
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
