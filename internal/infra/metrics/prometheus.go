package metrics

import (
	"question_cycle_service/internal/app"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// DefaultNamespace prefixes every metric name.
const DefaultNamespace = "question_cycle"

var _ app.Metrics = (*PrometheusCollector)(nil)

// PrometheusCollector records assignment cache and rollover activity.
type PrometheusCollector struct {
	cacheLookups      *prometheus.CounterVec
	storeLookups      *prometheus.CounterVec
	rolloverRuns      *prometheus.CounterVec
	rolloverRefreshed prometheus.Gauge
}

// NewPrometheus registers the collector's metrics with reg, or with
// prometheus.DefaultRegisterer when reg is nil.
func NewPrometheus(reg prometheus.Registerer, namespace string) *PrometheusCollector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if namespace == "" {
		namespace = DefaultNamespace
	}
	factory := promauto.With(reg)

	return &PrometheusCollector{
		cacheLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "Assignment cache lookups by result (hit, miss).",
		}, []string{"result"}),
		storeLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "lookups_total",
			Help:      "Question store lookups on cache miss by result (found, not_found, error).",
		}, []string{"result"}),
		rolloverRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "rollover",
			Name:      "runs_total",
			Help:      "Rollover job runs by result (success, error).",
		}, []string{"result"}),
		rolloverRefreshed: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "rollover",
			Name:      "regions_refreshed",
			Help:      "Regions whose cache entry was refreshed by the latest successful rollover.",
		}),
	}
}

func (p *PrometheusCollector) RecordCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	p.cacheLookups.WithLabelValues(result).Inc()
}

func (p *PrometheusCollector) RecordStoreLookup(result string) {
	p.storeLookups.WithLabelValues(result).Inc()
}

func (p *PrometheusCollector) RecordRollover(result string, refreshed int) {
	p.rolloverRuns.WithLabelValues(result).Inc()
	if result == app.ResultSuccess {
		p.rolloverRefreshed.Set(float64(refreshed))
	}
}
