package engine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains Prometheus collectors for the dispatch engine.
//
// Collectors are registered on the Registerer passed to NewMetrics, not
// on the global default registry, so tests can create independent
// managers without duplicate-registration panics.
type Metrics struct {
	targetsRegistered prometheus.Counter
	targetsDeduped    prometheus.Counter
	casesEnqueued     prometheus.Counter
	casesEvaluated    *prometheus.CounterVec
	resultsReported   prometheus.Counter
	queueDepth        prometheus.GaugeFunc
	workersWaiting    prometheus.GaugeFunc
	evalDuration      *prometheus.HistogramVec
}

// Evaluation outcome labels for the cases_evaluated counter.
const (
	outcomeOK            = "ok"
	outcomeNotApplicable = "not_applicable"
	outcomeError         = "error"
	outcomePanic         = "panic"
)

// NewMetrics creates engine collectors bound to reg.
// The queue-depth and waiting-workers gauges read q lazily at scrape time.
func NewMetrics(reg prometheus.Registerer, q *workQueue) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		targetsRegistered: factory.NewCounter(prometheus.CounterOpts{
			Name: "spyglass_engine_targets_registered_total",
			Help: "Total number of distinct targets registered",
		}),
		targetsDeduped: factory.NewCounter(prometheus.CounterOpts{
			Name: "spyglass_engine_targets_deduped_total",
			Help: "Total number of submissions dropped as duplicates",
		}),
		casesEnqueued: factory.NewCounter(prometheus.CounterOpts{
			Name: "spyglass_engine_cases_enqueued_total",
			Help: "Total number of cases enqueued",
		}),
		casesEvaluated: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "spyglass_engine_cases_evaluated_total",
			Help: "Total number of cases evaluated, by outcome",
		}, []string{"unit", "outcome"}),
		resultsReported: factory.NewCounter(prometheus.CounterOpts{
			Name: "spyglass_engine_results_total",
			Help: "Total number of results reported to the monitor",
		}),
		queueDepth: factory.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "spyglass_engine_queue_depth",
			Help: "Cases currently queued",
		}, func() float64 { return float64(q.Size()) }),
		workersWaiting: factory.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "spyglass_engine_workers_waiting",
			Help: "Workers currently parked on an empty queue",
		}, func() float64 { return float64(q.Waiting()) }),
		evalDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "spyglass_engine_eval_duration_seconds",
			Help:    "Unit evaluation duration",
			Buckets: prometheus.DefBuckets,
		}, []string{"unit"}),
	}
}
