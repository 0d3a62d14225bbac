package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var HttpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "http_requests_total",
	Help: "Total number of requests labelled by path and status",
}, []string{"path", "status"})

var countJobsInQueue = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "count_jobs_in_queue",
	Help: "Number of ingestion jobs in queue",
})

var activeWorkerCount = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "active_worker_count",
	Help: "Number of active ingestion workers",
})

var embedCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "embedding_cache_lookups_total",
	Help: "Embedding cache lookups by outcome",
}, []string{"outcome"})

var citationAnomalies = promauto.NewCounter(prometheus.CounterOpts{
	Name: "citation_anomalies_total",
	Help: "Citations emitted by the model that were not in the context manifest",
})

var refusalsTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "query_refusals_total",
	Help: "Queries answered with the no-evidence refusal",
})

var retrievalScores = promauto.NewHistogram(prometheus.HistogramOpts{
	Name:    "retrieval_top_score",
	Help:    "Top similarity score per retrieval",
	Buckets: []float64{.1, .2, .3, .4, .5, .6, .7, .8, .9, 1},
})

var dependencyLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "dependency_latency_seconds",
	Help:    "Latency of external service calls.",
	Buckets: []float64{.05, .1, .25, .5, 1, 2, 5, 10},
}, []string{"service"})

var jobDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "ingestion_job_duration_seconds",
	Help:    "Total time spent ingesting a document.",
	Buckets: []float64{.1, .5, 1, 2, 5, 10, 30, 120},
}, []string{"status"})

type HttpStatusRecorder struct {
	http.ResponseWriter
	Status int
}

func (r *HttpStatusRecorder) WriteHeader(code int) {
	r.Status = code
	r.ResponseWriter.WriteHeader(code)
}

func IncrementJobsInQueue() { countJobsInQueue.Inc() }
func DecrementJobsInQueue() { countJobsInQueue.Dec() }

func IncrementActiveWorkerCount() { activeWorkerCount.Inc() }
func DecrementActiveWorkerCount() { activeWorkerCount.Dec() }

func IncrementEmbedCacheHit()  { embedCacheLookups.WithLabelValues("hit").Inc() }
func IncrementEmbedCacheMiss() { embedCacheLookups.WithLabelValues("miss").Inc() }

func IncrementCitationAnomaly() { citationAnomalies.Inc() }
func IncrementRefusal()         { refusalsTotal.Inc() }

func ObserveTopRetrievalScore(score float64) { retrievalScores.Observe(score) }

func CaptureExecutionMetrics(label string, timeElapsed time.Duration) {
	dependencyLatency.WithLabelValues(label).Observe(timeElapsed.Seconds())
}

func CaptureJobMetrics(label string, timeElapsed time.Duration) {
	jobDuration.WithLabelValues(label).Observe(timeElapsed.Seconds())
}
