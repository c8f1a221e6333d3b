package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"insideredge/internal/domain/optionsflow"
)

var (
	// Worker metrics
	WorkerExecutions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "insideredge_worker_executions_total",
			Help: "Total number of worker executions",
		},
		[]string{"worker", "status"}, // status: success|error
	)

	WorkerDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "insideredge_worker_duration_seconds",
			Help:    "Worker execution duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
		},
		[]string{"worker"},
	)

	WorkerLastRun = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "insideredge_worker_last_run_timestamp",
			Help: "Unix timestamp of last worker execution",
		},
		[]string{"worker"},
	)

	// Flow analysis metrics
	FlowReports = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "insideredge_flow_reports_total",
			Help: "Total number of flow reports produced",
		},
		[]string{"source"}, // source: computed|cached|supplied
	)

	ClustersByAction = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "insideredge_clusters_total",
			Help: "Ranked clusters by conviction action",
		},
		[]string{"action"},
	)

	ClustersByTag = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "insideredge_cluster_tags_total",
			Help: "Ranked clusters by pattern tag",
		},
		[]string{"tag"},
	)

	// Five-factor metrics
	Snapshots = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "insideredge_snapshots_total",
			Help: "Five-factor snapshot outcomes",
		},
		[]string{"outcome"}, // outcome: built|no_data|error|cached
	)

	// Row source metrics
	RowFetches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "insideredge_row_fetches_total",
			Help: "Total number of row source fetches",
		},
		[]string{"table", "status"},
	)

	RowFetchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "insideredge_row_fetch_duration_seconds",
			Help:    "Row source fetch latency in seconds",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
		[]string{"table"},
	)

	// Cache metrics
	CacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "insideredge_cache_lookups_total",
			Help: "Analysis cache lookups",
		},
		[]string{"artifact", "result"}, // result: hit|miss|error
	)

	// Delivery metrics
	KafkaMessages = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "insideredge_kafka_messages_total",
			Help: "Total Kafka messages",
		},
		[]string{"topic", "direction", "status"}, // direction: produced|consumed
	)

	Notifications = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "insideredge_notifications_total",
			Help: "Telegram notifications sent",
		},
		[]string{"status"}, // status: success|failed
	)
)

// Init registers all metrics with Prometheus
func Init() {
	prometheus.MustRegister(WorkerExecutions)
	prometheus.MustRegister(WorkerDuration)
	prometheus.MustRegister(WorkerLastRun)

	prometheus.MustRegister(FlowReports)
	prometheus.MustRegister(ClustersByAction)
	prometheus.MustRegister(ClustersByTag)
	prometheus.MustRegister(Snapshots)

	prometheus.MustRegister(RowFetches)
	prometheus.MustRegister(RowFetchDuration)
	prometheus.MustRegister(CacheLookups)

	prometheus.MustRegister(KafkaMessages)
	prometheus.MustRegister(Notifications)
}

// Handler returns Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordWorkerExecution records a worker execution
func RecordWorkerExecution(worker string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	WorkerExecutions.WithLabelValues(worker, status).Inc()
	WorkerDuration.WithLabelValues(worker).Observe(duration.Seconds())
	WorkerLastRun.WithLabelValues(worker).SetToCurrentTime()
}

// RecordFlowReport counts a report and its ranked clusters
func RecordFlowReport(source string, report *optionsflow.Report) {
	FlowReports.WithLabelValues(source).Inc()
	if source == "cached" || report == nil {
		return
	}

	for _, c := range report.Clusters {
		ClustersByAction.WithLabelValues(string(c.Action)).Inc()
		if c.Tag != optionsflow.TagNone {
			ClustersByTag.WithLabelValues(string(c.Tag)).Inc()
		}
	}
}

// RecordSnapshot records a five-factor outcome
func RecordSnapshot(outcome string) {
	Snapshots.WithLabelValues(outcome).Inc()
}

// RecordRowFetch records a row source fetch
func RecordRowFetch(table string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	RowFetches.WithLabelValues(table, status).Inc()
	RowFetchDuration.WithLabelValues(table).Observe(duration.Seconds())
}

// RecordCacheLookup records a cache lookup result
func RecordCacheLookup(artifact, result string) {
	CacheLookups.WithLabelValues(artifact, result).Inc()
}

// RecordKafkaMessage records a produced or consumed message
func RecordKafkaMessage(topic, direction string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	KafkaMessages.WithLabelValues(topic, direction, status).Inc()
}

// RecordNotification records a Telegram delivery
func RecordNotification(err error) {
	status := "success"
	if err != nil {
		status = "failed"
	}
	Notifications.WithLabelValues(status).Inc()
}
