// Package metrics provides Prometheus metrics for the speedrun tracker.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome label values shared by the recorders below.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeEmpty   = "empty"
	OutcomeSkipped = "skipped"
)

// Manager owns every collector exported by the tracker.
type Manager struct {
	namespace        string
	subsystem        string
	latencyBuckets []float64
	enabled        bool
	constLabels    map[string]string
	metricPrefix   string
	registry       prometheus.Registerer

	// Leaderboard fetches
	categoryFetches       *prometheus.CounterVec
	categoryFetchLatency  *prometheus.HistogramVec
	nameResolutionMisses  prometheus.Counter
	aggregateValidRecords *prometheus.GaugeVec

	// Snapshots
	snapshotsWritten  *prometheus.CounterVec
	snapshotErrors    *prometheus.CounterVec
	snapshotsChanged  *prometheus.CounterVec
	snapshotsPruned   prometheus.Counter
	snapshotLastUnix  *prometheus.GaugeVec
	snapshotFileCount prometheus.Gauge

	// Publishing
	publishes       *prometheus.CounterVec
	publishDuration prometheus.Histogram

	// Export cycles
	cycles           *prometheus.CounterVec
	cycleDuration    prometheus.Histogram
	cycleLastUnix    prometheus.Gauge
	schedulerRunning prometheus.Gauge

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors
	errorsByComponent *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // registry without default Go collectors

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithRegisterer(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:      "speedrun",
		subsystem:      "tracker",
		latencyBuckets: []float64{50, 100, 250, 500, 1000, 2500, 5000, 10000},
		enabled:        true,
		constLabels:    make(map[string]string),
		registry:       prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) name(n string) string {
	if m.metricPrefix == "" {
		return n
	}
	return m.metricPrefix + "_" + n
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	auto := promauto.With(m.registry)
	labels := prometheus.Labels(m.constLabels)
	latencyBuckets := m.latencyBuckets

	m.categoryFetches = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("category_fetches_total"),
		Help: "Category world-record fetches by game and outcome",
	}, []string{"game", "outcome"})

	m.categoryFetchLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name:    m.name("category_fetch_latency_milliseconds"),
		Help:    "Latency of a single category fetch including name resolution",
		Buckets: latencyBuckets,
	}, []string{"game"})

	m.nameResolutionMisses = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("name_resolution_fallbacks_total"),
		Help: "Runner lookups that degraded to \"Unknown\"",
	})

	m.aggregateValidRecords = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("valid_records"),
		Help: "Records that passed the export filter in the last aggregation",
	}, []string{"game"})

	m.snapshotsWritten = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("snapshots_written_total"),
		Help: "Snapshot files written by game and layout",
	}, []string{"game", "layout"})

	m.snapshotErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("snapshot_errors_total"),
		Help: "Snapshot writes that failed on the filesystem",
	}, []string{"game"})

	m.snapshotsChanged = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("snapshots_changed_total"),
		Help: "Snapshots whose records differ from the previous snapshot",
	}, []string{"game"})

	m.snapshotsPruned = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("snapshots_pruned_total"),
		Help: "Old snapshot files removed by retention",
	})

	m.snapshotLastUnix = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("snapshot_last_unix_seconds"),
		Help: "Unix time of the latest snapshot per game",
	}, []string{"game"})

	m.snapshotFileCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("snapshot_files"),
		Help: "Snapshot files present in the export directory after pruning",
	})

	m.publishes = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("publishes_total"),
		Help: "Remote publish attempts by remote path and outcome",
	}, []string{"path", "outcome"})

	m.publishDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name:    m.name("publish_duration_milliseconds"),
		Help:    "Duration of a read-then-write publish",
		Buckets: latencyBuckets,
	})

	m.cycles = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("export_cycles_total"),
		Help: "Export cycles by outcome",
	}, []string{"outcome"})

	m.cycleDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name:    m.name("export_cycle_duration_seconds"),
		Help:    "Wall time of a full export cycle",
		Buckets: []float64{1, 5, 10, 30, 60, 120, 300},
	})

	m.cycleLastUnix = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("export_cycle_last_unix_seconds"),
		Help: "Unix time when the last export cycle finished",
	})

	m.schedulerRunning = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("scheduler_running"),
		Help: "1 while the background export loop is alive",
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("http_requests_total"),
		Help: "Total number of HTTP requests by endpoint and method",
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name:    m.name("http_request_duration_milliseconds"),
		Help:    "HTTP request duration in milliseconds",
		Buckets: latencyBuckets,
	}, []string{"endpoint", "method", "status_code"})

	m.errorsByComponent = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("errors_total"),
		Help: "Errors by component and type",
	}, []string{"component", "error_type"})

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("system_memory_bytes"),
		Help: "Heap bytes allocated",
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("system_goroutines"),
		Help: "Current number of goroutines",
	})

	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name:    m.name("system_gc_pause_milliseconds"),
		Help:    "Average GC pause observed by the system updater",
		Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10},
	})
}

// RecordCategoryFetch counts one category fetch for game with outcome.
func RecordCategoryFetch(game, outcome string) {
	if !globalManager.enabled {
		return
	}
	globalManager.categoryFetches.WithLabelValues(game, outcome).Inc()
}

// RecordCategoryFetchLatency observes a category fetch latency in milliseconds.
func RecordCategoryFetchLatency(game string, latencyMs float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.categoryFetchLatency.WithLabelValues(game).Observe(latencyMs)
}

// RecordNameResolutionFallback counts a runner name that fell back to "Unknown".
func RecordNameResolutionFallback() {
	if !globalManager.enabled {
		return
	}
	globalManager.nameResolutionMisses.Inc()
}

// UpdateValidRecords sets how many records of game passed the export filter.
func UpdateValidRecords(game string, count int) {
	if !globalManager.enabled {
		return
	}
	globalManager.aggregateValidRecords.WithLabelValues(game).Set(float64(count))
}

// RecordSnapshotWritten counts a snapshot written for game in layout.
func RecordSnapshotWritten(game, layout string) {
	if !globalManager.enabled {
		return
	}
	globalManager.snapshotsWritten.WithLabelValues(game, layout).Inc()
	globalManager.snapshotLastUnix.WithLabelValues(game).SetToCurrentTime()
}

// RecordSnapshotError counts a failed snapshot write for game.
func RecordSnapshotError(game string) {
	if !globalManager.enabled {
		return
	}
	globalManager.snapshotErrors.WithLabelValues(game).Inc()
}

// RecordSnapshotChanged counts a snapshot whose records changed.
func RecordSnapshotChanged(game string) {
	if !globalManager.enabled {
		return
	}
	globalManager.snapshotsChanged.WithLabelValues(game).Inc()
}

// RecordSnapshotsPruned adds n removed snapshot files.
func RecordSnapshotsPruned(n int) {
	if !globalManager.enabled || n <= 0 {
		return
	}
	globalManager.snapshotsPruned.Add(float64(n))
}

// UpdateSnapshotFileCount sets the number of snapshot files kept on disk.
func UpdateSnapshotFileCount(n int) {
	if !globalManager.enabled {
		return
	}
	globalManager.snapshotFileCount.Set(float64(n))
}

// RecordPublish counts a publish attempt for a remote path.
func RecordPublish(path, outcome string) {
	if !globalManager.enabled {
		return
	}
	globalManager.publishes.WithLabelValues(path, outcome).Inc()
}

// RecordPublishDuration observes a publish round trip in milliseconds.
func RecordPublishDuration(durationMs float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.publishDuration.Observe(durationMs)
}

// RecordCycle counts a finished export cycle and its wall time.
func RecordCycle(outcome string, d time.Duration) {
	if !globalManager.enabled {
		return
	}
	globalManager.cycles.WithLabelValues(outcome).Inc()
	globalManager.cycleDuration.Observe(d.Seconds())
	globalManager.cycleLastUnix.SetToCurrentTime()
}

// SetSchedulerRunning flags whether the background loop is alive.
func SetSchedulerRunning(running bool) {
	if !globalManager.enabled {
		return
	}
	if running {
		globalManager.schedulerRunning.Set(1)
		return
	}
	globalManager.schedulerRunning.Set(0)
}

// RecordHTTPRequest counts an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	if !globalManager.enabled {
		return
	}
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration observes an HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByComponent counts an error raised inside component.
func RecordErrorByComponent(component, errorType string) {
	if !globalManager.enabled {
		return
	}
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// UpdateSystemMemoryUsage sets allocated heap bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	if !globalManager.enabled {
		return
	}
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the goroutine count.
func UpdateSystemGoroutineCount(count int) {
	if !globalManager.enabled {
		return
	}
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime observes an average GC pause in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
