// Package metrics provides Prometheus metrics for the vitrine portfolio service.
package metrics

import (
	"context"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultNamespace       = "vitrine"
	defaultSubsystem       = "portfolio"
	defaultRefreshInterval = 10 * time.Second
)

// Manager manages all Prometheus metrics for the vitrine service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          atomic.Bool
	constLabels      map[string]string
	registry         prometheus.Registerer

	// Chat metrics
	chatTurns         *prometheus.CounterVec
	chatFailures      *prometheus.CounterVec
	chatLatency       *prometheus.HistogramVec
	chatDuplicates    prometheus.Counter
	chatRateLimited   prometheus.Counter
	easterEggsFound   *prometheus.CounterVec
	backendSelections *prometheus.CounterVec

	// Lookup tool metrics
	toolCalls   *prometheus.CounterVec
	toolLatency *prometheus.HistogramVec

	// Navigation and content
	navigationActions *prometheus.CounterVec
	recordsByCategory *prometheus.GaugeVec
	activeSessions    prometheus.Gauge

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorRateByEndpoint *prometheus.CounterVec

	// System metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager. Collectors are registered on the
// configured registry immediately.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        defaultNamespace,
		subsystem:        defaultSubsystem,
		histogramBuckets: prometheus.DefBuckets,
		constLabels:      map[string]string{},
		registry:         prometheus.DefaultRegisterer,
	}
	m.enabled.Store(true)
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}, labels)
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	})
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	})
}

func (m *Manager) histogramVec(name, help string, buckets []float64, labels ...string) *prometheus.HistogramVec {
	return promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		Buckets:     buckets,
		ConstLabels: m.constLabels,
	}, labels)
}

func (m *Manager) initializeMetrics() {
	m.chatTurns = m.counterVec("chat_turns_total",
		"Chat turns handled, by backend and mode (normal or triggered)", "backend", "mode")
	m.chatFailures = m.counterVec("chat_failures_total",
		"Chat turns answered with the apology message, by backend", "backend")
	m.chatLatency = m.histogramVec("chat_backend_latency_seconds",
		"Latency of backend calls in seconds", []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 30, 60}, "backend")
	m.chatDuplicates = m.counter("chat_duplicates_total",
		"Chat requests skipped because their request id was already seen")
	m.chatRateLimited = m.counter("chat_rate_limited_total",
		"Chat requests rejected by the per-session limiter")
	m.easterEggsFound = m.counterVec("easter_eggs_total",
		"Turns that activated the triggered mode, by special flag", "special")
	m.backendSelections = m.counterVec("backend_selections_total",
		"Backend tier chosen at start-up", "backend", "degraded")

	m.toolCalls = m.counterVec("tool_calls_total",
		"Lookup tool invocations by tool name and caller", "tool", "caller")
	m.toolLatency = m.histogramVec("tool_latency_seconds",
		"Lookup tool latency in seconds", m.histogramBuckets, "tool")

	m.navigationActions = m.counterVec("navigation_actions_total",
		"Navigation actions by kind and whether the display changed", "action", "changed")
	m.recordsByCategory = promauto.With(m.registry).NewGaugeVec(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "records",
		Help:        "Records loaded per category",
		ConstLabels: m.constLabels,
	}, []string{"category"})
	m.activeSessions = m.gauge("active_sessions", "Sessions currently held in memory")

	m.httpRequests = m.counterVec("http_requests_total",
		"Total number of HTTP requests", "endpoint", "method", "status_code")
	m.httpRequestDuration = m.histogramVec("http_request_duration_seconds",
		"HTTP request duration in seconds", m.histogramBuckets, "endpoint", "method", "status_code")
	m.errorRateByEndpoint = m.counterVec("errors_by_endpoint_total",
		"Errors by endpoint, method and error type", "endpoint", "method", "error_type")

	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "System memory usage in bytes")
	m.systemGoroutineCount = m.gauge("system_goroutine_count", "Number of goroutines")
	m.systemGCPauseTime = promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "system_gc_pause_time_milliseconds",
		Help:        "GC pause time in milliseconds",
		Buckets:     []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
		ConstLabels: m.constLabels,
	})
}

// Enabled reports whether the manager records observations.
func (m *Manager) Enabled() bool { return m.enabled.Load() }

// SetEnabled toggles recording on the global manager.
func SetEnabled(enabled bool) { globalManager.enabled.Store(enabled) }

func boolLabel(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

// RecordChatTurn counts a handled chat turn.
func RecordChatTurn(backend string, triggered bool) {
	if !globalManager.enabled.Load() {
		return
	}
	mode := "normal"
	if triggered {
		mode = "triggered"
	}
	globalManager.chatTurns.WithLabelValues(backend, mode).Inc()
}

// RecordChatFailure counts a turn that ended with the apology message.
func RecordChatFailure(backend string) {
	if !globalManager.enabled.Load() {
		return
	}
	globalManager.chatFailures.WithLabelValues(backend).Inc()
}

// RecordChatLatency records a backend call duration.
func RecordChatLatency(backend string, d time.Duration) {
	if !globalManager.enabled.Load() {
		return
	}
	globalManager.chatLatency.WithLabelValues(backend).Observe(d.Seconds())
}

// RecordChatDuplicate counts a request skipped by the idempotency check.
func RecordChatDuplicate() {
	if !globalManager.enabled.Load() {
		return
	}
	globalManager.chatDuplicates.Inc()
}

// RecordChatRateLimited counts a request rejected by the session limiter.
func RecordChatRateLimited() {
	if !globalManager.enabled.Load() {
		return
	}
	globalManager.chatRateLimited.Inc()
}

// RecordEasterEgg counts a triggered turn.
func RecordEasterEgg(special bool) {
	if !globalManager.enabled.Load() {
		return
	}
	globalManager.easterEggsFound.WithLabelValues(boolLabel(special)).Inc()
}

// RecordBackendSelection records the tier chosen at start-up.
func RecordBackendSelection(backend string, degraded bool) {
	if !globalManager.enabled.Load() {
		return
	}
	globalManager.backendSelections.WithLabelValues(backend, boolLabel(degraded)).Inc()
}

// RecordToolCall counts a lookup tool invocation and its latency.
func RecordToolCall(tool, caller string, d time.Duration) {
	if !globalManager.enabled.Load() {
		return
	}
	globalManager.toolCalls.WithLabelValues(tool, caller).Inc()
	globalManager.toolLatency.WithLabelValues(tool).Observe(d.Seconds())
}

// RecordNavigation counts a navigation action.
func RecordNavigation(action string, changed bool) {
	if !globalManager.enabled.Load() {
		return
	}
	globalManager.navigationActions.WithLabelValues(action, boolLabel(changed)).Inc()
}

// UpdateRecordsByCategory sets the number of loaded records for a category.
func UpdateRecordsByCategory(category string, count int) {
	globalManager.recordsByCategory.WithLabelValues(category).Set(float64(count))
}

// UpdateActiveSessions sets the number of live sessions.
func UpdateActiveSessions(count int) {
	globalManager.activeSessions.Set(float64(count))
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	if !globalManager.enabled.Load() {
		return
	}
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration in seconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	if !globalManager.enabled.Load() {
		return
	}
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	if !globalManager.enabled.Load() {
		return
	}
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// CollectSystemStats samples runtime memory, goroutine and GC figures once.
func CollectSystemStats() {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	UpdateSystemMemoryUsage(ms.Alloc)
	UpdateSystemGoroutineCount(runtime.NumGoroutine())
	if ms.NumGC > 0 {
		last := ms.PauseNs[(ms.NumGC+255)%256]
		RecordSystemGCPauseTime(float64(last) / float64(time.Millisecond))
	}
}

// RunSystemCollector samples system stats every interval until ctx is done.
// A zero interval uses the default of ten seconds.
func RunSystemCollector(ctx context.Context, interval time.Duration) error {
	if interval == 0 {
		interval = defaultRefreshInterval
	}
	if interval < 0 {
		return ErrInvalidInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	CollectSystemStats()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			CollectSystemStats()
		}
	}
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
