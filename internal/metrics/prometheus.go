package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	prometheusOnce     sync.Once
	prometheusInstance *PrometheusCollector
)

// PrometheusCollector provides Prometheus metrics for hexreport.
type PrometheusCollector struct {
	// MCP tool metrics
	toolCallsTotal   *prometheus.CounterVec
	toolErrorsTotal  *prometheus.CounterVec
	toolDurationSecs *prometheus.HistogramVec

	// Rendering metrics
	rendersTotal       *prometheus.CounterVec
	renderDurationSecs prometheus.Histogram
	moveErrorsTotal    *prometheus.CounterVec
	reportsTotal       prometheus.Counter
	reportMatches      prometheus.Histogram
	logMatchesParsed   prometheus.Counter

	// HTTP metrics
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	rateLimitedTotal    *prometheus.CounterVec

	// Health metrics
	healthChecksTotal *prometheus.CounterVec

	// Cache metrics
	cacheHitsTotal   prometheus.Counter
	cacheMissesTotal prometheus.Counter
	cacheSize        prometheus.Gauge
	cacheItems       prometheus.Gauge
}

// NewPrometheusCollector returns the process-wide collector.
func NewPrometheusCollector() *PrometheusCollector {
	prometheusOnce.Do(func() {
		prometheusInstance = &PrometheusCollector{
			toolCallsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "hexreport_tool_calls_total",
					Help: "Total number of MCP tool calls",
				},
				[]string{"tool", "status"},
			),
			toolErrorsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "hexreport_tool_errors_total",
					Help: "Total number of MCP tool errors",
				},
				[]string{"tool"},
			),
			toolDurationSecs: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "hexreport_tool_duration_seconds",
					Help:    "Duration of MCP tool calls in seconds",
					Buckets: prometheus.DefBuckets,
				},
				[]string{"tool"},
			),

			rendersTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "hexreport_matches_rendered_total",
					Help: "Total number of matches rendered, by outcome",
				},
				[]string{"outcome"},
			),
			renderDurationSecs: promauto.NewHistogram(
				prometheus.HistogramOpts{
					Name:    "hexreport_render_duration_seconds",
					Help:    "Time spent rendering one match",
					Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1},
				},
			),
			moveErrorsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "hexreport_move_errors_total",
					Help: "Total number of matches whose moves could not be replayed",
				},
				[]string{"reason"},
			),
			reportsTotal: promauto.NewCounter(
				prometheus.CounterOpts{
					Name: "hexreport_reports_total",
					Help: "Total number of HTML reports written",
				},
			),
			reportMatches: promauto.NewHistogram(
				prometheus.HistogramOpts{
					Name:    "hexreport_report_matches",
					Help:    "Number of matches per report",
					Buckets: prometheus.ExponentialBuckets(1, 2, 10),
				},
			),
			logMatchesParsed: promauto.NewCounter(
				prometheus.CounterOpts{
					Name: "hexreport_log_matches_parsed_total",
					Help: "Total number of matches read from referee logs",
				},
			),

			httpRequestsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "hexreport_http_requests_total",
					Help: "Total number of HTTP requests",
				},
				[]string{"method", "path", "status"},
			),
			httpRequestDuration: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "hexreport_http_request_duration_seconds",
					Help:    "Duration of HTTP requests in seconds",
					Buckets: prometheus.DefBuckets,
				},
				[]string{"method", "path"},
			),

			healthChecksTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "hexreport_health_checks_total",
					Help: "Total number of health check runs",
				},
				[]string{"check", "status"},
			),

			cacheHitsTotal: promauto.NewCounter(
				prometheus.CounterOpts{
					Name: "hexreport_cache_hits_total",
					Help: "Total number of cache hits",
				},
			),
			rateLimitedTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "hexreport_rate_limited_total",
					Help: "Total number of requests rejected by the rate limiter",
				},
				[]string{"surface"},
			),
			cacheMissesTotal: promauto.NewCounter(
				prometheus.CounterOpts{
					Name: "hexreport_cache_misses_total",
					Help: "Total number of cache misses",
				},
			),
			cacheSize: promauto.NewGauge(
				prometheus.GaugeOpts{
					Name: "hexreport_cache_size_bytes",
					Help: "Current cache size in bytes",
				},
			),
			cacheItems: promauto.NewGauge(
				prometheus.GaugeOpts{
					Name: "hexreport_cache_items",
					Help: "Current number of items in cache",
				},
			),
		}
	})
	return prometheusInstance
}

// RecordToolCall records an MCP tool call.
func (p *PrometheusCollector) RecordToolCall(tool, status string, durationSecs float64) {
	p.toolCallsTotal.WithLabelValues(tool, status).Inc()
	p.toolDurationSecs.WithLabelValues(tool).Observe(durationSecs)

	if status == "error" {
		p.toolErrorsTotal.WithLabelValues(tool).Inc()
	}
}

// RecordRender records one rendered match. outcome is "success" or "error".
func (p *PrometheusCollector) RecordRender(outcome string, durationSecs float64) {
	p.rendersTotal.WithLabelValues(outcome).Inc()
	p.renderDurationSecs.Observe(durationSecs)
}

// RecordMoveError records why a match could not be replayed.
func (p *PrometheusCollector) RecordMoveError(reason string) {
	p.moveErrorsTotal.WithLabelValues(reason).Inc()
}

// RecordReport records a written report and its match count.
func (p *PrometheusCollector) RecordReport(matches int) {
	p.reportsTotal.Inc()
	p.reportMatches.Observe(float64(matches))
}

// RecordLogParsed records matches read from a referee log.
func (p *PrometheusCollector) RecordLogParsed(matches int) {
	p.logMatchesParsed.Add(float64(matches))
}

// RecordHTTPRequest records an HTTP request.
func (p *PrometheusCollector) RecordHTTPRequest(method, path, status string, durationSecs float64) {
	p.httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	p.httpRequestDuration.WithLabelValues(method, path).Observe(durationSecs)
}

// RecordRateLimited records a rejected request. surface is "http" or "mcp".
func (p *PrometheusCollector) RecordRateLimited(surface string) {
	p.rateLimitedTotal.WithLabelValues(surface).Inc()
}

// RecordHealthCheck records a health check result.
func (p *PrometheusCollector) RecordHealthCheck(check string, healthy bool) {
	status := "healthy"
	if !healthy {
		status = "unhealthy"
	}
	p.healthChecksTotal.WithLabelValues(check, status).Inc()
}

func (p *PrometheusCollector) RecordCacheHit() {
	p.cacheHitsTotal.Inc()
}

func (p *PrometheusCollector) RecordCacheMiss() {
	p.cacheMissesTotal.Inc()
}

// SetCacheStats sets the current cache statistics.
func (p *PrometheusCollector) SetCacheStats(items, sizeBytes float64) {
	p.cacheItems.Set(items)
	p.cacheSize.Set(sizeBytes)
}
