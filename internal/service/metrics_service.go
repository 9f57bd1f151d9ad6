package service

import (
	"net/http"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/church-admin-api/internal/models"
)

// MetricsService encapsulates Prometheus instrumentation on a private registry.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	cacheLatency    prometheus.Histogram
	cacheWrite      prometheus.Histogram
	cacheHitRatio   prometheus.Gauge
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter

	pixCharges        prometheus.Counter
	pixChargeAmount   prometheus.Counter
	pixTransitions    *prometheus.CounterVec
	pspErrors         *prometheus.CounterVec
	reconcileDuration prometheus.Histogram
	reconcileRows     *prometheus.CounterVec
	reconcileLastRun  prometheus.Gauge
	notifications     *prometheus.CounterVec

	cacheHitCount  uint64
	cacheMissCount uint64
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	m := &MetricsService{
		registry: registry,
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
		requestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		cacheLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "cache_latency_seconds",
			Help:    "Latency for cache operations",
			Buckets: prometheus.DefBuckets,
		}),
		cacheWrite: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "cache_write_seconds",
			Help:    "Latency for cache set operations",
			Buckets: prometheus.DefBuckets,
		}),
		cacheHitRatio: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "cache_hit_ratio",
			Help: "Ratio of cache hits to total cache lookups",
		}),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Total cache hits",
		}),
		cacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Total cache misses",
		}),
		pixCharges: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pix_charges_created_total",
			Help: "PIX charges issued and persisted",
		}),
		pixChargeAmount: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pix_charges_amount_cents_total",
			Help: "Sum of issued PIX charge amounts in centavos",
		}),
		pixTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pix_status_transitions_total",
			Help: "Applied PIX status transitions by resulting status and source",
		}, []string{"status", "source"}),
		pspErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "psp_errors_total",
			Help: "Failed calls to the payment service provider",
		}, []string{"operation"}),
		reconcileDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "pix_reconciliation_duration_seconds",
			Help:    "Duration of PIX reconciliation batches",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}),
		reconcileRows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pix_reconciliation_rows_total",
			Help: "Rows visited by reconciliation by outcome",
		}, []string{"outcome"}),
		reconcileLastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "pix_reconciliation_last_run_timestamp_seconds",
			Help: "Unix time of the last finished reconciliation batch",
		}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "payment_notifications_total",
			Help: "Payment confirmation notifications by result",
		}, []string{"result"}),
	}

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(
		m.requestDuration, m.requestTotal,
		m.cacheLatency, m.cacheWrite, m.cacheHitRatio, m.cacheHits, m.cacheMisses,
		m.pixCharges, m.pixChargeAmount, m.pixTransitions, m.pspErrors,
		m.reconcileDuration, m.reconcileRows, m.reconcileLastRun, m.notifications,
		goroutines,
	)
	m.handler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	return m
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Registry exposes the private registry for tests and collectors.
func (m *MetricsService) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := strconv.Itoa(status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// RecordCacheOperation records cache hit/miss metrics and updates hit ratio.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheLatency.Observe(duration.Seconds())
	if hit {
		m.cacheHits.Inc()
		atomic.AddUint64(&m.cacheHitCount, 1)
	} else {
		m.cacheMisses.Inc()
		atomic.AddUint64(&m.cacheMissCount, 1)
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	total := hits + atomic.LoadUint64(&m.cacheMissCount)
	if total > 0 {
		m.cacheHitRatio.Set(float64(hits) / float64(total))
	}
}

// ObserveCacheWrite tracks the duration for cache write operations.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheWrite.Observe(duration.Seconds())
}

// RecordPixCharge counts a persisted PIX charge.
func (m *MetricsService) RecordPixCharge(amount int64) {
	if m == nil {
		return
	}
	m.pixCharges.Inc()
	m.pixChargeAmount.Add(float64(amount))
}

// RecordPixTransition counts an applied PENDING to terminal transition.
func (m *MetricsService) RecordPixTransition(status models.PixStatus, source string) {
	if m == nil {
		return
	}
	m.pixTransitions.WithLabelValues(string(status), source).Inc()
}

// RecordPSPError counts a failed provider call.
func (m *MetricsService) RecordPSPError(operation string) {
	if m == nil {
		return
	}
	m.pspErrors.WithLabelValues(operation).Inc()
}

// ObserveReconciliation records a finished batch.
func (m *MetricsService) ObserveReconciliation(report *models.ReconciliationReport, duration time.Duration) {
	if m == nil || report == nil {
		return
	}
	m.reconcileDuration.Observe(duration.Seconds())
	m.reconcileRows.WithLabelValues("updated").Add(float64(report.Updated))
	m.reconcileRows.WithLabelValues("unchanged").Add(float64(report.Checked - report.Updated - report.Errors))
	m.reconcileRows.WithLabelValues("error").Add(float64(report.Errors))
	m.reconcileLastRun.Set(float64(report.RunAt.Unix()))
}

// RecordNotification counts a payment notification outcome.
func (m *MetricsService) RecordNotification(success bool) {
	if m == nil {
		return
	}
	result := "sent"
	if !success {
		result = "failed"
	}
	m.notifications.WithLabelValues(result).Inc()
}
