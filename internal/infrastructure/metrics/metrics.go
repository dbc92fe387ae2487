package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics and implements usecase.Metrics.
type Metrics struct {
	// Ledger metrics
	TransactionWrites *prometheus.CounterVec
	CSVImportRows     prometheus.Counter
	CSVImportFailures *prometheus.CounterVec
	MonthLockChanges  *prometheus.CounterVec
	SummaryCache      *prometheus.CounterVec

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
	HTTPInFlight prometheus.Gauge

	// Authentication metrics
	AuthAttempts *prometheus.CounterVec

	// Rate limiting metrics
	RateLimitHits *prometheus.CounterVec
}

// New creates all metrics and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		TransactionWrites: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kakeibo_transaction_writes_total",
				Help: "Transaction writes by operation",
			},
			[]string{"operation"},
		),
		CSVImportRows: factory.NewCounter(prometheus.CounterOpts{
			Name: "kakeibo_csv_import_rows_total",
			Help: "Rows committed by CSV imports",
		}),
		CSVImportFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kakeibo_csv_import_failures_total",
				Help: "Rejected CSV imports by reason",
			},
			[]string{"reason"},
		),
		MonthLockChanges: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kakeibo_month_lock_changes_total",
				Help: "Month lock toggles by resulting state",
			},
			[]string{"locked"},
		),
		SummaryCache: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kakeibo_summary_cache_lookups_total",
				Help: "Summary cache lookups by result",
			},
			[]string{"result"},
		),

		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kakeibo_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "kakeibo_http_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		HTTPInFlight: factory.NewGauge(prometheus.GaugeOpts{
			Name: "kakeibo_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		}),

		AuthAttempts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kakeibo_auth_attempts_total",
				Help: "Login attempts by outcome",
			},
			[]string{"status"},
		),

		RateLimitHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kakeibo_rate_limit_hits_total",
				Help: "Requests rejected by the rate limiter",
			},
			[]string{"route"},
		),
	}
}

// TransactionWritten counts a create, update, or delete.
func (m *Metrics) TransactionWritten(operation string) {
	m.TransactionWrites.WithLabelValues(operation).Inc()
}

// CSVImported counts committed import rows.
func (m *Metrics) CSVImported(rows int) {
	m.CSVImportRows.Add(float64(rows))
}

// CSVImportFailed counts a rejected import.
func (m *Metrics) CSVImportFailed(reason string) {
	m.CSVImportFailures.WithLabelValues(reason).Inc()
}

// MonthLockChanged counts a lock toggle.
func (m *Metrics) MonthLockChanged(locked bool) {
	m.MonthLockChanges.WithLabelValues(strconv.FormatBool(locked)).Inc()
}

// SummaryCacheLookup counts a cache hit or miss.
func (m *Metrics) SummaryCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.SummaryCache.WithLabelValues(result).Inc()
}

// AuthAttempt counts a login attempt.
func (m *Metrics) AuthAttempt(success bool) {
	status := "failure"
	if success {
		status = "success"
	}
	m.AuthAttempts.WithLabelValues(status).Inc()
}

// RateLimited counts a rejected request.
func (m *Metrics) RateLimited(route string) {
	m.RateLimitHits.WithLabelValues(route).Inc()
}
