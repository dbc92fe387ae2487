package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/kakeibo/internal/usecase"
)

var _ usecase.Metrics = (*Metrics)(nil)

func TestNew_RegistersMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := New(registry)

	m.TransactionWritten("create")
	m.HTTPRequests.WithLabelValues("GET", "/health", "200").Inc()

	families, err := registry.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestNew_SeparateRegistries(t *testing.T) {
	// Two instances on distinct registries must not collide.
	assert.NotPanics(t, func() {
		New(prometheus.NewRegistry())
		New(prometheus.NewRegistry())
	})
}

func TestMetrics_BusinessEvents(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.TransactionWritten("create")
	m.TransactionWritten("create")
	m.TransactionWritten("delete")
	m.CSVImported(12)
	m.CSVImportFailed("malformed")
	m.MonthLockChanged(true)
	m.SummaryCacheLookup(true)
	m.SummaryCacheLookup(false)
	m.SummaryCacheLookup(false)
	m.AuthAttempt(false)
	m.RateLimited("login")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.TransactionWrites.WithLabelValues("create")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TransactionWrites.WithLabelValues("delete")))
	assert.Equal(t, 12.0, testutil.ToFloat64(m.CSVImportRows))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CSVImportFailures.WithLabelValues("malformed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.MonthLockChanges.WithLabelValues("true")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SummaryCache.WithLabelValues("hit")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.SummaryCache.WithLabelValues("miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AuthAttempts.WithLabelValues("failure")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RateLimitHits.WithLabelValues("login")))
}
