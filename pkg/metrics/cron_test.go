package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCronJobMetricsObserveRun(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewCronJobMetrics(reg)
	before := float64(time.Now().Add(-time.Second).Unix())

	m.ObserveRun("cart-abandon", 250*time.Millisecond, nil)
	m.ObserveRun("cart-abandon", time.Second, errors.New("db down"))
	m.ObserveRun("outbox-retention", 10*time.Millisecond, errors.New("timeout"))
	m.IncSkipped()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues("cart-abandon", CronSucceeded)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues("cart-abandon", CronFailed)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.skipped))
	assert.GreaterOrEqual(t, testutil.ToFloat64(m.lastSuccess.WithLabelValues("cart-abandon")), before)

	// A job that never succeeded has no last success series.
	assert.Equal(t, 1, testutil.CollectAndCount(m.lastSuccess))
	assert.Equal(t, 2, testutil.CollectAndCount(m.duration))

	mfs, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(mfs))
	for _, mf := range mfs {
		names = append(names, mf.GetName())
	}
	assert.ElementsMatch(t, []string{
		"merko_cron_job_runs_total",
		"merko_cron_job_duration_seconds",
		"merko_cron_job_last_success_timestamp_seconds",
		"merko_cron_cycles_skipped_total",
	}, names)
}

func TestCronJobMetricsNilSafe(t *testing.T) {
	var m *CronJobMetrics
	m.ObserveRun("job", time.Second, nil)
	m.IncSkipped()

	unregistered := NewCronJobMetrics(nil)
	unregistered.ObserveRun("", time.Second, errors.New("boom"))
	unregistered.IncSkipped()
}

func TestNewRegistryWithoutPool(t *testing.T) {
	mfs, err := NewRegistry(nil).Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, mfs)
	for _, mf := range mfs {
		assert.NotContains(t, mf.GetName(), "go_sql_")
	}
}
