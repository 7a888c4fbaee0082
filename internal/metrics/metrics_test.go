package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	m := New()
	require.NoError(t, m.Register(prometheus.NewRegistry()))

	m.CompileFailed()
	m.Reloaded()
	m.Reloaded()
	m.ObserveInvocation("procedure", time.Now(), nil)
	m.ObserveInvocation("procedure", time.Now(), errors.New("boom"))
	m.ObserveInvocation("function", time.Now(), nil)
	m.SetRegistered("function", 7)

	require.Equal(t, 1.0, testutil.ToFloat64(m.compileFailures))
	require.Equal(t, 2.0, testutil.ToFloat64(m.reloads))
	require.Equal(t, 1.0, testutil.ToFloat64(m.invocations.WithLabelValues("procedure", "success")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.invocations.WithLabelValues("procedure", "failure")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.invocations.WithLabelValues("function", "success")))
	require.Equal(t, 7.0, testutil.ToFloat64(m.registered.WithLabelValues("function")))
}

func TestMetrics_RegisterTwiceFails(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New()
	require.NoError(t, m.Register(reg))
	require.Error(t, m.Register(reg))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	require.NotPanics(t, func() {
		m.CompileFailed()
		m.Reloaded()
		m.ObserveInvocation("function", time.Now(), nil)
		m.SetRegistered("procedure", 1)
		require.NoError(t, m.Register(prometheus.NewRegistry()))
	})
}
