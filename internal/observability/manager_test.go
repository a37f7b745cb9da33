package observability

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap"

	"github.com/Additional-Code/bakery/internal/config"
)

func obsConfig(metrics string) config.Config {
	return config.Config{Observability: config.Observability{
		ServiceName:     "bakery-test",
		Environment:     "test",
		EnableMetrics:   metrics != "",
		MetricsExporter: metrics,
		PrometheusPath:  "/metrics",
	}}
}

func TestPrometheusHandlerExportsCounters(t *testing.T) {
	lc := fxtest.NewLifecycle(t)
	mgr, err := NewManager(lc, obsConfig("prometheus"), zap.NewNop())
	require.NoError(t, err)
	lc.RequireStart()
	defer lc.RequireStop()

	require.True(t, mgr.MetricsEnabled())
	assert.False(t, mgr.TracingEnabled())
	require.NotNil(t, mgr.MetricsHandler())

	counter, err := mgr.MeterProvider().Meter("test").Int64Counter("orders_created_total")
	require.NoError(t, err)
	counter.Add(context.Background(), 2)

	rec := httptest.NewRecorder()
	mgr.MetricsHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "orders_created_total")
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestManagersDoNotShareRegistry(t *testing.T) {
	for i := 0; i < 2; i++ {
		lc := fxtest.NewLifecycle(t)
		_, err := NewManager(lc, obsConfig("prometheus"), zap.NewNop())
		require.NoError(t, err)
	}
}

func TestMetricsDisabled(t *testing.T) {
	mgr, err := NewManager(fxtest.NewLifecycle(t), obsConfig(""), zap.NewNop())
	require.NoError(t, err)

	assert.False(t, mgr.MetricsEnabled())
	assert.Nil(t, mgr.MetricsHandler())
	assert.Equal(t, "/metrics", mgr.PrometheusPath())
}
