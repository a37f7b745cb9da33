package observability

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdkresource "go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Additional-Code/bakery/internal/config"
)

const (
	serviceVersion  = "0.1.0"
	shutdownTimeout = 10 * time.Second
)

// Manager owns the tracer and meter providers. The order counters registered
// by the service layer are exported through the meter provider set here.
type Manager struct {
	cfg    config.Observability
	logger *zap.Logger

	tracerProvider *sdktrace.TracerProvider
	metrics        *metricsPipeline
}

// Module exposes the observability manager to Fx.
var Module = fx.Provide(NewManager)

// NewManager builds the providers enabled in cfg and installs them as the
// otel globals when the app starts.
func NewManager(lc fx.Lifecycle, cfg config.Config, logger *zap.Logger) (*Manager, error) {
	obs := cfg.Observability
	resource, err := sdkresource.New(context.Background(),
		sdkresource.WithFromEnv(),
		sdkresource.WithHost(),
		sdkresource.WithAttributes(
			semconv.ServiceName(obs.ServiceName),
			semconv.ServiceVersion(serviceVersion),
			attribute.String("service.environment", obs.Environment),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("build otel resource: %w", err)
	}

	mgr := &Manager{cfg: obs, logger: logger}

	if obs.EnableTracing {
		mgr.tracerProvider, err = newTracerProvider(context.Background(), obs, resource, logger)
		if err != nil {
			return nil, fmt.Errorf("init tracing: %w", err)
		}
	}
	if obs.EnableMetrics {
		mgr.metrics, err = newMetricsPipeline(obs, resource, logger)
		if err != nil {
			return nil, fmt.Errorf("init metrics: %w", err)
		}
	}

	lc.Append(fx.Hook{OnStart: mgr.install, OnStop: mgr.shutdown})
	return mgr, nil
}

func (m *Manager) install(context.Context) error {
	if m.tracerProvider != nil {
		otel.SetTracerProvider(m.tracerProvider)
		otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		))
	}
	if mp := m.MeterProvider(); mp != nil {
		otel.SetMeterProvider(mp)
	}
	return nil
}

func (m *Manager) shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	var err error
	if m.tracerProvider != nil {
		err = errors.Join(err, m.tracerProvider.Shutdown(ctx))
	}
	if mp := m.MeterProvider(); mp != nil {
		err = errors.Join(err, mp.Shutdown(ctx))
	}
	return err
}

// TracingEnabled reports whether tracing is active.
func (m *Manager) TracingEnabled() bool {
	return m.tracerProvider != nil
}

// MetricsEnabled reports whether metrics are active.
func (m *Manager) MetricsEnabled() bool {
	return m.MeterProvider() != nil
}

// MeterProvider returns the configured provider, nil when metrics are off.
func (m *Manager) MeterProvider() *sdkmetric.MeterProvider {
	if m.metrics == nil {
		return nil
	}
	return m.metrics.provider
}

// MetricsHandler serves the Prometheus scrape endpoint; nil unless the
// prometheus exporter is selected.
func (m *Manager) MetricsHandler() http.Handler {
	if m.metrics == nil {
		return nil
	}
	return m.metrics.handler
}

// PrometheusPath returns the configured metrics endpoint path.
func (m *Manager) PrometheusPath() string {
	return m.cfg.PrometheusPath
}
