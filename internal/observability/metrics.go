package observability

import (
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	stdoutmetric "go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdkresource "go.opentelemetry.io/otel/sdk/resource"
	"go.uber.org/zap"

	"github.com/Additional-Code/bakery/internal/config"
)

const stdoutMetricInterval = 30 * time.Second

type metricsPipeline struct {
	provider *sdkmetric.MeterProvider
	handler  http.Handler
}

// newMetricsPipeline returns nil when the exporter is unknown; metrics then stay off.
func newMetricsPipeline(obs config.Observability, resource *sdkresource.Resource, logger *zap.Logger) (*metricsPipeline, error) {
	switch obs.MetricsExporter {
	case "prometheus":
		// Each pipeline owns its registry so several apps can live in one process.
		registry := prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		exporter, err := promexporter.New(promexporter.WithRegisterer(registry))
		if err != nil {
			return nil, err
		}
		return &metricsPipeline{
			provider: sdkmetric.NewMeterProvider(
				sdkmetric.WithReader(exporter),
				sdkmetric.WithResource(resource),
			),
			handler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}),
		}, nil
	case "stdout":
		exporter, err := stdoutmetric.New(stdoutmetric.WithPrettyPrint(), stdoutmetric.WithWriter(os.Stdout))
		if err != nil {
			return nil, err
		}
		return &metricsPipeline{
			provider: sdkmetric.NewMeterProvider(
				sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(stdoutMetricInterval))),
				sdkmetric.WithResource(resource),
			),
		}, nil
	default:
		logger.Warn("unsupported metrics exporter; metrics disabled", zap.String("exporter", obs.MetricsExporter))
		return nil, nil
	}
}
