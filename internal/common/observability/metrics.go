// internal/common/observability/metrics.go
package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"

	"storefront/internal/common/logger"
)

// Observability records run level metrics through OpenTelemetry, exported on the default
// Prometheus registry next to the promauto counters.
type Observability struct {
	meterProvider   *metric.MeterProvider
	meter           otelmetric.Meter
	runCounter      otelmetric.Int64Counter
	runDuration     otelmetric.Float64Histogram
	productsCounter otelmetric.Int64Counter
}

func New(serviceName string, log logger.Logger) *Observability {
	exporter, err := prometheus.New()
	if err != nil {
		log.Warn("failed to create prometheus exporter", map[string]interface{}{"error": err})
		return &Observability{}
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	meter := provider.Meter(serviceName)

	runCounter, _ := meter.Int64Counter(
		"pipeline.runs",
		otelmetric.WithDescription("Number of ingestion runs"),
	)

	runDuration, _ := meter.Float64Histogram(
		"pipeline.run.duration",
		otelmetric.WithDescription("Ingestion run duration"),
		otelmetric.WithUnit("ms"),
	)

	products, _ := meter.Int64Counter(
		"pipeline.products",
		otelmetric.WithDescription("Products handed to the index per run"),
	)

	return &Observability{
		meterProvider:   provider,
		meter:           meter,
		runCounter:      runCounter,
		runDuration:     runDuration,
		productsCounter: products,
	}
}

// RecordRun records one finished run with its outcome ("success", "failed", "cancelled").
func (o *Observability) RecordRun(ctx context.Context, status string, duration time.Duration, products int) {
	if o == nil {
		return
	}
	attrs := otelmetric.WithAttributes(attribute.String("status", status))
	if o.runCounter != nil {
		o.runCounter.Add(ctx, 1, attrs)
	}
	if o.runDuration != nil {
		o.runDuration.Record(ctx, float64(duration.Milliseconds()), attrs)
	}
	if o.productsCounter != nil && products > 0 {
		o.productsCounter.Add(ctx, int64(products), attrs)
	}
}

func (o *Observability) Shutdown() {
	if o != nil && o.meterProvider != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = o.meterProvider.Shutdown(ctx)
	}
}
