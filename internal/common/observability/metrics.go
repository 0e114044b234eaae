package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"

	"github.com/TreeOfLifeDCC/erga-back-end/internal/common/logger"
)

// Observability records search backend activity through an OpenTelemetry
// meter exported on the Prometheus registry.
type Observability struct {
	meterProvider  *metric.MeterProvider
	meter          otelmetric.Meter
	searchCounter  otelmetric.Int64Counter
	searchDuration otelmetric.Float64Histogram
	hitsReturned   otelmetric.Int64Histogram
}

func New(serviceName string, log logger.Logger) *Observability {
	exporter, err := prometheus.New()
	if err != nil {
		log.Warn("Failed to create Prometheus exporter", map[string]interface{}{"error": err})
		return &Observability{}
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	return newWithProvider(provider, serviceName)
}

func newWithProvider(provider *metric.MeterProvider, serviceName string) *Observability {
	meter := provider.Meter(serviceName)

	searchCounter, _ := meter.Int64Counter(
		"search.requests",
		otelmetric.WithDescription("Number of search backend requests"),
	)

	searchDuration, _ := meter.Float64Histogram(
		"search.duration",
		otelmetric.WithDescription("Search backend request duration"),
		otelmetric.WithUnit("ms"),
	)

	hitsReturned, _ := meter.Int64Histogram(
		"search.hits",
		otelmetric.WithDescription("Hits returned per search request"),
	)

	return &Observability{
		meterProvider:  provider,
		meter:          meter,
		searchCounter:  searchCounter,
		searchDuration: searchDuration,
		hitsReturned:   hitsReturned,
	}
}

// RecordSearch records one backend search. Safe on a zero Observability.
func (o *Observability) RecordSearch(ctx context.Context, index, outcome string, duration time.Duration, hits int) {
	if o == nil {
		return
	}
	attrs := otelmetric.WithAttributes(
		attribute.String("index", index),
		attribute.String("outcome", outcome),
	)
	if o.searchCounter != nil {
		o.searchCounter.Add(ctx, 1, attrs)
	}
	if o.searchDuration != nil {
		o.searchDuration.Record(ctx, float64(duration.Milliseconds()), attrs)
	}
	if o.hitsReturned != nil && outcome == "success" {
		o.hitsReturned.Record(ctx, int64(hits), otelmetric.WithAttributes(attribute.String("index", index)))
	}
}

func (o *Observability) Shutdown(ctx context.Context) error {
	if o == nil || o.meterProvider == nil {
		return nil
	}
	return o.meterProvider.Shutdown(ctx)
}
