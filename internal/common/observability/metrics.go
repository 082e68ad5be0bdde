package observability

import (
	"context"
	"log"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
)

type Observability struct {
	meterProvider *metric.MeterProvider
	meter         otelmetric.Meter
	deckCounter   otelmetric.Int64Counter
	deckDuration  otelmetric.Float64Histogram
}

func New(serviceName string) *Observability {
	exporter, err := prometheus.New()
	if err != nil {
		log.Printf("Failed to create Prometheus exporter: %v", err)
		return &Observability{}
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	meter := provider.Meter(serviceName)

	deckCounter, _ := meter.Int64Counter(
		"decks.generated",
		otelmetric.WithDescription("Number of lesson decks generated"),
	)

	deckDuration, _ := meter.Float64Histogram(
		"decks.generation.duration",
		otelmetric.WithDescription("Lesson deck generation duration"),
		otelmetric.WithUnit("ms"),
	)

	return &Observability{
		meterProvider: provider,
		meter:         meter,
		deckCounter:   deckCounter,
		deckDuration:  deckDuration,
	}
}

func (o *Observability) RecordDeckGenerated(ctx context.Context, status string) {
	if o.deckCounter != nil {
		o.deckCounter.Add(ctx, 1, otelmetric.WithAttributes(
			attribute.String("status", status),
		))
	}
}

func (o *Observability) RecordDeckDuration(ctx context.Context, duration time.Duration, status string) {
	if o.deckDuration != nil {
		o.deckDuration.Record(ctx, float64(duration.Milliseconds()), otelmetric.WithAttributes(
			attribute.String("status", status),
		))
	}
}

func (o *Observability) Shutdown() {
	if o.meterProvider != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		o.meterProvider.Shutdown(ctx)
	}
}
