package observability

import (
	"context"
	"log"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// Observability bundles the otel meter and tracer providers of a binary.
type Observability struct {
	meterProvider  *metric.MeterProvider
	tracerProvider *sdktrace.TracerProvider
	meter          otelmetric.Meter
	tracer         trace.Tracer

	requestCounter  otelmetric.Int64Counter
	requestDuration otelmetric.Float64Histogram
	jobCounter      otelmetric.Int64Counter
	jobDuration     otelmetric.Float64Histogram
}

type options struct {
	registerer     promclient.Registerer
	spanProcessors []sdktrace.SpanProcessor
	global         bool
}

type Option func(*options)

// WithRegisterer registers the prometheus exporter somewhere other than the
// default registry.
func WithRegisterer(r promclient.Registerer) Option {
	return func(o *options) { o.registerer = r }
}

// WithSpanProcessor attaches a span processor, e.g. a tracetest.SpanRecorder.
func WithSpanProcessor(p sdktrace.SpanProcessor) Option {
	return func(o *options) { o.spanProcessors = append(o.spanProcessors, p) }
}

// WithoutGlobal keeps the providers out of the otel globals.
func WithoutGlobal() Option {
	return func(o *options) { o.global = false }
}

func New(serviceName string, opts ...Option) *Observability {
	cfg := options{registerer: promclient.DefaultRegisterer, global: true}
	for _, opt := range opts {
		opt(&cfg)
	}

	res := resource.NewSchemaless(attribute.String("service.name", serviceName))

	tpOpts := []sdktrace.TracerProviderOption{sdktrace.WithResource(res)}
	for _, p := range cfg.spanProcessors {
		tpOpts = append(tpOpts, sdktrace.WithSpanProcessor(p))
	}
	tracerProvider := sdktrace.NewTracerProvider(tpOpts...)

	o := &Observability{
		tracerProvider: tracerProvider,
		tracer:         tracerProvider.Tracer(serviceName),
	}
	if cfg.global {
		otel.SetTracerProvider(tracerProvider)
	}

	exporter, err := prometheus.New(prometheus.WithRegisterer(cfg.registerer))
	if err != nil {
		log.Printf("Failed to create Prometheus exporter: %v", err)
		return o
	}

	o.meterProvider = metric.NewMeterProvider(metric.WithReader(exporter), metric.WithResource(res))
	if cfg.global {
		otel.SetMeterProvider(o.meterProvider)
	}
	o.meter = o.meterProvider.Meter(serviceName)

	o.requestCounter, _ = o.meter.Int64Counter(
		"param_service.requests",
		otelmetric.WithDescription("Parameter service requests"),
	)
	o.requestDuration, _ = o.meter.Float64Histogram(
		"param_service.duration",
		otelmetric.WithDescription("Parameter service request duration"),
		otelmetric.WithUnit("ms"),
	)
	o.jobCounter, _ = o.meter.Int64Counter(
		"jobs.processed",
		otelmetric.WithDescription("Number of jobs processed"),
	)
	o.jobDuration, _ = o.meter.Float64Histogram(
		"jobs.duration",
		otelmetric.WithDescription("Job processing duration"),
		otelmetric.WithUnit("ms"),
	)
	return o
}

// Tracer returns the tracer spans for remote calls are started on.
func (o *Observability) Tracer() trace.Tracer {
	if o == nil || o.tracer == nil {
		return otel.Tracer("nc-param-manager")
	}
	return o.tracer
}

// StartSpan starts a span on the binary's tracer.
func (o *Observability) StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return o.Tracer().Start(ctx, name, trace.WithAttributes(attrs...))
}

func (o *Observability) RecordRequest(ctx context.Context, operation, outcome string, duration time.Duration) {
	if o == nil {
		return
	}
	attrs := otelmetric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("outcome", outcome),
	)
	if o.requestCounter != nil {
		o.requestCounter.Add(ctx, 1, attrs)
	}
	if o.requestDuration != nil {
		o.requestDuration.Record(ctx, float64(duration.Milliseconds()), attrs)
	}
}

func (o *Observability) RecordJobProcessed(ctx context.Context, status string) {
	if o != nil && o.jobCounter != nil {
		o.jobCounter.Add(ctx, 1, otelmetric.WithAttributes(
			attribute.String("status", status),
		))
	}
}

func (o *Observability) RecordJobDuration(ctx context.Context, duration time.Duration, status string) {
	if o != nil && o.jobDuration != nil {
		o.jobDuration.Record(ctx, float64(duration.Milliseconds()), otelmetric.WithAttributes(
			attribute.String("status", status),
		))
	}
}

func (o *Observability) Shutdown() {
	if o == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if o.meterProvider != nil {
		_ = o.meterProvider.Shutdown(ctx)
	}
	if o.tracerProvider != nil {
		_ = o.tracerProvider.Shutdown(ctx)
	}
}
