package otel

import (
	"context"
	"errors"
	"sync"

	eventbus "github.com/hanpama/hostgraph/internal/eventbus"
	events "github.com/hanpama/hostgraph/internal/events"
	reqid "github.com/hanpama/hostgraph/internal/reqid"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/semconv/v1.17.0"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
)

const instrumentation = "github.com/hanpama/hostgraph"

// Setup configures OpenTelemetry tracing and metrics exported over OTLP/gRPC
// and attaches eventbus subscribers. If endpoint is empty, no telemetry is
// configured.
func Setup(endpoint, service string, bus *eventbus.Bus) (func(context.Context) error, error) {
	if endpoint == "" {
		return func(context.Context) error { return nil }, nil
	}
	ctx := context.Background()
	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(service),
	)

	texp, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(endpoint),
		otlptracegrpc.WithDialOption(grpc.WithInsecure()))
	if err != nil {
		return nil, err
	}
	mexp, err := otlpmetricgrpc.New(ctx,
		otlpmetricgrpc.WithEndpoint(endpoint),
		otlpmetricgrpc.WithDialOption(grpc.WithInsecure()))
	if err != nil {
		_ = texp.Shutdown(ctx)
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(texp),
		sdktrace.WithResource(res),
	)
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(mexp)),
		sdkmetric.WithResource(res),
	)
	shutdown := func(ctx context.Context) error {
		return errors.Join(tp.Shutdown(ctx), mp.Shutdown(ctx))
	}

	detach, err := Attach(bus, tp.Tracer(instrumentation), mp.Meter(instrumentation))
	if err != nil {
		_ = shutdown(ctx)
		return nil, err
	}
	otel.SetTracerProvider(tp)
	otel.SetMeterProvider(mp)
	return func(ctx context.Context) error {
		detach()
		return shutdown(ctx)
	}, nil
}

// Attach turns resolver and runtime events on bus into spans and counters:
//   - a "hostgraph.batch" span per host runtime batch,
//   - a "property.discover" span per discovery run, parented to its batch
//     and back-dated to when discovery started,
//   - "property.discoveries" and "property.failures" counters.
//
// The returned func removes the subscriptions.
func Attach(bus *eventbus.Bus, tracer trace.Tracer, meter metric.Meter) (func(), error) {
	discoveries, err := meter.Int64Counter("property.discoveries",
		metric.WithDescription("Discovery runs for uncached (type, property) pairs."))
	if err != nil {
		return nil, err
	}
	failures, err := meter.Int64Counter("property.failures",
		metric.WithDescription("Accessor invocations that returned an error or panicked."))
	if err != nil {
		return nil, err
	}
	s := &subscriber{tracer: tracer, discoveries: discoveries, failures: failures}
	return s.register(bus), nil
}

type subscriber struct {
	tracer      trace.Tracer
	discoveries metric.Int64Counter
	failures    metric.Int64Counter
	batchSpans  sync.Map // rid -> trace.Span
}

// parent returns ctx carrying the span of the batch ctx belongs to, if any.
func (s *subscriber) parent(ctx context.Context) (context.Context, trace.Span) {
	rid, ok := reqid.FromContext(ctx)
	if !ok {
		return ctx, nil
	}
	v, ok := s.batchSpans.Load(rid)
	if !ok {
		return ctx, nil
	}
	span := v.(trace.Span)
	return trace.ContextWithSpan(ctx, span), span
}

func (s *subscriber) register(bus *eventbus.Bus) func() {
	unsubs := []func(){
		eventbus.Subscribe(bus, func(ctx context.Context, e events.BatchStart) {
			_, span := s.tracer.Start(ctx, "hostgraph.batch")
			span.SetAttributes(attribute.Int("hostgraph.batch.tasks", e.Tasks))
			s.batchSpans.Store(e.RequestID, span)
		}),

		eventbus.Subscribe(bus, func(ctx context.Context, e events.BatchFinish) {
			v, ok := s.batchSpans.LoadAndDelete(e.RequestID)
			if !ok {
				return
			}
			span := v.(trace.Span)
			span.SetAttributes(attribute.Int("hostgraph.batch.errors", e.Errors))
			span.End()
		}),

		eventbus.Subscribe(bus, func(ctx context.Context, e events.PropertyDiscovered) {
			attrs := []attribute.KeyValue{
				attribute.String("property.type", e.TypeName),
				attribute.String("property.name", e.Property),
				attribute.String("property.strategy", e.Strategy),
				attribute.Bool("property.found", e.Found),
			}
			parent, _ := s.parent(ctx)
			_, span := s.tracer.Start(parent, "property.discover",
				trace.WithTimestamp(e.Start),
				trace.WithAttributes(attrs...))
			span.End(trace.WithTimestamp(e.Start.Add(e.Duration)))

			s.discoveries.Add(ctx, 1, metric.WithAttributes(
				attribute.String("property.strategy", e.Strategy),
				attribute.Bool("property.found", e.Found),
			))
		}),

		eventbus.Subscribe(bus, func(ctx context.Context, e events.PropertyFailed) {
			if _, span := s.parent(ctx); span != nil {
				span.RecordError(e.Err, trace.WithAttributes(
					attribute.String("property.type", e.TypeName),
					attribute.String("property.name", e.Property),
				))
			}
			s.failures.Add(ctx, 1, metric.WithAttributes(
				attribute.String("property.type", e.TypeName),
			))
		}),
	}
	return func() {
		for _, u := range unsubs {
			u()
		}
	}
}
