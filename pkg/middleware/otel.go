package middleware

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/weft-dev/weft/pkg/protocol"
	"github.com/weft-dev/weft/pkg/server"
)

// defaultTracerName identifies spans produced by this package.
const defaultTracerName = "weft"

// OTelConfig configures the OpenTelemetry middleware.
type OTelConfig struct {
	// TracerName is the name of the tracer resolved from the global
	// provider (default: "weft").
	TracerName string

	// Filter decides which events to trace. Return false to skip.
	// Nil traces everything.
	Filter func(ctx server.Ctx, frame *protocol.EventFrame) bool

	// Attributes extracts extra attributes for each traced event.
	Attributes func(ctx server.Ctx) []attribute.KeyValue
}

// OTelOption configures the OpenTelemetry middleware.
type OTelOption func(*OTelConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) OTelOption {
	return func(c *OTelConfig) {
		c.TracerName = name
	}
}

// WithEventFilter sets a predicate deciding which events get spans.
func WithEventFilter(filter func(server.Ctx, *protocol.EventFrame) bool) OTelOption {
	return func(c *OTelConfig) {
		c.Filter = filter
	}
}

// WithAttributes sets a custom attribute extractor.
func WithAttributes(fn func(server.Ctx) []attribute.KeyValue) OTelOption {
	return func(c *OTelConfig) {
		c.Attributes = fn
	}
}

func defaultOTelConfig() OTelConfig {
	return OTelConfig{
		TracerName: defaultTracerName,
	}
}

// OpenTelemetry returns middleware that traces every event.
//
// Each event gets a span named weft.{event} with weft.session_id,
// weft.event, weft.hid, and, for hook events, weft.hook attributes.
// Failures recorded against the event (see server.RecordEventError)
// become span errors. The handler runs with the span's context as its
// StdContext, so downstream calls inherit the trace.
//
// The tracer resolves from the global provider; configure it in main()
// before starting the server:
//
//	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
//	otel.SetTracerProvider(tp)
//
// Without a provider the global default is a noop and tracing costs
// nothing.
func OpenTelemetry(opts ...OTelOption) server.Middleware {
	config := defaultOTelConfig()
	for _, opt := range opts {
		opt(&config)
	}

	tracer := otel.Tracer(config.TracerName)

	return func(next server.EventHandlerFunc) server.EventHandlerFunc {
		return func(ctx server.Ctx, frame *protocol.EventFrame) {
			if config.Filter != nil && !config.Filter(ctx, frame) {
				next(ctx, frame)
				return
			}

			attrs := []attribute.KeyValue{
				attribute.String("weft.event", frame.Event),
				attribute.String("weft.hid", frame.HID),
			}
			if sess := ctx.Session(); sess != nil {
				attrs = append(attrs, attribute.String("weft.session_id", sess.ID))
			}
			if frame.Hook != nil {
				attrs = append(attrs, attribute.String("weft.hook", frame.Hook.Name))
			}
			if config.Attributes != nil {
				attrs = append(attrs, config.Attributes(ctx)...)
			}

			spanCtx, span := tracer.Start(
				ctx.StdContext(),
				"weft."+eventName(frame),
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(attrs...),
			)
			defer span.End()

			next(ctx.WithStdContext(spanCtx), frame)

			if err := server.EventError(ctx); err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
			} else {
				span.SetStatus(codes.Ok, "")
			}
		}
	}
}

// SpanFromContext returns the span recording the current event. Inside
// a handler this is the event's span; with no active trace it is a
// noop span, safe to call methods on.
func SpanFromContext(ctx server.Ctx) trace.Span {
	return trace.SpanFromContext(ctx.StdContext())
}

// eventName returns the frame's event name for span and metric labels.
func eventName(frame *protocol.EventFrame) string {
	if frame.Event == "" {
		return "unknown"
	}
	return frame.Event
}
