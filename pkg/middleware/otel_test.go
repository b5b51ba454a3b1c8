package middleware

import (
	"errors"
	"testing"

	"go.opentelemetry.io/otel/attribute"

	"github.com/weft-dev/weft/pkg/htest"
	"github.com/weft-dev/weft/pkg/protocol"
	"github.com/weft-dev/weft/pkg/server"
)

func TestOpenTelemetryWrapsHandler(t *testing.T) {
	ctx := htest.NewCtx().Build()
	frame := &protocol.EventFrame{
		Event: "hook:files",
		HID:   "c1e2",
		Hook:  &protocol.HookPayload{Name: "FilePicker"},
	}

	extracted := false
	var innerCtx server.Ctx
	var innerFrame *protocol.EventFrame

	mw := OpenTelemetry(
		WithTracerName("weft-test"),
		WithAttributes(func(server.Ctx) []attribute.KeyValue {
			extracted = true
			return []attribute.KeyValue{attribute.String("test.attr", "ok")}
		}),
	)
	mw(func(c server.Ctx, f *protocol.EventFrame) {
		innerCtx = c
		innerFrame = f
	})(ctx, frame)

	if innerFrame != frame {
		t.Fatalf("handler got frame %+v, want the original", innerFrame)
	}
	if innerCtx == ctx {
		t.Error("handler got the outer ctx; want a copy carrying the span context")
	}
	if !extracted {
		t.Error("attribute extractor not called")
	}
	if SpanFromContext(innerCtx) == nil {
		t.Error("SpanFromContext returned nil inside a traced event")
	}
}

func TestOpenTelemetryFilterSkips(t *testing.T) {
	ctx := htest.NewCtx().Build()

	var innerCtx server.Ctx
	mw := OpenTelemetry(
		WithEventFilter(func(_ server.Ctx, f *protocol.EventFrame) bool {
			return f.Event != "input"
		}),
	)
	mw(func(c server.Ctx, _ *protocol.EventFrame) {
		innerCtx = c
	})(ctx, &protocol.EventFrame{Event: "input", HID: "c1e1"})

	if innerCtx != ctx {
		t.Error("skipped event should pass the ctx through untouched")
	}
}

func TestOpenTelemetryLeavesEventErrorIntact(t *testing.T) {
	ctx := htest.NewCtx().Build()
	wantErr := errors.New("boom")

	h := OpenTelemetry()(func(c server.Ctx, _ *protocol.EventFrame) {
		server.RecordEventError(c, wantErr)
	})
	h(ctx, &protocol.EventFrame{Event: "click", HID: "c1e1"})

	// Tracing reads the failure; middleware outside it must still see it.
	if got := server.EventError(ctx); !errors.Is(got, wantErr) {
		t.Errorf("EventError after tracing = %v, want %v", got, wantErr)
	}
}

func TestOpenTelemetryComposesWithPrometheus(t *testing.T) {
	mw := freshMetrics(t)
	ctx := htest.NewCtx().Build()

	var order []string
	base := func(c server.Ctx, _ *protocol.EventFrame) {
		order = append(order, "handler")
		server.RecordEventError(c, server.ErrNoHandler)
	}

	h := OpenTelemetry()(mw(base))
	h(ctx, &protocol.EventFrame{Event: "click", HID: "c1e1"})

	if len(order) != 1 {
		t.Fatalf("handler ran %d times, want 1", len(order))
	}
	if got := counterValue(t, current().eventErrors.WithLabelValues("click", "no_handler")); got != 1 {
		t.Errorf("event_errors_total{click,no_handler} = %v, want 1", got)
	}
}
