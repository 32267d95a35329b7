package telemetry

import (
	"context"
	"fmt"

	"github.com/erp/backoffice/internal/domain/shared"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName names the tracer used for application spans
const TracerName = "backoffice"

// StartServiceSpan starts an internal span named {service}.{method}.
//
//	ctx, span := telemetry.StartServiceSpan(ctx, "purchase_order", "receive")
//	defer telemetry.Finish(span, &err)
func StartServiceSpan(ctx context.Context, service, method string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.Tracer(TracerName).Start(ctx, fmt.Sprintf("%s.%s", service, method),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)
}

// Finish ends span, recording *errp when set. Business rejections are kept
// as attributes; only internal failures mark the span as errored.
func Finish(span trace.Span, errp *error) {
	defer span.End()
	if errp == nil || *errp == nil {
		span.SetStatus(codes.Ok, "")
		return
	}
	err := *errp
	kind := shared.KindOf(err)
	span.SetAttributes(attribute.String("error.kind", string(kind)))
	span.RecordError(err)
	if kind == shared.KindInternal {
		span.SetStatus(codes.Error, err.Error())
	}
}

// AddEvent adds a named event to the span in ctx.
func AddEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		span.AddEvent(name, trace.WithAttributes(attrs...))
	}
}

// TraceID returns the hex trace id of ctx, or "" outside a sampled trace.
func TraceID(ctx context.Context) string {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.HasTraceID() {
		return ""
	}
	return sc.TraceID().String()
}
