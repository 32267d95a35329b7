package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func installRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	rec := tracetest.NewSpanRecorder()
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec)))
	t.Cleanup(func() { otel.SetTracerProvider(prev) })
	return rec
}

func TestStartServiceSpan_Finish(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus codes.Code
		wantKind   string
	}{
		{"success", nil, codes.Ok, ""},
		{"business rejection", shared.ErrOverReceipt, codes.Unset, string(shared.KindOverReceipt)},
		{"busy", shared.ErrBusy, codes.Unset, string(shared.KindBusy)},
		{"internal failure", errors.New("connection reset"), codes.Error, string(shared.KindInternal)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := installRecorder(t)

			func() (err error) {
				_, span := StartServiceSpan(context.Background(), "purchase_order", "receive", attribute.String("po_id", "x"))
				defer Finish(span, &err)
				return tt.err
			}()

			spans := rec.Ended()
			require.Len(t, spans, 1)
			s := spans[0]
			assert.Equal(t, "purchase_order.receive", s.Name())
			assert.Equal(t, tt.wantStatus, s.Status().Code)

			var kind string
			for _, a := range s.Attributes() {
				if a.Key == "error.kind" {
					kind = a.Value.AsString()
				}
			}
			assert.Equal(t, tt.wantKind, kind)
		})
	}
}

func TestTraceID(t *testing.T) {
	assert.Empty(t, TraceID(context.Background()))

	installRecorder(t)
	ctx, span := StartServiceSpan(context.Background(), "report", "dashboard")
	defer span.End()
	assert.Len(t, TraceID(ctx), 32)
}

func TestAddEvent(t *testing.T) {
	rec := installRecorder(t)
	ctx, span := StartServiceSpan(context.Background(), "inventory", "deplete")
	AddEvent(ctx, "lot_depleted", attribute.String("batch", "RICE-20260101-001"))
	span.End()

	require.Len(t, rec.Ended(), 1)
	events := rec.Ended()[0].Events()
	require.Len(t, events, 1)
	assert.Equal(t, "lot_depleted", events[0].Name)
}

func TestSamplerFor(t *testing.T) {
	assert.Contains(t, samplerFor(1).Description(), "AlwaysOnSampler")
	assert.Equal(t, "AlwaysOffSampler", samplerFor(0).Description())
	assert.Contains(t, samplerFor(0.25).Description(), "TraceIDRatioBased")
}
