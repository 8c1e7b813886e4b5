package otelhelper_test

import (
	"context"
	"errors"
	"testing"

	"github.com/dukex/swimlane/pkg/otelhelper"
	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestStartSpan_RecordsAttributesAndErrors(t *testing.T) {
	t.Parallel()

	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	tracer := provider.Tracer("test")

	_, span := otelhelper.StartSpan(context.Background(), tracer, "process.generate",
		attribute.String(otelhelper.ProcessIDKey, "p-1"),
	)
	otelhelper.SetError(span, errors.New("boom"), attribute.String(otelhelper.OwnerIDKey, "owner-1"))
	span.End()

	ended := recorder.Ended()
	if assert.Len(t, ended, 1) {
		assert.Equal(t, "process.generate", ended[0].Name())
		assert.Equal(t, codes.Error, ended[0].Status().Code)
		assert.Contains(t, ended[0].Attributes(), attribute.String(otelhelper.ProcessIDKey, "p-1"))
		assert.Contains(t, ended[0].Attributes(), attribute.String(otelhelper.ErrorTypeKey, "*errors.errorString"))
	}
}

func TestSetError_NilIsIgnored(t *testing.T) {
	t.Parallel()

	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	_, span := otelhelper.StartSpan(context.Background(), provider.Tracer("test"), "process.validate")
	otelhelper.SetError(span, nil)
	span.End()

	ended := recorder.Ended()
	if assert.Len(t, ended, 1) {
		assert.Equal(t, codes.Unset, ended[0].Status().Code)
		assert.Empty(t, ended[0].Events())
	}
}

func TestNoopTracer(t *testing.T) {
	t.Parallel()

	_, span := otelhelper.StartSpan(context.Background(), otelhelper.NoopTracer(), "noop")
	defer span.End()

	assert.False(t, span.SpanContext().IsValid())
}
