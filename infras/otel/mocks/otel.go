package mocks

import (
	"context"
	"homestay/infras/otel"

	sdkTrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

type otelImpl struct {
	provider trace.TracerProvider
}

func (o *otelImpl) NewScope(ctx context.Context, scopeName, spanName string) (context.Context, otel.Scope) {
	ctx, span := o.provider.Tracer(scopeName).Start(ctx, spanName)

	return ctx, otel.NewScope(span)
}

// NewOtel hands out scopes over non-recording spans.
func NewOtel() otel.Otel {
	return &otelImpl{provider: noop.NewTracerProvider()}
}

// NewRecordingOtel keeps every ended span in recorder.
func NewRecordingOtel(recorder *tracetest.SpanRecorder) otel.Otel {
	return &otelImpl{provider: sdkTrace.NewTracerProvider(sdkTrace.WithSpanProcessor(recorder))}
}
