package otel_test

import (
	"context"
	"errors"
	"homestay/infras/otel"
	"homestay/shared/failure"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestScope(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := trace.NewTracerProvider(trace.WithSpanProcessor(recorder))

	_, span := provider.Tracer("service").Start(context.Background(), "service.Checkout")
	scope := otel.NewScope(span)

	scope.SetAttributes(map[string]any{
		"booking.count":   2,
		"payment.amount":  int64(2200000),
		"payment.rate":    25000.5,
		"payment.cash":    false,
		"booking.numbers": []string{"AN-HOTEL-BK1E4913D2"},
		"booking.date":    time.Date(2026, 11, 2, 0, 0, 0, 0, time.UTC),
	})
	scope.TraceIfError(nil)
	scope.TraceError(errors.New("failed to insert payment"))
	scope.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)

	attrs := make(map[attribute.Key]attribute.Value)
	for _, kv := range spans[0].Attributes() {
		attrs[kv.Key] = kv.Value
	}

	assert.Equal(t, int64(2), attrs["booking.count"].AsInt64())
	assert.Equal(t, int64(2200000), attrs["payment.amount"].AsInt64())
	assert.InDelta(t, 25000.5, attrs["payment.rate"].AsFloat64(), 1e-9)
	assert.False(t, attrs["payment.cash"].AsBool())
	assert.Equal(t, []string{"AN-HOTEL-BK1E4913D2"}, attrs["booking.numbers"].AsStringSlice())
	assert.Equal(t, "2026-11-02T00:00:00Z", attrs["booking.date"].AsString())

	assert.Equal(t, int64(500), attrs["error.code"].AsInt64())
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Equal(t, "failed to insert payment", spans[0].Status().Description)
}

func TestScope_ClientFailure(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := trace.NewTracerProvider(trace.WithSpanProcessor(recorder))

	_, span := provider.Tracer("service").Start(context.Background(), "service.Get")
	scope := otel.NewScope(span)

	scope.TraceIfError(failure.NotFound("booking"))
	scope.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)

	assert.Equal(t, codes.Unset, spans[0].Status().Code)
	require.Len(t, spans[0].Events(), 1)
	assert.Equal(t, "exception", spans[0].Events()[0].Name)

	var code int64
	for _, kv := range spans[0].Attributes() {
		if kv.Key == "error.code" {
			code = kv.Value.AsInt64()
		}
	}

	assert.Equal(t, int64(404), code)
}
