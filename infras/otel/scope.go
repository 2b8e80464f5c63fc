package otel

import (
	"fmt"
	"homestay/shared/failure"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"
)

const attrErrorCode = "error.code"

// Scope wraps one span of a layer call.
type Scope interface {
	End()
	TraceError(err error)
	TraceIfError(err error)
	AddEvent(name string)
	SetAttribute(key string, value any)
	SetAttributes(attributes map[string]any)
}

type scopeImpl struct {
	span oteltrace.Span
}

func NewScope(span oteltrace.Span) Scope {
	return &scopeImpl{span: span}
}

func (s *scopeImpl) End() {
	s.span.End()
}

// TraceError records err with its HTTP code. Only server side failures mark the span
// as errored; a rejected request leaves the status unset.
func (s *scopeImpl) TraceError(err error) {
	code := failure.GetCode(err)

	s.span.RecordError(err, oteltrace.WithAttributes(attribute.Int(attrErrorCode, code)))
	s.span.SetAttributes(attribute.Int(attrErrorCode, code))

	if code >= http.StatusInternalServerError {
		s.span.SetStatus(codes.Error, err.Error())
	}
}

func (s *scopeImpl) TraceIfError(err error) {
	if err == nil {
		return
	}

	s.TraceError(err)
}

func (s *scopeImpl) AddEvent(name string) {
	s.span.AddEvent(name)
}

func (s *scopeImpl) SetAttribute(key string, value any) {
	s.span.SetAttributes(toAttribute(key, value))
}

func (s *scopeImpl) SetAttributes(attributes map[string]any) {
	kvs := make([]attribute.KeyValue, 0, len(attributes))
	for key, value := range attributes {
		kvs = append(kvs, toAttribute(key, value))
	}

	s.span.SetAttributes(kvs...)
}

func toAttribute(key string, value any) attribute.KeyValue {
	switch val := value.(type) {
	case bool:
		return attribute.Bool(key, val)
	case string:
		return attribute.String(key, val)
	case int:
		return attribute.Int(key, val)
	case int64:
		return attribute.Int64(key, val)
	case float64:
		return attribute.Float64(key, val)
	case time.Time:
		return attribute.String(key, val.Format(time.RFC3339))
	case []string:
		return attribute.StringSlice(key, val)
	case fmt.Stringer:
		return attribute.String(key, val.String())
	default:
		return attribute.String(key, fmt.Sprintf("%v", val))
	}
}
