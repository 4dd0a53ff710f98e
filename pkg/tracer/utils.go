package tracer

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	traceSpan "go.opentelemetry.io/otel/trace"
)

// StartSpan begins a named span as a child of whatever span is active on ctx.
// The returned context carries the new span; callers must End() it.
func (t *Tracer) StartSpan(ctx context.Context, name string) (context.Context, traceSpan.Span) {
	return t.tracer.Tracer("ragengine").Start(ctx, name)
}

// RecordErrorOnSpan marks the span as failed and attaches the error.
func (t *Tracer) RecordErrorOnSpan(span traceSpan.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// SetAttributes attaches arbitrary key/value attributes to a span.
func (t *Tracer) SetAttributes(span traceSpan.Span, attrs map[string]interface{}) {
	for k, v := range attrs {
		switch val := v.(type) {
		case string:
			span.SetAttributes(attribute.String(k, val))
		case int:
			span.SetAttributes(attribute.Int(k, val))
		case int64:
			span.SetAttributes(attribute.Int64(k, val))
		case float64:
			span.SetAttributes(attribute.Float64(k, val))
		case bool:
			span.SetAttributes(attribute.Bool(k, val))
		default:
			span.SetAttributes(attribute.String(k, "unsupported attribute type"))
		}
	}
}
