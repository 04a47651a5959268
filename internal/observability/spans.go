package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// InstrumentationName identifies this module's tracer and meter
const InstrumentationName = "triviaapi"

var globalTracer trace.Tracer

// InitGlobalTracer binds the package tracer to the current global provider
func InitGlobalTracer() {
	globalTracer = otel.Tracer(InstrumentationName)
}

// GetGlobalTracer returns the package tracer, creating it on first use
func GetGlobalTracer() trace.Tracer {
	if globalTracer == nil {
		globalTracer = otel.Tracer(InstrumentationName)
	}
	return globalTracer
}

// TraceFunction starts a span named "<serviceName>.<functionName>"
func TraceFunction(ctx context.Context, serviceName, functionName string, attributes ...attribute.KeyValue) (context.Context, trace.Span) {
	spanName := fmt.Sprintf("%s.%s", serviceName, functionName)
	return GetGlobalTracer().Start(ctx, spanName, trace.WithAttributes(attributes...))
}

// TraceCategoryFunction starts a new span for a category service function.
func TraceCategoryFunction(ctx context.Context, functionName string, attributes ...attribute.KeyValue) (context.Context, trace.Span) {
	return TraceFunction(ctx, "category", functionName, attributes...)
}

// TraceQuestionFunction starts a new span for a question service function.
func TraceQuestionFunction(ctx context.Context, functionName string, attributes ...attribute.KeyValue) (context.Context, trace.Span) {
	return TraceFunction(ctx, "question", functionName, attributes...)
}

// TraceQuizFunction starts a new span for a quiz service function.
func TraceQuizFunction(ctx context.Context, functionName string, attributes ...attribute.KeyValue) (context.Context, trace.Span) {
	return TraceFunction(ctx, "quiz", functionName, attributes...)
}

// TraceHandlerFunction starts a new span for a handler function.
func TraceHandlerFunction(ctx context.Context, functionName string, attributes ...attribute.KeyValue) (context.Context, trace.Span) {
	return TraceFunction(ctx, "handler", functionName, attributes...)
}

// TraceDatabaseFunction starts a new span for a database function.
func TraceDatabaseFunction(ctx context.Context, functionName string, attributes ...attribute.KeyValue) (context.Context, trace.Span) {
	return TraceFunction(ctx, "database", functionName, attributes...)
}

// FinishSpan ends a span and records any error pointed to by errPtr.
// Use with a named error return: `defer observability.FinishSpan(span, &err)`
func FinishSpan(span trace.Span, errPtr *error) {
	if span == nil {
		return
	}
	if errPtr != nil && *errPtr != nil {
		span.RecordError(*errPtr, trace.WithStackTrace(true))
		span.SetStatus(codes.Error, (*errPtr).Error())
	}
	span.End()
}

// AttributeQuestionID returns a tracing attribute for a question ID.
func AttributeQuestionID(id int) attribute.KeyValue {
	return attribute.Int("question.id", id)
}

// AttributeCategoryID returns a tracing attribute for a category ID.
func AttributeCategoryID(id int) attribute.KeyValue {
	return attribute.Int("category.id", id)
}

// AttributePage returns a tracing attribute for a page value.
func AttributePage(page int) attribute.KeyValue {
	return attribute.Int("page", page)
}

// AttributePageSize returns a tracing attribute for a page size value.
func AttributePageSize(size int) attribute.KeyValue {
	return attribute.Int("page_size", size)
}

// AttributeSearch returns a tracing attribute for a search term.
func AttributeSearch(search string) attribute.KeyValue {
	return attribute.String("search", search)
}

// AttributePreviousCount returns a tracing attribute for the number of questions already played.
func AttributePreviousCount(n int) attribute.KeyValue {
	return attribute.Int("quiz.previous_count", n)
}
