package observability

import (
	"context"
	"testing"

	contextutils "triviaapi/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogWithContextAddsTraceInfo(t *testing.T) {
	tp := trace.NewTracerProvider()
	otel.SetTracerProvider(tp)
	tracer := tp.Tracer("test-tracer")

	core, observedLogs := observer.New(zap.InfoLevel)
	zapLogger := zap.New(core)
	logger := &Logger{Logger: zapLogger}

	// Start a span
	ctx, span := tracer.Start(context.Background(), "test-span")
	defer span.End()

	logger.Info(ctx, "test message", nil)

	// Verify log entry
	requireLogs := observedLogs.All()
	assert.Equal(t, 1, len(requireLogs), "Expected 1 log entry")

	entry := requireLogs[0]
	assert.Equal(t, "test message", entry.Message)

	// Check for trace_id and span_id fields
	fields := entry.ContextMap()
	assert.Contains(t, fields, "trace_id", "Log should contain trace_id")
	assert.Contains(t, fields, "span_id", "Log should contain span_id")

	// Verify values match the span
	spanContext := span.SpanContext()
	assert.Equal(t, spanContext.TraceID().String(), fields["trace_id"])
	assert.Equal(t, spanContext.SpanID().String(), fields["span_id"])
}

func TestLogWithContextNoSpan(t *testing.T) {
	core, observedLogs := observer.New(zap.InfoLevel)
	zapLogger := zap.New(core)
	logger := &Logger{Logger: zapLogger}

	logger.Info(context.Background(), "test message", nil)

	// Verify log entry
	requireLogs := observedLogs.All()
	assert.Equal(t, 1, len(requireLogs), "Expected 1 log entry")

	entry := requireLogs[0]
	fields := entry.ContextMap()

	// Should not contain trace info
	assert.NotContains(t, fields, "trace_id")
	assert.NotContains(t, fields, "span_id")
}

func TestLogWithContextAddsRequestID(t *testing.T) {
	core, observedLogs := observer.New(zap.InfoLevel)
	logger := &Logger{Logger: zap.New(core)}

	ctx := contextutils.WithRequestID(context.Background(), "req-42")
	logger.Warn(ctx, "slow query", map[string]interface{}{"table": "questions"})

	entries := observedLogs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "req-42", fields["request_id"])
	assert.Equal(t, "questions", fields["table"])
}

func TestErrorIncludesAppErrorCode(t *testing.T) {
	core, observedLogs := observer.New(zap.InfoLevel)
	logger := &Logger{Logger: zap.New(core)}

	callerFields := map[string]interface{}{"question_id": 7}
	logger.Error(context.Background(), "delete failed", contextutils.ErrQuestionNotFound, callerFields)

	entries := observedLogs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "QUESTION_NOT_FOUND", fields["error_code"])
	assert.Equal(t, "QUESTION_NOT_FOUND: Question not found", fields["error"])
	assert.NotContains(t, callerFields, "error")
}

func TestNewNopLogger(t *testing.T) {
	logger := NewNopLogger()
	logger.Info(context.Background(), "discarded")
	assert.NoError(t, logger.Shutdown(context.Background()))
}
