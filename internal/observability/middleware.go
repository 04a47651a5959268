package observability

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	contextutils "triviaapi/internal/utils"
)

// GinMiddleware creates OpenTelemetry middleware for Gin HTTP requests
func GinMiddleware(serviceName string) gin.HandlerFunc {
	return otelgin.Middleware(serviceName)
}

// GinMiddlewareWithErrorHandling returns the otelgin middleware followed by a handler that
// annotates the request span when the response is a 4xx or 5xx.
// Register with router.Use(GinMiddlewareWithErrorHandling(name)...).
func GinMiddlewareWithErrorHandling(serviceName string) gin.HandlersChain {
	return gin.HandlersChain{otelgin.Middleware(serviceName), recordSpanErrors}
}

// recordSpanErrors runs inside the otelgin span and decorates it after the handler chain returns
func recordSpanErrors(c *gin.Context) {
	c.Next()

	statusCode := c.Writer.Status()
	if statusCode < 400 {
		return
	}

	span := trace.SpanFromContext(c.Request.Context())
	if !span.SpanContext().IsValid() && !span.IsRecording() {
		return
	}

	severity := determineErrorSeverity(statusCode, c.Errors)

	var errorMsg string
	switch {
	case statusCode >= 500:
		errorMsg = "server error"
	default:
		errorMsg = "client error"
	}

	var appErr *contextutils.AppError
	for _, ginErr := range c.Errors {
		if errors.As(ginErr.Err, &appErr) {
			errorMsg = appErr.Message
			break
		}
		errorMsg = ginErr.Error()
	}

	span.RecordError(errors.New(errorMsg))
	span.SetStatus(codes.Error, errorMsg)
	span.SetAttributes(
		attribute.Int("http.status_code", statusCode),
		attribute.String("http.method", c.Request.Method),
		attribute.String("http.path", c.Request.URL.Path),
		attribute.String("error.handler", c.HandlerName()),
		attribute.String("error.severity", severity),
	)

	if c.Request.ContentLength > 0 {
		span.SetAttributes(attribute.Int64("error.request_size", c.Request.ContentLength))
	}

	if appErr != nil {
		span.SetAttributes(
			attribute.String("error.code", string(appErr.Code)),
			attribute.Bool("error.retryable", contextutils.IsRetryable(appErr)),
		)
	}

	if statusCode >= 500 {
		span.SetAttributes(attribute.Bool("error.server_error", true))
	}
}

// determineErrorSeverity determines the severity level based on status code and error types
func determineErrorSeverity(statusCode int, ginErrors []*gin.Error) string {
	var appErr *contextutils.AppError
	for _, err := range ginErrors {
		if errors.As(err.Err, &appErr) {
			return string(appErr.Severity)
		}
	}

	switch {
	case statusCode >= 500:
		return string(contextutils.SeverityError)
	case statusCode >= 400:
		return string(contextutils.SeverityWarn)
	default:
		return string(contextutils.SeverityInfo)
	}
}

// AccessLogMiddleware logs one structured line per request, at error level for 5xx,
// warn for 4xx and info otherwise.
func AccessLogMiddleware(logger *Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		statusCode := c.Writer.Status()
		fields := map[string]interface{}{
			"http.method":      c.Request.Method,
			"http.path":        c.Request.URL.Path,
			"http.status_code": statusCode,
			"http.latency_ms":  time.Since(start).Milliseconds(),
			"http.client_ip":   c.ClientIP(),
			"http.user_agent":  c.Request.UserAgent(),
		}
		if c.Request.URL.RawQuery != "" {
			fields["http.query"] = c.Request.URL.RawQuery
		}
		if len(c.Errors) > 0 {
			fields["http.error"] = c.Errors.String()
		}

		ctx := c.Request.Context()
		switch {
		case statusCode >= 500:
			fields["http.error_type"] = "server_error"
			logger.Error(ctx, "HTTP request failed", nil, fields)
		case statusCode >= 400:
			fields["http.error_type"] = "client_error"
			logger.Warn(ctx, "HTTP request warning", fields)
		default:
			logger.Info(ctx, "HTTP request", fields)
		}
	}
}
