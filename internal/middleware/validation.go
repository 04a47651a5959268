package middleware

import (
	"bytes"
	"io"

	"triviaapi/internal/observability"
	contextutils "triviaapi/internal/utils"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

// RequestValidationMiddleware validates JSON request bodies against the schema documented
// for the matched route. Routes without a documented body pass through untouched.
// The body is restored so handlers can bind it.
func RequestValidationMiddleware(logger *observability.Logger, schemaLoader *SchemaLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		schemaName := schemaLoader.DetermineRequestSchema(c.Request.Method, c.FullPath())
		if schemaName == "" {
			c.Next()
			return
		}

		ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "request_validation",
			attribute.String("schema.name", schemaName),
			attribute.String("http.route", c.FullPath()),
		)

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			err = contextutils.NewAppErrorWithCause(contextutils.ErrorCodeInvalidInput, contextutils.SeverityWarn,
				"failed to read request body", err.Error(), err)
		} else {
			c.Request.Body = io.NopCloser(bytes.NewReader(body))
			err = schemaLoader.ValidateJSON(body, schemaName)
		}
		observability.FinishSpan(span, &err)

		if err != nil {
			logger.Warn(ctx, "Request validation failed", map[string]interface{}{
				"method":      c.Request.Method,
				"path":        c.Request.URL.Path,
				"schema_name": schemaName,
				"error":       err.Error(),
			})
			HandleAppError(c, err)
			return
		}

		c.Next()
	}
}
