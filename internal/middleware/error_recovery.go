package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"triviaapi/internal/observability"
	contextutils "triviaapi/internal/utils"

	"github.com/gin-gonic/gin"
)

// errorMessages holds the message rendered for each error status
var errorMessages = map[int]string{
	http.StatusBadRequest:          "Bad Request",
	http.StatusNotFound:            "Page not found",
	http.StatusMethodNotAllowed:    "Method Not Allowed",
	http.StatusUnprocessableEntity: "Unprocessable",
	http.StatusInternalServerError: "Internal Server Error",
	http.StatusServiceUnavailable:  "Service Unavailable",
}

// ErrorMessage returns the message for an error status
func ErrorMessage(status int) string {
	if msg, ok := errorMessages[status]; ok {
		return msg
	}
	return http.StatusText(status)
}

// WriteError aborts the request with the standard error body
// {"success": false, "error": <status>, "message": <message>}
func WriteError(c *gin.Context, status int) {
	c.AbortWithStatusJSON(status, gin.H{
		"success": false,
		"error":   status,
		"message": ErrorMessage(status),
	})
}

// HandleAppError records err on the context and writes the error body for its code
func HandleAppError(c *gin.Context, err error) {
	_ = c.Error(err)
	WriteError(c, StatusForError(err))
}

// StatusForError maps an error's AppError code to an HTTP status
func StatusForError(err error) int {
	return mapErrorCodeToHTTPStatus(contextutils.GetErrorCode(err))
}

// mapErrorCodeToHTTPStatus maps AppError codes to appropriate HTTP status codes
func mapErrorCodeToHTTPStatus(code contextutils.ErrorCode) int {
	switch code {
	case contextutils.ErrorCodeRecordNotFound, contextutils.ErrorCodeQuestionNotFound,
		contextutils.ErrorCodeCategoryNotFound:
		return http.StatusNotFound

	case contextutils.ErrorCodeInvalidInput, contextutils.ErrorCodeValidationFailed,
		contextutils.ErrorCodeInvalidPage, contextutils.ErrorCodeNoCategories,
		contextutils.ErrorCodeNoQuestionsAvailable:
		return http.StatusBadRequest

	case contextutils.ErrorCodeUnprocessable, contextutils.ErrorCodeDatabaseQuery:
		return http.StatusUnprocessableEntity

	case contextutils.ErrorCodeMethodNotAllowed:
		return http.StatusMethodNotAllowed

	case contextutils.ErrorCodeServiceUnavailable, contextutils.ErrorCodeDatabaseConnection:
		return http.StatusServiceUnavailable

	default:
		return http.StatusInternalServerError
	}
}

// ErrorRecoveryMiddleware converts panics into a 500 error body and logs the stack
func ErrorRecoveryMiddleware(logger *observability.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if recovered := recover(); recovered != nil {
				stackTrace := string(debug.Stack())

				panicErr, ok := recovered.(error)
				if !ok {
					panicErr = fmt.Errorf("panic: %v", recovered)
				}

				appErr := contextutils.NewAppErrorWithCause(
					contextutils.ErrorCodeInternalError,
					contextutils.SeverityFatal,
					"Internal server error",
					"A panic occurred while processing the request",
					panicErr,
				)

				if logger != nil {
					logger.Error(c.Request.Context(), "Panic recovered", appErr, map[string]interface{}{
						"http.method": c.Request.Method,
						"http.path":   c.Request.URL.Path,
						"stack":       stackTrace,
					})
				}

				HandleAppError(c, appErr)
			}
		}()

		c.Next()
	}
}
