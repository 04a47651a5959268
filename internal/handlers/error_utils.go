package handlers

import (
	"net/http"

	"triviaapi/internal/middleware"
	"triviaapi/internal/observability"
	contextutils "triviaapi/internal/utils"

	"github.com/gin-gonic/gin"
)

// HandleAppError logs unexpected failures and writes the error body for err's code
func HandleAppError(c *gin.Context, logger *observability.Logger, err error) {
	status := middleware.StatusForError(err)
	if status >= http.StatusInternalServerError || status == http.StatusUnprocessableEntity {
		logger.Error(c.Request.Context(), "Request failed", err, map[string]interface{}{
			"http.path":   c.Request.URL.Path,
			"http.status": status,
		})
	}
	middleware.HandleAppError(c, err)
}

// NotFound writes the 404 body
func NotFound(c *gin.Context) {
	middleware.HandleAppError(c, contextutils.ErrRecordNotFound)
}

// MethodNotAllowed writes the 405 body
func MethodNotAllowed(c *gin.Context) {
	middleware.HandleAppError(c, contextutils.ErrMethodNotAllowed)
}

// BadRequest writes the 400 body for a request that could not be decoded
func BadRequest(c *gin.Context, err error) {
	middleware.HandleAppError(c, contextutils.NewAppErrorWithCause(contextutils.ErrorCodeInvalidInput,
		contextutils.SeverityWarn, "invalid request body", err.Error(), err))
}
