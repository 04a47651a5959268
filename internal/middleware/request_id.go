package middleware

import (
	contextutils "triviaapi/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDHeader carries the request id on requests and responses
const RequestIDHeader = "X-Request-ID"

// RequestIDContextKey is the gin context key holding the request id
const RequestIDContextKey = "request_id"

// maxRequestIDLength bounds client supplied ids
const maxRequestIDLength = 128

// RequestIDMiddleware reuses a client supplied X-Request-ID or generates a UUID, then
// stores it on the gin context, the request context and the response header
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" || len(requestID) > maxRequestIDLength {
			requestID = uuid.NewString()
		}

		c.Set(RequestIDContextKey, requestID)
		c.Request = c.Request.WithContext(contextutils.WithRequestID(c.Request.Context(), requestID))
		c.Header(RequestIDHeader, requestID)

		c.Next()
	}
}
